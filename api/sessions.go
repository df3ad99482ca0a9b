package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"text-expander/session"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.List()
	infos := make([]session.Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidName):
			http.Error(w, "invalid request body", http.StatusBadRequest)
		case errors.Is(err, session.ErrNameTaken):
			http.Error(w, "session name already in use", http.StatusConflict)
		default:
			http.Error(w, "failed to create session", http.StatusInternalServerError)
		}
		return
	}
	h.log.Info("session created", slog.String("id", s.ID), slog.String("name", s.Name))
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *handler) killSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Kill(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to kill session", http.StatusInternalServerError)
		return
	}
	h.log.Info("session killed", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// feedSession appends text to a session without a websocket. Any expansion
// is returned inline and also pushed to an attached websocket client.
func (h *handler) feedSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, ok := s.Feed(req.Data)
	if !ok {
		writeJSON(w, http.StatusOK, expandResponse{})
		return
	}
	writeJSON(w, http.StatusOK, expandResponse{Matched: true, Expansion: e.ExpansionText, ID: e.ID})
}
