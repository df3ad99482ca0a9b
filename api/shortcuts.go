package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"text-expander/shortcut"
)

type shortcutRequest struct {
	ID            string `json:"id"`
	Command       string `json:"command"`
	Keyword       string `json:"keyword"`
	ExpansionText string `json:"expansionText"`
}

type expandResponse struct {
	Matched   bool   `json:"matched"`
	Expansion string `json:"expansion,omitempty"`
	ID        string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeShortcutError maps registry errors onto status codes.
func writeShortcutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shortcut.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, shortcut.ErrNotFound):
		http.Error(w, "shortcut not found", http.StatusNotFound)
	case errors.Is(err, shortcut.ErrDuplicateID):
		http.Error(w, "shortcut id already exists", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *handler) listShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

func (h *handler) getShortcut(w http.ResponseWriter, r *http.Request) {
	e, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "shortcut not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handler) createShortcut(w http.ResponseWriter, r *http.Request) {
	var req shortcutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, err := shortcut.NewEntry(req.ID, req.Command, req.Keyword, req.ExpansionText)
	if err != nil {
		writeShortcutError(w, err)
		return
	}
	id, err := h.registry.Create(e)
	if err != nil {
		writeShortcutError(w, err)
		return
	}
	e.ID = id
	h.log.Info("shortcut created", slog.String("id", id), slog.String("pattern", e.Pattern()))
	writeJSON(w, http.StatusCreated, e)
}

func (h *handler) updateShortcut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req shortcutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID != "" && req.ID != id {
		http.Error(w, "id in body does not match path", http.StatusBadRequest)
		return
	}

	e, err := shortcut.NewEntry(id, req.Command, req.Keyword, req.ExpansionText)
	if err != nil {
		writeShortcutError(w, err)
		return
	}
	if err := h.registry.Update(e); err != nil {
		writeShortcutError(w, err)
		return
	}
	h.log.Info("shortcut updated", slog.String("id", id), slog.String("pattern", e.Pattern()))
	writeJSON(w, http.StatusOK, e)
}

func (h *handler) deleteShortcut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.Delete(id) {
		http.Error(w, "shortcut not found", http.StatusNotFound)
		return
	}
	h.log.Info("shortcut deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// expand reports the first matching shortcut for the given text. A miss is
// a normal 200 response with matched=false.
func (h *handler) expand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, ok := h.registry.Match(req.Text)
	if !ok {
		writeJSON(w, http.StatusOK, expandResponse{})
		return
	}
	writeJSON(w, http.StatusOK, expandResponse{Matched: true, Expansion: e.ExpansionText, ID: e.ID})
}

func (h *handler) exportShortcuts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="shortcuts.yaml"`)
	if err := shortcut.Encode(w, h.registry.List()); err != nil {
		h.log.Error("export shortcuts", slog.Any("error", err))
	}
}
