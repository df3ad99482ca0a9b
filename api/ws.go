package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"text-expander/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string `json:"type"`
	Data    string `json:"data,omitempty"`
	ID      string `json:"id,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.sessions.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade", slog.String("session", id), slog.Any("error", err))
		return
	}
	defer conn.Close()

	// Serialise all WebSocket writes; gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	events := make(chan session.Event, 16)
	kick := s.SetClient(events) // kicks any prior client
	defer s.ClearClient(events) // closes events + clears session state if still owner

	// Replay text typed before this client attached.
	if buffered := s.Buffered(); buffered != "" {
		if err := writeMsg(wsMessage{Type: "buffer", Data: buffered}); err != nil {
			h.log.Warn("ws buffer replay", slog.String("session", id), slog.Any("error", err))
			return
		}
	}

	// Pump expansion events to the client. Exits when ClearClient closes events.
	go func() {
		for ev := range events {
			msg := wsMessage{
				Type:    "expansion",
				Data:    ev.Expansion,
				ID:      ev.ShortcutID,
				Pattern: ev.Pattern,
			}
			if err := writeMsg(msg); err != nil {
				return
			}
		}
	}()

	// Close the connection on session end or displacement so ReadJSON unblocks.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced by a newer connection; no "closed" message since the
			// session itself is still alive.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "input":
			s.Feed(msg.Data)
		case "reset":
			s.Clear()
		}
	}
}
