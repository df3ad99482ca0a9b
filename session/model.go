package session

import (
	"sync"
	"time"

	"text-expander/shortcut"
)

const defaultBufferSize = 256

// Session is one live typing stream. Input is accumulated in a bounded
// buffer and checked against the registry after every write.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	registry *shortcut.Registry
	input    *inputBuf
	// feedMu serialises write, match and reset on input.
	feedMu sync.Mutex

	outMu      sync.Mutex
	outChan    chan Event
	kickChan   chan struct{}
	connected  bool
	lastActive time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// Info is the JSON view of a session.
type Info struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Connected  bool      `json:"connected"`
	Buffered   int       `json:"buffered"`
}

// Event is published to the connected client when a pattern fires.
type Event struct {
	ShortcutID string `json:"id"`
	Pattern    string `json:"pattern"`
	Expansion  string `json:"expansion"`
}

type inputBuf struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newInputBuf(max int) *inputBuf {
	if max <= 0 {
		max = defaultBufferSize
	}
	return &inputBuf{max: max}
}

func (b *inputBuf) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	if len(b.data) > b.max {
		excess := len(b.data) - b.max
		b.data = b.data[excess:]
	}
}

func (b *inputBuf) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

func (b *inputBuf) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *inputBuf) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = b.data[:0]
}

// Feed appends text to the session buffer and looks for a pattern in it.
// When one fires the buffer is cleared, so each typed trigger expands once,
// and the event is pushed to the connected client if there is one.
func (s *Session) Feed(text string) (shortcut.Entry, bool) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	s.input.Write([]byte(text))

	s.outMu.Lock()
	s.lastActive = time.Now()
	s.outMu.Unlock()

	e, ok := s.registry.Match(string(s.input.Snapshot()))
	if !ok {
		return shortcut.Entry{}, false
	}
	s.input.Reset()

	s.outMu.Lock()
	if s.outChan != nil {
		select {
		case s.outChan <- Event{ShortcutID: e.ID, Pattern: e.Pattern(), Expansion: e.ExpansionText}:
		default:
		}
	}
	s.outMu.Unlock()
	return e, true
}

// Buffered returns a copy of the text typed since the last expansion.
func (s *Session) Buffered() string {
	return string(s.input.Snapshot())
}

// Clear discards buffered text.
func (s *Session) Clear() {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()
	s.input.Reset()
}

// Info returns a consistent snapshot of the session's state.
func (s *Session) Info() Info {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return Info{
		ID:         s.ID,
		Name:       s.Name,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Connected:  s.connected,
		Buffered:   s.input.Len(),
	}
}

// SetClient registers a channel to receive expansion events. If a previous
// client is connected it is kicked: its kick channel is closed so ws.go can
// detect the displacement and close that WebSocket connection. Returns a kick
// channel that will be closed if this client is itself later displaced.
func (s *Session) SetClient(ch chan Event) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.connected = true
	return kick
}

// ClearClient is called when a connection ends. It only updates session state
// if ch is still the current owner (guards against a displaced connection
// clearing a newer one). It always closes ch so the pump goroutine exits.
func (s *Session) ClearClient(ch chan Event) {
	s.outMu.Lock()
	if s.outChan == ch {
		s.outChan = nil
		s.connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
}

// Done returns a channel that is closed when the session is killed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.doneOnce.Do(func() { close(s.done) })
}
