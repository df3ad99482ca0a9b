package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"text-expander/shortcut"
)

var ErrNameTaken = errors.New("session name already in use")
var ErrNotFound = errors.New("session not found")
var ErrInvalidName = errors.New("session name is empty")

type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	registry   *shortcut.Registry
	bufferSize int
}

// NewManager returns a Manager whose sessions match against registry.
// bufferSize caps how much typed text a session keeps; zero or less selects
// the default.
func NewManager(registry *shortcut.Registry, bufferSize int) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		registry:   registry,
		bufferSize: bufferSize,
	}
}

func (m *Manager) Create(name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Name == name {
			return nil, ErrNameTaken
		}
	}

	now := time.Now()
	s := &Session{
		ID:         uuid.New().String(),
		Name:       name,
		CreatedAt:  now,
		lastActive: now,
		registry:   m.registry,
		input:      newInputBuf(m.bufferSize),
		done:       make(chan struct{}),
	}
	m.sessions[s.ID] = s
	return s, nil
}

// List returns all sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Kill removes the session and closes its Done channel, which disconnects
// any attached client.
func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.close()
	delete(m.sessions, id)
	return nil
}
