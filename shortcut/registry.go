package shortcut

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Registry holds the ordered rule set. Insertion order is the match
// priority: the first entry whose pattern occurs in the text wins.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	newID   func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the default uuid generator used when Create is
// given an entry without an id.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: []Entry{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create appends e and returns its id, generating one if e.ID is empty.
// Entries sharing a pattern are accepted; FindExpansion resolves them by
// insertion order.
func (r *Registry) Create(e Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		id, err := r.freshID()
		if err != nil {
			return "", err
		}
		e.ID = id
	} else if r.indexOf(e.ID) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}

	r.entries = append(r.entries, e)
	return e.ID, nil
}

// Update replaces the entry with e.ID, keeping its position.
func (r *Registry) Update(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrValidation)
	}
	if err := e.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(e.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	r.entries[i] = e
	return nil
}

// Delete removes the entry with id. It reports false, not an error, when
// there is nothing to remove.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return true
}

// List returns a copy of all entries in insertion order.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get returns a copy of the entry with id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of stored entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Match returns the first entry, in insertion order, whose pattern occurs
// anywhere in text.
func (r *Registry) Match(text string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if strings.Contains(text, e.Pattern()) {
			return e, true
		}
	}
	return Entry{}, false
}

// FindExpansion returns the expansion text of the first matching entry.
// ok is false when no pattern occurs in text.
func (r *Registry) FindExpansion(text string) (expansion string, ok bool) {
	e, ok := r.Match(text)
	if !ok {
		return "", false
	}
	return e.ExpansionText, true
}

// freshID must be called with r.mu held.
func (r *Registry) freshID() (string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		id := r.newID()
		if id != "" && r.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique id", ErrDuplicateID)
}

func (r *Registry) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
