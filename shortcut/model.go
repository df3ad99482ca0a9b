package shortcut

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateID = errors.New("shortcut id already exists")
	ErrNotFound    = errors.New("shortcut not found")
	ErrValidation  = errors.New("invalid shortcut")
)

// Entry is a single expansion rule. Keyword followed directly by Command
// forms the pattern searched for in input text.
type Entry struct {
	ID            string `json:"id"`
	Command       string `json:"command"`
	Keyword       string `json:"keyword"`
	ExpansionText string `json:"expansionText"`
}

// NewEntry trims command and keyword and validates them. The expansion text
// is stored exactly as given. An empty id is left for the Registry to assign.
func NewEntry(id, command, keyword, expansionText string) (Entry, error) {
	e := Entry{
		ID:            strings.TrimSpace(id),
		Command:       strings.TrimSpace(command),
		Keyword:       strings.TrimSpace(keyword),
		ExpansionText: expansionText,
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Pattern returns the literal substring this entry matches.
func (e Entry) Pattern() string {
	return e.Keyword + e.Command
}

// Validate reports an ErrValidation if command or keyword is blank.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Command) == "" {
		return fmt.Errorf("%w: command is empty", ErrValidation)
	}
	if strings.TrimSpace(e.Keyword) == "" {
		return fmt.Errorf("%w: keyword is empty", ErrValidation)
	}
	return nil
}
