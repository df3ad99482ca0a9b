package shortcut

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// File is the on-disk rule format used to seed a Registry and to export it.
type File struct {
	Shortcuts []FileEntry `yaml:"shortcuts"`
}

type FileEntry struct {
	ID        string `yaml:"id,omitempty"`
	Keyword   string `yaml:"keyword"`
	Command   string `yaml:"command"`
	Expansion Text   `yaml:"expansion"`
}

// Text is an expansion as stored in a rule file. Multiline values are
// written double quoted so leading and trailing whitespace and \r\n line
// endings are kept exactly.
type Text string

func (t Text) MarshalYAML() ([]byte, error) {
	if strings.ContainsAny(string(t), "\n\r") {
		return []byte(strconv.Quote(string(t))), nil
	}
	return yaml.Marshal(string(t))
}

// LoadFile reads a rule file and creates its entries in r, in file order.
// A missing file is an error; callers decide whether seeding is optional.
func LoadFile(r *Registry, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open rule file: %w", err)
	}
	defer f.Close()

	n, err := Decode(r, f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Decode creates every rule from rd in r. Either all rules are created or,
// on the first failure, none are left behind.
func Decode(r *Registry, rd io.Reader) (int, error) {
	var doc File
	dec := yaml.NewDecoder(rd, yaml.DisallowUnknownField())
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("decode rules: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Shortcuts))
	for i, fe := range doc.Shortcuts {
		e, err := NewEntry(fe.ID, fe.Command, fe.Keyword, string(fe.Expansion))
		if err != nil {
			return 0, fmt.Errorf("shortcut %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	created := make([]string, 0, len(entries))
	for i, e := range entries {
		id, err := r.Create(e)
		if err != nil {
			for _, id := range created {
				r.Delete(id)
			}
			return 0, fmt.Errorf("shortcut %d: %w", i, err)
		}
		created = append(created, id)
	}
	return len(created), nil
}

// Encode writes entries in the rule file format.
func Encode(w io.Writer, entries []Entry) error {
	doc := File{Shortcuts: make([]FileEntry, len(entries))}
	for i, e := range entries {
		doc.Shortcuts[i] = FileEntry{
			ID:        e.ID,
			Keyword:   e.Keyword,
			Command:   e.Command,
			Expansion: Text(e.ExpansionText),
		}
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return nil
}
