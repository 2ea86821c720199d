// Package notes is a JSON-file note collection. It stands in for a host
// application's note store so batches can run from the command line.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

type file struct {
	Notes []record `json:"notes"`
}

// Store keeps every note in memory and writes the whole file on Save.
type Store struct {
	path   string
	logger utils.Logger

	mutex  sync.Mutex
	notes  []*Note
	byID   map[int64]*Note
	nextID int64
	dirty  bool
}

var _ splitter.Collection = (*Store)(nil)

// Open loads the collection at path. A missing file yields an empty
// collection that is created on the first Save.
func Open(path string, logger utils.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger, byID: make(map[int64]*Note), nextID: 1}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Notes file does not exist, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notes file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse notes file %s: %w", path, err)
	}
	for _, rec := range f.Notes {
		if rec.ID <= 0 {
			return nil, fmt.Errorf("notes file %s: note id must be positive, got %d", path, rec.ID)
		}
		if _, dup := s.byID[rec.ID]; dup {
			return nil, fmt.Errorf("notes file %s: duplicate note id %d", path, rec.ID)
		}
		n := &Note{rec: rec}
		s.notes = append(s.notes, n)
		s.byID[rec.ID] = n
		if rec.ID >= s.nextID {
			s.nextID = rec.ID + 1
		}
	}
	logger.Debug("Notes loaded", "path", path, "count", len(s.notes))
	return s, nil
}

// FindNotes returns ids in file order. The query is a list of terms that
// must all match: "tag:X", "deck:X", or free text searched in every field.
// Matching is case-insensitive; an empty query matches every note.
func (s *Store) FindNotes(ctx context.Context, query string) ([]int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	terms := strings.Fields(query)
	var ids []int64
	for _, n := range s.notes {
		if matchesAll(n, terms) {
			ids = append(ids, n.rec.ID)
		}
	}
	return ids, nil
}

// GetNote returns a copy of the note; changes are kept by UpdateNote.
func (s *Store) GetNote(ctx context.Context, id int64) (splitter.Note, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, splitter.ErrNoteNotFound)
	}
	return n.clone(), nil
}

func (s *Store) NewNoteFrom(ctx context.Context, original splitter.Note) (splitter.Note, error) {
	o, ok := original.(*Note)
	if !ok {
		return nil, fmt.Errorf("unsupported note type %T", original)
	}
	return NewNote(o.rec.Type, o.rec.Deck, o.rec.Fields), nil
}

// AddNote assigns the next free id to note and stores it.
func (s *Store) AddNote(ctx context.Context, note splitter.Note) error {
	n, ok := note.(*Note)
	if !ok {
		return fmt.Errorf("unsupported note type %T", note)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if n.rec.ID != 0 {
		return fmt.Errorf("note %d was already added", n.rec.ID)
	}
	n.rec.ID = s.nextID
	s.nextID++

	stored := n.clone()
	s.notes = append(s.notes, stored)
	s.byID[stored.rec.ID] = stored
	s.dirty = true
	return nil
}

func (s *Store) UpdateNote(ctx context.Context, note splitter.Note) error {
	n, ok := note.(*Note)
	if !ok {
		return fmt.Errorf("unsupported note type %T", note)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, ok := s.byID[n.rec.ID]
	if !ok {
		return fmt.Errorf("note %d: %w", n.rec.ID, splitter.ErrNoteNotFound)
	}
	stored.rec = n.clone().rec
	s.dirty = true
	return nil
}

// Save writes the collection if it changed. The file is replaced
// atomically through a temporary file in the same directory.
func (s *Store) Save(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.dirty {
		return nil
	}

	f := file{Notes: make([]record, 0, len(s.notes))}
	for _, n := range s.notes {
		f.Notes = append(f.Notes, n.rec)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary notes file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace notes file: %w", err)
	}

	s.dirty = false
	s.logger.Debug("Notes saved", "path", s.path, "count", len(s.notes))
	return nil
}

func matchesAll(n *Note, terms []string) bool {
	for _, term := range terms {
		if !matches(n, term) {
			return false
		}
	}
	return true
}

func matches(n *Note, term string) bool {
	if tag, ok := strings.CutPrefix(term, "tag:"); ok {
		for _, t := range n.rec.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}
	if deck, ok := strings.CutPrefix(term, "deck:"); ok {
		return strings.EqualFold(n.rec.Deck, deck)
	}
	needle := strings.ToLower(term)
	for _, v := range n.rec.Fields {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
