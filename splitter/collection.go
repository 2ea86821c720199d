package splitter

import (
	"context"
	"errors"
)

// ErrNoteNotFound is returned by Collection.GetNote for unknown ids.
var ErrNoteNotFound = errors.New("note not found")

// Note is a record owned by the host collection. Fields are addressed by
// name because the note's schema is not known ahead of time.
type Note interface {
	ID() int64
	Field(name string) string
	SetField(name, value string)
	HasField(name string) bool
	Tags() []string
	SetTags(tags []string)
}

// Collection is the host's note store.
type Collection interface {
	// FindNotes returns the ids of the notes matching query.
	FindNotes(ctx context.Context, query string) ([]int64, error)
	GetNote(ctx context.Context, id int64) (Note, error)
	// NewNoteFrom returns an unsaved note of the same type and deck as
	// original, with every field copied.
	NewNoteFrom(ctx context.Context, original Note) (Note, error)
	AddNote(ctx context.Context, note Note) error
	UpdateNote(ctx context.Context, note Note) error
	Save(ctx context.Context) error
}

// Progress receives batch progress.
type Progress interface {
	Start(total int, label string)
	Update(done, total int, label string)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int, string)       {}
func (nopProgress) Update(int, int, string) {}
func (nopProgress) Finish()                 {}
