package notes

import "slices"

// record is the on-disk form of a note.
type record struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Deck   string            `json:"deck"`
	Fields map[string]string `json:"fields"`
	Tags   []string          `json:"tags"`
}

// Note is a note held by a Store. It satisfies splitter.Note.
type Note struct {
	rec record
}

// NewNote returns an unsaved note. Its id is assigned by Store.AddNote.
func NewNote(noteType, deck string, fields map[string]string, tags ...string) *Note {
	n := &Note{rec: record{Type: noteType, Deck: deck, Fields: make(map[string]string, len(fields))}}
	for k, v := range fields {
		n.rec.Fields[k] = v
	}
	n.SetTags(tags)
	return n
}

func (n *Note) ID() int64 { return n.rec.ID }

func (n *Note) Type() string { return n.rec.Type }

func (n *Note) Deck() string { return n.rec.Deck }

func (n *Note) Field(name string) string { return n.rec.Fields[name] }

func (n *Note) SetField(name, value string) {
	if n.rec.Fields == nil {
		n.rec.Fields = make(map[string]string)
	}
	n.rec.Fields[name] = value
}

func (n *Note) HasField(name string) bool {
	_, ok := n.rec.Fields[name]
	return ok
}

func (n *Note) Tags() []string { return slices.Clone(n.rec.Tags) }

func (n *Note) SetTags(tags []string) {
	n.rec.Tags = append([]string{}, tags...)
}

func (n *Note) clone() *Note {
	c := NewNote(n.rec.Type, n.rec.Deck, n.rec.Fields, n.rec.Tags...)
	c.rec.ID = n.rec.ID
	return c
}
