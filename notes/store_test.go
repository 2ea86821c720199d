package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

const sampleNotes = `{
  "notes": [
    {"id": 10, "type": "Basic", "deck": "Networking", "fields": {"Front": "What is TCP?", "Back": "A long answer"}, "tags": ["net"]},
    {"id": 11, "type": "Basic", "deck": "Networking", "fields": {"Front": "What is UDP?", "Back": "Short"}, "tags": ["net", "easy"]},
    {"id": 42, "type": "Cloze", "deck": "Biology", "fields": {"Text": "Mitochondria"}, "tags": []}
  ]
}`

func writeNotes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStoreFindNotes(t *testing.T) {
	store, err := Open(writeNotes(t, sampleNotes), utils.NewNopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{10, 11, 42}},
		{"deck:networking", []int64{10, 11}},
		{"tag:easy", []int64{11}},
		{"deck:Networking tag:NET", []int64{10, 11}},
		{"deck:Networking tcp", []int64{10}},
		{"mitochondria", []int64{42}},
		{"deck:Chemistry", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := store.FindNotes(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreGetNote(t *testing.T) {
	store, err := Open(writeNotes(t, sampleNotes), utils.NewNopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	note, err := store.GetNote(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), note.ID())
	assert.True(t, note.HasField("Front"))
	assert.False(t, note.HasField("Extra"))
	assert.Equal(t, "What is TCP?", note.Field("Front"))
	assert.Equal(t, []string{"net"}, note.Tags())

	note.SetTags([]string{"changed"})
	again, err := store.GetNote(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"net"}, again.Tags(), "changes need UpdateNote")

	_, err = store.GetNote(ctx, 999)
	assert.ErrorIs(t, err, splitter.ErrNoteNotFound)
}

func TestStoreRoundTrip(t *testing.T) {
	path := writeNotes(t, sampleNotes)
	store, err := Open(path, utils.NewNopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	original, err := store.GetNote(ctx, 10)
	require.NoError(t, err)

	created, err := store.NewNoteFrom(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, "A long answer", created.Field("Back"))
	assert.Empty(t, created.Tags())

	created.SetField("Back", "Short one")
	created.SetTags([]string{"net", "SplitFromLong"})
	require.NoError(t, store.AddNote(ctx, created))
	assert.Equal(t, int64(43), created.ID())
	assert.Error(t, store.AddNote(ctx, created), "a note is added once")

	original.SetTags([]string{"net", "LongAnswerSplitSource"})
	require.NoError(t, store.UpdateNote(ctx, original))
	require.NoError(t, store.Save(ctx))

	reopened, err := Open(path, utils.NewNopLogger())
	require.NoError(t, err)

	ids, err := reopened.FindNotes(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 42, 43}, ids)

	n, err := reopened.GetNote(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, "What is TCP?", n.Field("Front"))
	assert.Equal(t, "Short one", n.Field("Back"))
	assert.Equal(t, []string{"net", "SplitFromLong"}, n.Tags())
	assert.Equal(t, "Networking", n.(*Note).Deck())
	assert.Equal(t, "Basic", n.(*Note).Type())

	o, err := reopened.GetNote(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"net", "LongAnswerSplitSource"}, o.Tags())
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	store, err := Open(path, utils.NewNopLogger())
	require.NoError(t, err)

	ids, err := store.FindNotes(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.AddNote(context.Background(), NewNote("Basic", "Default", map[string]string{"Front": "q"})))
	require.NoError(t, store.Save(context.Background()))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"zero id", `{"notes":[{"id":0,"fields":{}}]}`},
		{"duplicate id", `{"notes":[{"id":1,"fields":{}},{"id":1,"fields":{}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeNotes(t, tt.content), utils.NewNopLogger())
			assert.Error(t, err)
		})
	}
}
