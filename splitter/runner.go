package splitter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/utils"
)

const (
	questionExcerptLimit = 200

	progressTitle   = "Splitting long answers with AI..."
	progressStepFmt = "Processing note %d/%d..."
)

// NoteSplitter is the split call the Runner depends on. *Splitter
// implements it.
type NoteSplitter interface {
	Split(ctx context.Context, req Request, settings *config.Settings) ([]llm.SplitCard, error)
}

// Outcome is the result for one selected note: either cards or an error.
type Outcome struct {
	NoteID int64
	Cards  []llm.SplitCard
	// Created holds the ids of the notes added for Cards.
	Created []int64
	Err     error
}

// Failure is a user-facing description of a failed note.
type Failure struct {
	NoteID  int64
	Message string
}

// Report summarizes one batch.
type Report struct {
	RunID    uuid.UUID
	Selected int
	Created  int
	Failures []Failure
	Outcomes []Outcome
}

// Summary is the text shown to the user at the end of a batch.
func (r *Report) Summary() string {
	msg := fmt.Sprintf("Finished splitting long-answer cards.\n\nNew notes created: %d", r.Created)
	if len(r.Failures) > 0 {
		msg += fmt.Sprintf("\nNotes failed: %d (see errors above for details).", len(r.Failures))
	}
	return msg
}

// Runner processes notes strictly one after another.
type Runner struct {
	splitter   NoteSplitter
	collection Collection
	progress   Progress
	logger     utils.Logger
}

func NewRunner(splitter NoteSplitter, collection Collection, logger utils.Logger) *Runner {
	return &Runner{
		splitter:   splitter,
		collection: collection,
		progress:   nopProgress{},
		logger:     logger,
	}
}

// SetProgress installs a progress sink; nil restores the silent default.
func (r *Runner) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	r.progress = p
}

// Select returns the ids worth splitting, in input order: notes that exist,
// carry neither tag, have both fields, and whose answer is longer than
// MaxAnswerChars characters.
func (r *Runner) Select(ctx context.Context, ids []int64, settings *config.Settings) ([]int64, error) {
	var selected []int64
	for _, id := range ids {
		note, err := r.collection.GetNote(ctx, id)
		if errors.Is(err, ErrNoteNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load note %d: %w", id, err)
		}
		if hasAnyTag(note.Tags(), settings.TagForNew, settings.TagForOriginal) {
			continue
		}
		if !note.HasField(settings.QuestionField) || !note.HasField(settings.AnswerField) {
			continue
		}
		if utils.RuneLen(note.Field(settings.AnswerField)) > settings.MaxAnswerChars {
			selected = append(selected, id)
		}
	}
	r.logger.Debug("Selected long notes", "candidates", len(ids), "selected", len(selected))
	return selected, nil
}

// Run splits every note in ids. A failing note is recorded and the batch
// continues. The returned error is only set when the collection cannot be
// saved or ctx is done; the report is valid either way.
func (r *Runner) Run(ctx context.Context, ids []int64, settings *config.Settings) (*Report, error) {
	report := &Report{RunID: uuid.New(), Selected: len(ids)}
	r.logger.Info("Starting split batch", "run_id", report.RunID, "notes", len(ids), "provider", settings.Provider, "model", settings.Model)

	r.progress.Start(len(ids), progressTitle)
	var runErr error
	for idx, id := range ids {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		r.progress.Update(idx+1, len(ids), fmt.Sprintf(progressStepFmt, idx+1, len(ids)))

		outcome, ok := r.processNote(ctx, id, settings)
		if !ok {
			continue
		}
		report.Outcomes = append(report.Outcomes, outcome.Outcome)
		report.Created += len(outcome.Created)
		if outcome.Err != nil {
			report.Failures = append(report.Failures, Failure{NoteID: id, Message: outcome.message})
		}
	}
	r.progress.Finish()

	if err := r.collection.Save(ctx); err != nil {
		return report, errors.Join(runErr, fmt.Errorf("failed to save collection: %w", err))
	}

	r.logger.Info("Split batch finished", "run_id", report.RunID, "created", report.Created, "failed", len(report.Failures))
	return report, runErr
}

type noteOutcome struct {
	Outcome
	message string
}

// processNote reports ok=false for notes that vanished or lost a field
// since selection; those are skipped silently.
func (r *Runner) processNote(ctx context.Context, id int64, settings *config.Settings) (noteOutcome, bool) {
	out := noteOutcome{Outcome: Outcome{NoteID: id}}

	note, err := r.collection.GetNote(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNoteNotFound) {
			r.fail(&out, id, "", err)
			return out, true
		}
		return out, false
	}
	if !note.HasField(settings.QuestionField) || !note.HasField(settings.AnswerField) {
		return out, false
	}

	question := note.Field(settings.QuestionField)
	cards, err := r.splitter.Split(ctx, Request{
		NoteID:   id,
		Question: question,
		Answer:   note.Field(settings.AnswerField),
	}, settings)
	if err != nil {
		r.fail(&out, id, question, err)
		return out, true
	}
	out.Cards = cards

	newTags := mergeTags(note.Tags(), settings.TagForNew, fmt.Sprintf("%s_%d", settings.TagForNew, id))
	for _, card := range cards {
		created, err := r.addCard(ctx, note, card, newTags, settings)
		if err != nil {
			r.fail(&out, id, question, err)
			break
		}
		out.Created = append(out.Created, created)
	}
	// Once any card exists the original is tagged, even after a partial
	// failure, so a rerun cannot duplicate the cards already added.
	if out.Err != nil && len(out.Created) == 0 {
		return out, true
	}

	note.SetTags(mergeTags(note.Tags(), settings.TagForOriginal))
	if err := r.collection.UpdateNote(ctx, note); err != nil {
		r.fail(&out, id, question, errors.Join(out.Err, err))
	}
	return out, true
}

func (r *Runner) addCard(ctx context.Context, original Note, card llm.SplitCard, tags []string, settings *config.Settings) (int64, error) {
	n, err := r.collection.NewNoteFrom(ctx, original)
	if err != nil {
		return 0, fmt.Errorf("failed to create note: %w", err)
	}
	n.SetField(settings.QuestionField, card.Question)
	n.SetField(settings.AnswerField, card.Answer)
	n.SetTags(tags)
	if err := r.collection.AddNote(ctx, n); err != nil {
		return 0, fmt.Errorf("failed to add note: %w", err)
	}
	return n.ID(), nil
}

func (r *Runner) fail(out *noteOutcome, id int64, question string, err error) {
	out.Err = err
	out.message = FailureMessage(id, question, err)
	llm.LogError(r.logger, "Note failed", err, "note_id", id)
}

// FailureMessage formats the user-facing message for a failed note.
func FailureMessage(id int64, question string, err error) string {
	return fmt.Sprintf("Error while splitting note %d:\n\n%v\n\nQuestion:\n%s...",
		id, err, utils.Truncate(question, questionExcerptLimit))
}

func hasAnyTag(tags []string, want ...string) bool {
	for _, t := range tags {
		for _, w := range want {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

// mergeTags appends extra to tags, keeping order and dropping duplicates.
func mergeTags(tags []string, extra ...string) []string {
	out := make([]string, 0, len(tags)+len(extra))
	seen := make(map[string]struct{}, len(tags)+len(extra))
	for _, t := range append(append([]string(nil), tags...), extra...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
