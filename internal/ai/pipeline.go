package ai

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/metrics"
	"example.com/notes-ai/internal/notes"
)

// NoteLister is the slice of the note store the pipeline reads from.
type NoteLister interface {
	List(ctx context.Context, authorID string, order notes.Order) ([]notes.Note, error)
}

// Pipeline answers questions about one user's notes.
type Pipeline struct {
	notes   NoteLister
	gen     Generator
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewPipeline(n NoteLister, gen Generator, log *zap.SugaredLogger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{notes: n, gen: gen, log: log, metrics: m}
}

// Ask rebuilds the prompt from the user's notes and the whole conversation
// and makes one generation call. A failed generation is returned as an
// error block in the HTML, not as an error; errors are reserved for a
// missing identity and for note loading failures.
func (p *Pipeline) Ask(ctx context.Context, authorID string, questions, answers []string) (string, error) {
	if authorID == "" {
		return "", auth.ErrUnauthenticated
	}

	ns, err := p.notes.List(ctx, authorID, notes.OrderCreated)
	if err != nil {
		return "", fmt.Errorf("failed to load notes: %w", err)
	}
	if len(ns) == 0 {
		p.metrics.AIRequest("empty", 0)
		return NoNotesMessage, nil
	}

	prompt := BuildPrompt(FormatNotes(ns), BuildConversation(questions, answers))

	start := time.Now()
	text, err := p.gen.Generate(ctx, prompt)
	took := time.Since(start)
	if err != nil {
		p.metrics.AIRequest(metrics.OutcomeError, took)
		p.log.Errorw("ai generation failed", "authorId", authorID, "turns", len(questions), "ERROR", err)
		return ErrorBlock(err), nil
	}

	p.metrics.AIRequest(metrics.OutcomeOK, took)
	return Sanitize(text), nil
}

// ErrorBlock renders err as a user visible paragraph.
func ErrorBlock(err error) string {
	return `<p class="text-red-500">Error: ` + html.EscapeString(err.Error()) + `</p>`
}
