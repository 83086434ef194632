package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
	"github.com/alem-hub/classroom-hub/internal/domain/slide"
)

// ══════════════════════════════════════════════════════════════════════════════
// SLIDE GENERATION
// The only suspending action. Other actions keep working while a request is in
// flight and apply against the state current at their own dispatch.
// ══════════════════════════════════════════════════════════════════════════════

// ErrSlidesUnavailable is returned when no generator is configured.
var ErrSlidesUnavailable = errors.New("command: slide generator is not configured")

// GenerateSlidesCommand asks for a deck for one lesson.
type GenerateSlidesCommand struct {
	SubjectID string `validate:"required"`
	LessonID  string `validate:"required"`
}

// RequestSlideGeneration resolves the lesson, waits for the generator and
// returns the deck. A missing lesson returns ErrLessonNotFound without calling
// the generator.
func (h *Handler) RequestSlideGeneration(ctx context.Context, cmd GenerateSlidesCommand) (*slide.Deck, error) {
	if err := h.validateCommand("RequestSlideGeneration", cmd); err != nil {
		return nil, err
	}
	resolved, ok := classroom.FindLesson(h.store.State(), cmd.SubjectID, cmd.LessonID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrLessonNotFound, cmd.SubjectID, cmd.LessonID)
	}
	if h.slides == nil {
		return nil, ErrSlidesUnavailable
	}

	deck, err := h.slides.Generate(ctx, cmd.SubjectID, cmd.LessonID)
	if err != nil {
		return nil, fmt.Errorf("generate slides for %s: %w", cmd.LessonID, err)
	}

	h.notify(ctx, classroom.SeveritySuccess, "Đã tạo slide bài giảng", resolved.Lesson.Title)
	return deck, nil
}

// SlideTask is a pending slide generation. Abandoning it is allowed: the
// generation still runs to completion and its result is dropped.
type SlideTask struct {
	done chan struct{}
	deck *slide.Deck
	err  error
}

// StartSlideGeneration runs RequestSlideGeneration in the background.
func (h *Handler) StartSlideGeneration(ctx context.Context, cmd GenerateSlidesCommand) *SlideTask {
	task := &SlideTask{done: make(chan struct{})}
	go func() {
		defer close(task.done)
		task.deck, task.err = h.RequestSlideGeneration(ctx, cmd)
	}()
	return task
}

// Done is closed once the result is available.
func (t *SlideTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the deck is ready or ctx ends. Ending ctx does not stop
// the generation.
func (t *SlideTask) Wait(ctx context.Context) (*slide.Deck, error) {
	select {
	case <-t.done:
		return t.deck, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
