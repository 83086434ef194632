package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/slide"
)

// StateReader returns the latest classroom state.
type StateReader interface {
	State() classroom.State
}

// SimulatedSlideGenerator stands in for an AI slide service. It waits a fixed
// delay and builds a deterministic deck from the lesson content.
type SimulatedSlideGenerator struct {
	state  StateReader
	delay  time.Duration
	logger *slog.Logger
}

var _ slide.Generator = (*SimulatedSlideGenerator)(nil)

// NewSimulatedSlideGenerator creates a generator reading lessons from state.
func NewSimulatedSlideGenerator(state StateReader, delay time.Duration, logger *slog.Logger) *SimulatedSlideGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulatedSlideGenerator{state: state, delay: delay, logger: logger}
}

// Generate implements slide.Generator. The lesson is resolved after the delay
// so edits made while waiting are reflected in the deck.
func (g *SimulatedSlideGenerator) Generate(ctx context.Context, subjectID, lessonID string) (*slide.Deck, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	state := g.state.State()
	resolved, ok := classroom.FindLesson(state, subjectID, lessonID)
	if !ok {
		return nil, slide.ErrLessonNotFound
	}

	g.logger.Debug("slides generated", "subject_id", subjectID, "lesson_id", lessonID)
	return buildDeck(resolved, state.Schedule.Week), nil
}

func buildDeck(r classroom.ResolvedLesson, week int) *slide.Deck {
	l := r.Lesson
	return &slide.Deck{
		Title: l.Title,
		Slides: []slide.Slide{
			{
				Kind:    slide.KindTitle,
				Heading: l.Title,
				Sub:     fmt.Sprintf("%s · Tuần %d", r.Subject.Name, week),
				Bullets: []string{},
			},
			{
				Kind:    slide.KindTheory,
				Heading: "Mục tiêu bài học",
				Bullets: nonEmpty(l.Objective, splitSentences(l.Content)...),
			},
			{
				Kind:    slide.KindActivity,
				Heading: "Hoạt động trên lớp",
				Bullets: []string{
					"Khởi động: trò chơi ôn bài cũ",
					"Thảo luận nhóm: " + l.Title,
					"Chia sẻ kết quả trước lớp",
				},
			},
			{
				Kind:    slide.KindHomework,
				Heading: "Bài tập về nhà",
				Bullets: []string{
					"Ôn lại nội dung: " + l.Title,
					"Chuẩn bị bài tiếp theo môn " + r.Subject.Name,
				},
			},
		},
		Meta: slide.Meta{SubjectID: r.Subject.ID, LessonID: l.ID},
	}
}

func splitSentences(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonEmpty(first string, rest ...string) []string {
	out := make([]string, 0, len(rest)+1)
	if strings.TrimSpace(first) != "" {
		out = append(out, first)
	}
	return append(out, rest...)
}
