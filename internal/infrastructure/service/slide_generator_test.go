package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
	"github.com/alem-hub/classroom-hub/internal/domain/slide"
)

func TestSimulatedSlideGenerator_BuildsDeck(t *testing.T) {
	g := NewSimulatedSlideGenerator(newTestStore(), 0, nil)

	deck, err := g.Generate(context.Background(), "toan", "toan-1-1")

	require.NoError(t, err)
	assert.Equal(t, "Phép cộng trong phạm vi 100", deck.Title)
	assert.Equal(t, slide.Meta{SubjectID: "toan", LessonID: "toan-1-1"}, deck.Meta)
	require.Len(t, deck.Slides, len(slide.Order))
	for i, kind := range slide.Order {
		assert.Equal(t, kind, deck.Slides[i].Kind)
	}
	assert.Equal(t, "Toán · Tuần 1", deck.Slides[0].Sub)
	assert.Equal(t, []string{
		"Cộng có nhớ hai chữ số",
		"Ôn tập bảng cộng, đặt tính rồi tính",
	}, deck.Slides[1].Bullets)
}

func TestSimulatedSlideGenerator_MissingLesson(t *testing.T) {
	g := NewSimulatedSlideGenerator(newTestStore(), 0, nil)

	_, err := g.Generate(context.Background(), "toan", "toan-9-9")

	assert.ErrorIs(t, err, slide.ErrLessonNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestSimulatedSlideGenerator_SeesEditsMadeWhileWaiting(t *testing.T) {
	st := newTestStore()
	g := NewSimulatedSlideGenerator(st, 30*time.Millisecond, nil)

	done := make(chan *slide.Deck, 1)
	go func() {
		deck, _ := g.Generate(context.Background(), "khoa-hoc", "kh-1-1")
		done <- deck
	}()
	st.Dispatch(classroom.UpsertLesson{Week: 1, SubjectID: "khoa-hoc", Lesson: classroom.LessonPatch{
		ID:    "kh-1-1",
		Title: classroom.Ptr("Nước quanh ta"),
	}})

	deck := <-done
	require.NotNil(t, deck)
	assert.Equal(t, "Nước quanh ta", deck.Title)
}

func TestSimulatedSlideGenerator_ContextCancel(t *testing.T) {
	g := NewSimulatedSlideGenerator(newTestStore(), time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "toan", "toan-1-1")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"Một", "Hai", "Ba"}, splitSentences("Một. Hai.\nBa."))
	assert.Empty(t, splitSentences(" . "))
	assert.Equal(t, []string{"x"}, nonEmpty("  ", "x"))
}
