// Package slide defines the contract of the slide-deck generator: the shape
// of a generated deck and the errors a generator may return.
package slide

import (
	"context"

	"github.com/alem-hub/classroom-hub/internal/domain/shared"
)

// Kind is the role of a slide inside a deck.
type Kind string

const (
	KindTitle    Kind = "title"
	KindTheory   Kind = "theory"
	KindActivity Kind = "activity"
	KindHomework Kind = "homework"
)

// Order is the fixed slide order of every deck.
var Order = []Kind{KindTitle, KindTheory, KindActivity, KindHomework}

// Slide is a single slide.
type Slide struct {
	Kind    Kind     `json:"type"`
	Heading string   `json:"heading"`
	Sub     string   `json:"sub,omitempty"`
	Bullets []string `json:"bullets"`
}

// Meta identifies the lesson a deck was generated for.
type Meta struct {
	SubjectID string `json:"subject_id"`
	LessonID  string `json:"lesson_id"`
}

// Deck is a generated slide deck.
type Deck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
	Meta   Meta    `json:"meta"`
}

// ErrLessonNotFound is returned when the requested lesson does not exist.
var ErrLessonNotFound = shared.NewDomainError("slide", "Generate", shared.ErrNotFound, "lesson not found")

// Generator produces a deck for a lesson. Implementations must not share
// mutable state between calls.
type Generator interface {
	Generate(ctx context.Context, subjectID, lessonID string) (*Deck, error)
}
