package classroom

import "time"

// LessonPatch is a partial lesson update. Nil fields keep their current value.
// An empty ID on insert asks the engine to generate one.
type LessonPatch struct {
	ID        string  `json:"id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Objective *string `json:"objective,omitempty"`
	Content   *string `json:"content,omitempty"`
}

// ApplyTo overlays the patch on l.
func (p LessonPatch) ApplyTo(l Lesson) Lesson {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Objective != nil {
		l.Objective = *p.Objective
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
	return l
}

// LogbookPatch is a shallow logbook update. Nil fields keep their current
// value; a non-nil Absentees slice (even empty) replaces the list.
type LogbookPatch struct {
	Status      *LogbookStatus `json:"status,omitempty"`
	Rating      *int           `json:"rating,omitempty"`
	Absentees   []string       `json:"absentees,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	Signer      *string        `json:"signer,omitempty"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
}

// ApplyTo overlays the patch on e.
func (p LogbookPatch) ApplyTo(e LogbookEntry) LogbookEntry {
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Rating != nil {
		e.Rating = *p.Rating
	}
	if p.Absentees != nil {
		e.Absentees = append([]string(nil), p.Absentees...)
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Signer != nil {
		e.Signer = *p.Signer
	}
	if p.SubmittedAt != nil {
		at := *p.SubmittedAt
		e.SubmittedAt = &at
	}
	return e
}

// Ptr returns a pointer to v. Handy when building patches.
func Ptr[T any](v T) *T {
	return &v
}
