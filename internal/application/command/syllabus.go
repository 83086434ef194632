package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYLLABUS
// ══════════════════════════════════════════════════════════════════════════════

// UpsertLessonCommand creates or partially updates a lesson.
type UpsertLessonCommand struct {
	Week      int    `validate:"min=1"`
	SubjectID string `validate:"required"`
	Lesson    classroom.LessonPatch
}

// UpsertLesson merges into the lesson with the patch id, or appends a new
// lesson. New lessons get a fresh id when none is supplied.
func (h *Handler) UpsertLesson(ctx context.Context, cmd UpsertLessonCommand) (*classroom.Lesson, error) {
	if err := h.validateCommand("UpsertLesson", cmd); err != nil {
		return nil, err
	}
	patch := cmd.Lesson
	if patch.ID == "" {
		patch.ID = h.ids.GenerateID()
	}

	// A caller-supplied id that is not in the subject yet is a creation too.
	created := false
	next, err := h.store.Update(func(state classroom.State) ([]classroom.Operation, error) {
		if err := h.requireSubject(state, cmd.Week, cmd.SubjectID); err != nil {
			return nil, err
		}
		sub, _ := classroom.FindSubject(state, cmd.Week, cmd.SubjectID)
		created = !hasLesson(sub, patch.ID)
		return []classroom.Operation{classroom.UpsertLesson{Week: cmd.Week, SubjectID: cmd.SubjectID, Lesson: patch}}, nil
	})
	if err != nil {
		return nil, err
	}

	sub, _ := classroom.FindSubject(next, cmd.Week, cmd.SubjectID)
	var lesson classroom.Lesson
	for _, l := range sub.Lessons {
		if l.ID == patch.ID {
			lesson = l
			break
		}
	}

	title := "Đã cập nhật bài học"
	if created {
		title = "Đã thêm bài học"
	}
	h.notify(ctx, classroom.SeveritySuccess, title, lesson.Title)

	return &lesson, nil
}

func hasLesson(sub classroom.Subject, id string) bool {
	for _, l := range sub.Lessons {
		if l.ID == id {
			return true
		}
	}
	return false
}

// DeleteLessonCommand removes a lesson.
type DeleteLessonCommand struct {
	Week      int    `validate:"min=1"`
	SubjectID string `validate:"required"`
	LessonID  string `validate:"required"`
}

// DeleteLesson removes a lesson. Schedule cells pointing at it keep their
// reference and resolve to nothing from now on.
func (h *Handler) DeleteLesson(ctx context.Context, cmd DeleteLessonCommand) error {
	if err := h.validateCommand("DeleteLesson", cmd); err != nil {
		return err
	}
	state := h.store.State()
	if err := h.requireSubject(state, cmd.Week, cmd.SubjectID); err != nil {
		return err
	}
	sub, _ := classroom.FindSubject(state, cmd.Week, cmd.SubjectID)
	var title string
	found := false
	for _, l := range sub.Lessons {
		if l.ID == cmd.LessonID {
			title, found = l.Title, true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s/%s", shared.ErrLessonNotFound, cmd.SubjectID, cmd.LessonID)
	}

	h.store.Dispatch(classroom.DeleteLesson{Week: cmd.Week, SubjectID: cmd.SubjectID, LessonID: cmd.LessonID})
	h.notify(ctx, classroom.SeverityInfo, "Đã xoá bài học", title)
	return nil
}

func (h *Handler) requireSubject(state classroom.State, week int, subjectID string) error {
	if !classroom.HasWeek(state, week) {
		return fmt.Errorf("%w: week %d", shared.ErrWeekNotFound, week)
	}
	if _, ok := classroom.FindSubject(state, week, subjectID); !ok {
		return fmt.Errorf("%w: %s in week %d", shared.ErrSubjectNotFound, subjectID, week)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// SetScheduleCellCommand assigns a lesson to a schedule cell. Leaving either
// id empty clears the cell.
type SetScheduleCellCommand struct {
	Day       int `validate:"min=0"`
	Slot      int `validate:"min=0"`
	SubjectID string
	LessonID  string
}

// SetScheduleCell assigns or clears a cell. The lesson reference is not
// required to resolve: schedule and syllabus may be edited in any order.
func (h *Handler) SetScheduleCell(ctx context.Context, cmd SetScheduleCellCommand) error {
	if err := h.validateCommand("SetScheduleCell", cmd); err != nil {
		return err
	}
	sched := h.store.State().Schedule
	if cmd.Day >= len(sched.Days) || cmd.Slot >= len(sched.Slots) {
		return fmt.Errorf("%w: cell %d_%d outside %d days x %d slots", shared.ErrInvalidInput,
			cmd.Day, cmd.Slot, len(sched.Days), len(sched.Slots))
	}

	next := h.store.Dispatch(classroom.SetScheduleCell{
		Day:       cmd.Day,
		Slot:      cmd.Slot,
		SubjectID: cmd.SubjectID,
		LessonID:  cmd.LessonID,
	})

	msg := "Đã xoá tiết học"
	if r, ok := classroom.LessonForScheduleCell(next, cmd.Day, cmd.Slot); ok {
		msg = r.Lesson.Title
	} else if cmd.SubjectID != "" && cmd.LessonID != "" {
		msg = "Chưa gán bài học"
	}
	h.notify(ctx, classroom.SeverityInfo, "Đã cập nhật thời khoá biểu", msg)
	return nil
}

// SetScheduleWeek switches the week the schedule shows.
func (h *Handler) SetScheduleWeek(ctx context.Context, week int) error {
	if week < 1 {
		return fmt.Errorf("%w: week %d", shared.ErrInvalidInput, week)
	}
	h.store.Dispatch(classroom.SetScheduleWeek{Week: week})
	return nil
}
