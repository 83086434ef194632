package classroom

import (
	"log/slog"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION ENGINE
// Apply is a total function: it never fails and never writes into its input.
// Every case copies the slices and maps it touches and leaves the rest of the
// tree shared, so readers can compare subtrees to detect changes.
// ══════════════════════════════════════════════════════════════════════════════

// Engine computes the next state for an operation.
type Engine struct {
	ids    IDGenerator
	logger *slog.Logger
}

// NewEngine creates an Engine. ids is only used when a new lesson arrives
// without an id.
func NewEngine(ids IDGenerator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ids: ids, logger: logger}
}

// Apply returns the state after op. Unrecognized operations return s unchanged.
func (e *Engine) Apply(s State, op Operation) State {
	switch o := op.(type) {
	case SetRole:
		s.Role = o.Role
		return s
	case SetCurrentStudent:
		s.CurrentStudentID = o.StudentID
		return s
	case MoveSeat:
		return e.moveSeat(s, o)
	case SetAttendanceStatus:
		return e.setAttendance(s, o)
	case AddPoints:
		return e.addPoints(s, o)
	case BuyItem:
		return e.buyItem(s, o)
	case UpsertLesson:
		return e.upsertLesson(s, o)
	case DeleteLesson:
		return e.deleteLesson(s, o)
	case SetScheduleCell:
		return e.setScheduleCell(s, o)
	case SetScheduleWeek:
		s.Schedule.Week = o.Week
		return s
	case SaveLogbookEntry:
		return e.saveLogbook(s, o)
	case AddAnnouncement:
		s.Announcements = prepend(s.Announcements, o.Announcement)
		return s
	case SendMessage:
		return e.sendMessage(s, o)
	case AddToast:
		s.Toasts = appendCopy(s.Toasts, o.Toast)
		return s
	case DismissToast:
		return e.dismissToast(s, o)
	default:
		e.logger.Warn("engine: unknown operation ignored", "operation", describe(op))
		return s
	}
}

// ApplyAll folds ops over s in order.
func (e *Engine) ApplyAll(s State, ops ...Operation) State {
	for _, op := range ops {
		s = e.Apply(s, op)
	}
	return s
}

func (e *Engine) moveSeat(s State, o MoveSeat) State {
	positions := make(map[string]Position, len(s.Seating.Positions)+1)
	for id, p := range s.Seating.Positions {
		positions[id] = p
	}
	positions[o.StudentID] = Position{X: o.X, Y: o.Y}
	s.Seating.Positions = positions
	return s
}

func (e *Engine) setAttendance(s State, o SetAttendanceStatus) State {
	if !o.Status.IsValid() {
		return s
	}
	return updateStudent(s, o.StudentID, func(st Student) Student {
		st.Attendance.LastStatus = o.Status
		if o.Status == AttendancePresent {
			st.Attendance.PresentDays++
		} else {
			st.Attendance.AbsentDays++
		}
		return st
	})
}

func (e *Engine) addPoints(s State, o AddPoints) State {
	if !o.Category.IsValid() {
		return s
	}
	next, found := updateStudentFound(s, o.StudentID, func(st Student) Student {
		p := st.Points
		p.Balance = clampNonNegative(p.Balance + o.Delta)
		p = p.With(o.Category, clampNonNegative(p.Get(o.Category)+o.Delta))
		st.Points = p
		return st
	})
	if !found {
		return s
	}
	next.PointLog = prepend(next.PointLog, PointEvent{
		ID:        o.ID,
		StudentID: o.StudentID,
		Delta:     o.Delta,
		Category:  o.Category,
		Reason:    o.Reason,
		Timestamp: o.At,
	})
	return next
}

func (e *Engine) buyItem(s State, o BuyItem) State {
	item, ok := StoreItemByID(s, o.ItemID)
	if !ok {
		return s
	}
	st, ok := StudentByID(s, o.StudentID)
	if !ok || st.Points.Balance < item.Cost {
		return s
	}
	s = updateStudent(s, o.StudentID, func(st Student) Student {
		st.Points.Balance = clampNonNegative(st.Points.Balance - item.Cost)
		return st
	})
	inventory := make(map[string][]string, len(s.Inventory)+1)
	for id, items := range s.Inventory {
		inventory[id] = items
	}
	inventory[o.StudentID] = appendCopy(s.Inventory[o.StudentID], item.ID)
	s.Inventory = inventory
	return s
}

func (e *Engine) upsertLesson(s State, o UpsertLesson) State {
	return updateSubject(s, o.Week, o.SubjectID, func(sub Subject) Subject {
		if o.Lesson.ID != "" {
			for i, l := range sub.Lessons {
				if l.ID == o.Lesson.ID {
					lessons := append([]Lesson(nil), sub.Lessons...)
					lessons[i] = o.Lesson.ApplyTo(l)
					sub.Lessons = lessons
					return sub
				}
			}
		}
		id := o.Lesson.ID
		if id == "" && e.ids != nil {
			id = e.ids.GenerateID()
		}
		sub.Lessons = appendCopy(sub.Lessons, o.Lesson.ApplyTo(Lesson{ID: id}))
		return sub
	})
}

func (e *Engine) deleteLesson(s State, o DeleteLesson) State {
	return updateSubject(s, o.Week, o.SubjectID, func(sub Subject) Subject {
		for i, l := range sub.Lessons {
			if l.ID == o.LessonID {
				lessons := make([]Lesson, 0, len(sub.Lessons)-1)
				lessons = append(lessons, sub.Lessons[:i]...)
				lessons = append(lessons, sub.Lessons[i+1:]...)
				sub.Lessons = lessons
				return sub
			}
		}
		return sub
	})
}

func (e *Engine) setScheduleCell(s State, o SetScheduleCell) State {
	key := CellKey{Day: o.Day, Slot: o.Slot}
	cells := make(map[CellKey]LessonRef, len(s.Schedule.Cells)+1)
	for k, v := range s.Schedule.Cells {
		cells[k] = v
	}
	if o.SubjectID == "" || o.LessonID == "" {
		delete(cells, key)
	} else {
		cells[key] = LessonRef{SubjectID: o.SubjectID, LessonID: o.LessonID}
	}
	s.Schedule.Cells = cells
	return s
}

func (e *Engine) saveLogbook(s State, o SaveLogbookEntry) State {
	key := LogbookKey{Week: o.Week, Day: o.Day, Slot: o.Slot}
	current, ok := s.Logbook[key]
	if !ok {
		current = LogbookEntry{Status: LogbookDraft, Absentees: []string{}}
	}
	logbook := make(map[LogbookKey]LogbookEntry, len(s.Logbook)+1)
	for k, v := range s.Logbook {
		logbook[k] = v
	}
	logbook[key] = o.Patch.ApplyTo(current)
	s.Logbook = logbook
	return s
}

func (e *Engine) sendMessage(s State, o SendMessage) State {
	thread, ok := s.Chats[o.StudentID]
	if !ok {
		thread = ChatThread{StudentID: o.StudentID, ParentName: o.ParentName}
	}
	thread.Messages = appendCopy(thread.Messages, o.Message)
	chats := make(map[string]ChatThread, len(s.Chats)+1)
	for id, t := range s.Chats {
		chats[id] = t
	}
	chats[o.StudentID] = thread
	s.Chats = chats
	return s
}

func (e *Engine) dismissToast(s State, o DismissToast) State {
	for i, t := range s.Toasts {
		if t.ID == o.ID {
			toasts := make([]Toast, 0, len(s.Toasts)-1)
			toasts = append(toasts, s.Toasts[:i]...)
			toasts = append(toasts, s.Toasts[i+1:]...)
			s.Toasts = toasts
			return s
		}
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// COPY-ON-WRITE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func updateStudent(s State, id string, fn func(Student) Student) State {
	next, _ := updateStudentFound(s, id, fn)
	return next
}

func updateStudentFound(s State, id string, fn func(Student) Student) (State, bool) {
	for i, st := range s.Students {
		if st.ID == id {
			students := append([]Student(nil), s.Students...)
			students[i] = fn(st)
			s.Students = students
			return s, true
		}
	}
	return s, false
}

func updateSubject(s State, week int, subjectID string, fn func(Subject) Subject) State {
	for wi, w := range s.Syllabus.Weeks {
		if w.Number != week {
			continue
		}
		for si, sub := range w.Subjects {
			if sub.ID != subjectID {
				continue
			}
			subjects := append([]Subject(nil), w.Subjects...)
			subjects[si] = fn(sub)
			w.Subjects = subjects
			weeks := append([]Week(nil), s.Syllabus.Weeks...)
			weeks[wi] = w
			s.Syllabus = Syllabus{Weeks: weeks}
			return s
		}
		return s
	}
	return s
}

// prepend returns a new slice with v at the head.
func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// appendCopy returns a new slice with v at the tail, never sharing the
// backing array of list.
func appendCopy[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, v)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func describe(op Operation) string {
	if op == nil {
		return "<nil>"
	}
	return string(op.Name())
}
