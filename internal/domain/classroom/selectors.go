package classroom

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ══════════════════════════════════════════════════════════════════════════════
// SELECTORS
// Read-only views derived from a State. They are recomputed on every call and
// never cache across states.
// ══════════════════════════════════════════════════════════════════════════════

// StudentIndex is an O(1) lookup structure over a student list.
type StudentIndex map[string]Student

// NewStudentIndex builds the index for students.
func NewStudentIndex(students []Student) StudentIndex {
	idx := make(StudentIndex, len(students))
	for _, st := range students {
		idx[st.ID] = st
	}
	return idx
}

// Get returns the student with id.
func (idx StudentIndex) Get(id string) (Student, bool) {
	st, ok := idx[id]
	return st, ok
}

// StudentByID looks up a single student.
func StudentByID(s State, id string) (Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// SeatAssignment is one occupied seat of the seating chart.
type SeatAssignment struct {
	Position  Position `json:"position"`
	StudentID string   `json:"student_id"`
	Name      string   `json:"name"`
}

// SeatingChart lists occupied seats row by row, left to right. Positions of
// students no longer on the roster are skipped; students sharing a seat are
// ordered by id.
func SeatingChart(s State) []SeatAssignment {
	idx := NewStudentIndex(s.Students)
	out := make([]SeatAssignment, 0, len(s.Seating.Positions))
	for id, pos := range s.Seating.Positions {
		st, ok := idx.Get(id)
		if !ok {
			continue
		}
		out = append(out, SeatAssignment{Position: pos, StudentID: id, Name: st.FullName})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		if a.Position.X != b.Position.X {
			return a.Position.X < b.Position.X
		}
		return a.StudentID < b.StudentID
	})
	return out
}

// CurrentStudent returns the student the views are focused on. A dangling
// pointer yields no student.
func CurrentStudent(s State) (Student, bool) {
	if s.CurrentStudentID == "" {
		return Student{}, false
	}
	return StudentByID(s, s.CurrentStudentID)
}

// ResolvedLesson is a lesson together with the subject and week it lives in.
type ResolvedLesson struct {
	Week    int     `json:"week"`
	Subject Subject `json:"subject"`
	Lesson  Lesson  `json:"lesson"`
}

// FindLesson resolves a subject/lesson pair in the syllabus. The week the
// schedule is showing is searched first, then every week in order.
func FindLesson(s State, subjectID, lessonID string) (ResolvedLesson, bool) {
	if subjectID == "" || lessonID == "" {
		return ResolvedLesson{}, false
	}
	for _, w := range s.Syllabus.Weeks {
		if w.Number == s.Schedule.Week {
			if r, ok := findInWeek(w, subjectID, lessonID); ok {
				return r, true
			}
		}
	}
	for _, w := range s.Syllabus.Weeks {
		if w.Number == s.Schedule.Week {
			continue
		}
		if r, ok := findInWeek(w, subjectID, lessonID); ok {
			return r, true
		}
	}
	return ResolvedLesson{}, false
}

func findInWeek(w Week, subjectID, lessonID string) (ResolvedLesson, bool) {
	for _, sub := range w.Subjects {
		if sub.ID != subjectID {
			continue
		}
		for _, l := range sub.Lessons {
			if l.ID == lessonID {
				return ResolvedLesson{Week: w.Number, Subject: sub, Lesson: l}, true
			}
		}
	}
	return ResolvedLesson{}, false
}

// FindSubject returns a subject of a given week.
func FindSubject(s State, week int, subjectID string) (Subject, bool) {
	for _, w := range s.Syllabus.Weeks {
		if w.Number != week {
			continue
		}
		for _, sub := range w.Subjects {
			if sub.ID == subjectID {
				return sub, true
			}
		}
	}
	return Subject{}, false
}

// HasWeek reports whether the syllabus contains the week.
func HasWeek(s State, week int) bool {
	for _, w := range s.Syllabus.Weeks {
		if w.Number == week {
			return true
		}
	}
	return false
}

// LessonForScheduleCell resolves the lesson a schedule cell points at.
// Empty cells and dangling references resolve to nothing.
func LessonForScheduleCell(s State, day, slot int) (ResolvedLesson, bool) {
	ref, ok := s.Schedule.Cells[CellKey{Day: day, Slot: slot}]
	if !ok {
		return ResolvedLesson{}, false
	}
	return FindLesson(s, ref.SubjectID, ref.LessonID)
}

// LogbookEntryFor is a direct keyed lookup.
func LogbookEntryFor(s State, week, day, slot int) (LogbookEntry, bool) {
	e, ok := s.Logbook[LogbookKey{Week: week, Day: day, Slot: slot}]
	return e, ok
}

// StoreItemByID looks up a catalog item.
func StoreItemByID(s State, id string) (StoreItem, bool) {
	for _, it := range s.Store {
		if it.ID == id {
			return it, true
		}
	}
	return StoreItem{}, false
}

// InventoryItems returns the catalog items a student owns, in purchase order.
// Ids that no longer resolve are skipped.
func InventoryItems(s State, studentID string) []StoreItem {
	ids := s.Inventory[studentID]
	items := make([]StoreItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := StoreItemByID(s, id); ok {
			items = append(items, it)
		}
	}
	return items
}

// ChatThreadFor returns the thread about a student.
func ChatThreadFor(s State, studentID string) (ChatThread, bool) {
	t, ok := s.Chats[studentID]
	return t, ok
}

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Balance   int    `json:"balance"`
	Points    Points `json:"points"`
}

// Leaderboard ranks students by balance, highest first. Ties are ordered by
// name in Vietnamese collation (Đ after D) and share the same rank.
func Leaderboard(s State) []LeaderboardEntry {
	students := append([]Student(nil), s.Students...)
	// Collators keep internal buffers; one per call.
	col := collate.New(language.Vietnamese)
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Points.Balance != students[j].Points.Balance {
			return students[i].Points.Balance > students[j].Points.Balance
		}
		return col.CompareString(students[i].FullName, students[j].FullName) < 0
	})

	entries := make([]LeaderboardEntry, len(students))
	for i, st := range students {
		rank := i + 1
		if i > 0 && st.Points.Balance == students[i-1].Points.Balance {
			rank = entries[i-1].Rank
		}
		entries[i] = LeaderboardEntry{
			Rank:      rank,
			StudentID: st.ID,
			Name:      st.FullName,
			Balance:   st.Points.Balance,
			Points:    st.Points,
		}
	}
	return entries
}

// PointHistory returns the log entries of one student, newest first.
func PointHistory(s State, studentID string) []PointEvent {
	out := make([]PointEvent, 0)
	for _, ev := range s.PointLog {
		if ev.StudentID == studentID {
			out = append(out, ev)
		}
	}
	return out
}
