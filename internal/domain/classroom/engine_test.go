package classroom

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct{ n int }

func (g *seqIDs) GenerateID() string {
	g.n++
	return fmt.Sprintf("gen-%d", g.n)
}

var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(&seqIDs{}, nil)
}

func award(id, student string, delta int, c Category) AddPoints {
	return AddPoints{ID: id, StudentID: student, Delta: delta, Category: c, Reason: "test", At: testNow}
}

func TestEngine_AddPointsAwardsAndLogs(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, award("p1", "s1", 30, CategoryChamChi))

	st, ok := StudentByID(next, "s1")
	require.True(t, ok)
	assert.Equal(t, 80, st.Points.Balance)
	assert.Equal(t, 50, st.Points.ChamChi)
	assert.Equal(t, 15, st.Points.SangTao)

	require.Len(t, next.PointLog, 1)
	assert.Equal(t, "p1", next.PointLog[0].ID)
	assert.Equal(t, 30, next.PointLog[0].Delta)
	assert.Equal(t, testNow, next.PointLog[0].Timestamp)

	// the input tree is untouched
	orig, _ := StudentByID(s, "s1")
	assert.Equal(t, 50, orig.Points.Balance)
	assert.Empty(t, s.PointLog)
}

func TestEngine_AddPointsNeverGoesNegative(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, award("p1", "s4", -500, CategorySangTao))

	st, _ := StudentByID(next, "s4")
	assert.Equal(t, 0, st.Points.Balance)
	assert.Equal(t, 0, st.Points.SangTao)
	assert.Equal(t, 10, st.Points.ChamChi)
	// the log keeps the requested delta
	require.Len(t, next.PointLog, 1)
	assert.Equal(t, -500, next.PointLog[0].Delta)
}

func TestEngine_AddPointsNewestFirst(t *testing.T) {
	e := newTestEngine()
	s := e.ApplyAll(NewDemoState(testNow),
		award("p1", "s1", 5, CategoryKyLuat),
		award("p2", "s2", 5, CategoryKyLuat),
	)

	require.Len(t, s.PointLog, 2)
	assert.Equal(t, "p2", s.PointLog[0].ID)
	assert.Equal(t, "p1", s.PointLog[1].ID)
}

func TestEngine_AddPointsIgnoresUnknownStudentAndCategory(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, award("p1", "ghost", 10, CategoryChamChi))
	assert.Empty(t, next.PointLog)

	next = e.Apply(s, award("p2", "s1", 10, Category("bogus")))
	assert.Empty(t, next.PointLog)
	st, _ := StudentByID(next, "s1")
	assert.Equal(t, 50, st.Points.Balance)
}

func TestEngine_BuyItem(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, BuyItem{StudentID: "s2", ItemID: "homework-pass"})

	st, _ := StudentByID(next, "s2")
	assert.Equal(t, 40, st.Points.Balance)
	// category totals are not spent
	assert.Equal(t, 50, st.Points.ChamChi)
	assert.Equal(t, []string{"homework-pass"}, next.Inventory["s2"])
	assert.Empty(t, s.Inventory["s2"])

	next = e.Apply(next, BuyItem{StudentID: "s2", ItemID: "sticker"})
	assert.Equal(t, []string{"homework-pass", "sticker"}, next.Inventory["s2"])
}

func TestEngine_BuyItemWithoutEnoughPointsIsNoop(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, BuyItem{StudentID: "s1", ItemID: "homework-pass"})

	st, _ := StudentByID(next, "s1")
	assert.Equal(t, 50, st.Points.Balance)
	assert.Empty(t, next.Inventory["s1"])
}

func TestEngine_BuyItemUnknownItemOrStudent(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, BuyItem{StudentID: "s2", ItemID: "unicorn"})
	assert.Empty(t, next.Inventory)

	next = e.Apply(s, BuyItem{StudentID: "ghost", ItemID: "sticker"})
	assert.Empty(t, next.Inventory)
}

func TestEngine_BuyItemExactBalance(t *testing.T) {
	e := newTestEngine()
	s := e.Apply(NewDemoState(testNow), award("p1", "s1", 30, CategoryChamChi))

	next := e.Apply(s, BuyItem{StudentID: "s1", ItemID: "homework-pass"})

	st, _ := StudentByID(next, "s1")
	assert.Equal(t, 0, st.Points.Balance)
	assert.Equal(t, []string{"homework-pass"}, next.Inventory["s1"])
}

func TestEngine_Attendance(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.ApplyAll(s,
		SetAttendanceStatus{StudentID: "s1", Status: AttendancePresent},
		SetAttendanceStatus{StudentID: "s1", Status: AttendancePresent},
		SetAttendanceStatus{StudentID: "s1", Status: AttendanceAbsent},
	)

	st, _ := StudentByID(next, "s1")
	assert.Equal(t, 20, st.Attendance.PresentDays)
	assert.Equal(t, 2, st.Attendance.AbsentDays)
	assert.Equal(t, AttendanceAbsent, st.Attendance.LastStatus)

	unchanged := e.Apply(next, SetAttendanceStatus{StudentID: "s1", Status: "late"})
	assert.Equal(t, next.Students, unchanged.Students)
}

func TestEngine_MoveSeatLastWriterWins(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)
	target := s.Seating.Positions["s2"]

	next := e.Apply(s, MoveSeat{StudentID: "s1", X: target.X, Y: target.Y})

	assert.Equal(t, target, next.Seating.Positions["s1"])
	assert.Equal(t, target, next.Seating.Positions["s2"])
	assert.Equal(t, Position{X: 0, Y: 0}, s.Seating.Positions["s1"])
}

func TestEngine_UpsertLessonInsertAndMerge(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, UpsertLesson{Week: 1, SubjectID: "toan", Lesson: LessonPatch{
		Title:     Ptr("Ôn tập"),
		Objective: Ptr("Củng cố"),
	}})
	sub, ok := FindSubject(next, 1, "toan")
	require.True(t, ok)
	require.Len(t, sub.Lessons, 3)
	assert.Equal(t, "gen-1", sub.Lessons[2].ID)
	assert.Equal(t, "Ôn tập", sub.Lessons[2].Title)

	next = e.Apply(next, UpsertLesson{Week: 1, SubjectID: "toan", Lesson: LessonPatch{
		ID:      "toan-1-1",
		Content: Ptr("Nội dung mới"),
	}})
	r, ok := FindLesson(next, "toan", "toan-1-1")
	require.True(t, ok)
	assert.Equal(t, "Phép cộng trong phạm vi 100", r.Lesson.Title)
	assert.Equal(t, "Nội dung mới", r.Lesson.Content)

	orig, _ := FindLesson(s, "toan", "toan-1-1")
	assert.Equal(t, "Ôn tập bảng cộng, đặt tính rồi tính.", orig.Lesson.Content)
}

func TestEngine_UpsertLessonUnknownSubjectIsNoop(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, UpsertLesson{Week: 9, SubjectID: "toan", Lesson: LessonPatch{Title: Ptr("x")}})
	assert.Equal(t, s.Syllabus, next.Syllabus)

	next = e.Apply(s, UpsertLesson{Week: 1, SubjectID: "am-nhac", Lesson: LessonPatch{Title: Ptr("x")}})
	assert.Equal(t, s.Syllabus, next.Syllabus)
}

func TestEngine_UpsertThenDeleteRestoresSubject(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)
	before, _ := FindSubject(s, 2, "toan")

	next := e.ApplyAll(s,
		UpsertLesson{Week: 2, SubjectID: "toan", Lesson: LessonPatch{ID: "toan-2-9", Title: Ptr("Bảng nhân 3")}},
		DeleteLesson{Week: 2, SubjectID: "toan", LessonID: "toan-2-9"},
	)

	after, _ := FindSubject(next, 2, "toan")
	assert.Equal(t, before.Lessons, after.Lessons)
}

func TestEngine_DeleteLessonLeavesDanglingCell(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	_, ok := LessonForScheduleCell(s, 0, 0)
	require.True(t, ok)

	next := e.Apply(s, DeleteLesson{Week: 1, SubjectID: "toan", LessonID: "toan-1-1"})

	ref, ok := next.Schedule.Cells[CellKey{Day: 0, Slot: 0}]
	assert.True(t, ok)
	assert.Equal(t, "toan-1-1", ref.LessonID)
	_, ok = LessonForScheduleCell(next, 0, 0)
	assert.False(t, ok)
}

func TestEngine_SetScheduleCell(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, SetScheduleCell{Day: 4, Slot: 4, SubjectID: "tieng-viet", LessonID: "tv-2-1"})
	r, ok := LessonForScheduleCell(next, 4, 4)
	require.True(t, ok)
	assert.Equal(t, 2, r.Week)
	assert.Equal(t, "Chính tả: Mẹ", r.Lesson.Title)
	_, ok = s.Schedule.Cells[CellKey{Day: 4, Slot: 4}]
	assert.False(t, ok)

	cleared := e.Apply(next, SetScheduleCell{Day: 4, Slot: 4})
	_, ok = cleared.Schedule.Cells[CellKey{Day: 4, Slot: 4}]
	assert.False(t, ok)

	// references are not validated
	dangling := e.Apply(s, SetScheduleCell{Day: 3, Slot: 0, SubjectID: "toan", LessonID: "nope"})
	_, ok = dangling.Schedule.Cells[CellKey{Day: 3, Slot: 0}]
	assert.True(t, ok)
	_, ok = LessonForScheduleCell(dangling, 3, 0)
	assert.False(t, ok)
}

func TestEngine_SaveLogbookIsIdempotent(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)
	op := SaveLogbookEntry{Week: 1, Day: 0, Slot: 0, Patch: LogbookPatch{
		Rating:    Ptr(4),
		Notes:     Ptr("Lớp sôi nổi"),
		Absentees: []string{"s4"},
	}}

	once := e.Apply(s, op)
	twice := e.Apply(once, op)

	assert.Equal(t, once.Logbook, twice.Logbook)
	entry, ok := LogbookEntryFor(twice, 1, 0, 0)
	require.True(t, ok)
	assert.Equal(t, LogbookDraft, entry.Status)
	assert.Equal(t, 4, entry.Rating)
	assert.Equal(t, []string{"s4"}, entry.Absentees)
	assert.Empty(t, s.Logbook)
}

func TestEngine_SaveLogbookMergesShallowly(t *testing.T) {
	e := newTestEngine()
	signedAt := testNow.Add(time.Hour)

	s := e.ApplyAll(NewDemoState(testNow),
		SaveLogbookEntry{Week: 1, Day: 1, Slot: 2, Patch: LogbookPatch{Notes: Ptr("Ghi chú"), Rating: Ptr(5)}},
		SaveLogbookEntry{Week: 1, Day: 1, Slot: 2, Patch: LogbookPatch{
			Status:      Ptr(LogbookCompleted),
			Signer:      Ptr("Cô Lan"),
			SubmittedAt: &signedAt,
		}},
	)

	entry, _ := LogbookEntryFor(s, 1, 1, 2)
	assert.Equal(t, LogbookCompleted, entry.Status)
	assert.Equal(t, "Ghi chú", entry.Notes)
	assert.Equal(t, 5, entry.Rating)
	require.NotNil(t, entry.SubmittedAt)
	assert.Equal(t, signedAt, *entry.SubmittedAt)

	// a signed entry can go back to draft
	s = e.Apply(s, SaveLogbookEntry{Week: 1, Day: 1, Slot: 2, Patch: LogbookPatch{Status: Ptr(LogbookDraft)}})
	entry, _ = LogbookEntryFor(s, 1, 1, 2)
	assert.Equal(t, LogbookDraft, entry.Status)
	assert.Equal(t, "Cô Lan", entry.Signer)
}

func TestEngine_SendMessageCreatesThread(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.Apply(s, SendMessage{StudentID: "s3", ParentName: "Lê Văn Tâm", Message: Message{
		ID: "m9", From: SenderParent, Text: "Chào cô", Timestamp: testNow,
	}})

	thread, ok := ChatThreadFor(next, "s3")
	require.True(t, ok)
	assert.Equal(t, "Lê Văn Tâm", thread.ParentName)
	require.Len(t, thread.Messages, 1)
	_, ok = ChatThreadFor(s, "s3")
	assert.False(t, ok)

	next = e.Apply(next, SendMessage{StudentID: "s1", Message: Message{ID: "m10", From: SenderTeacher, Text: "Dạ"}})
	thread, _ = ChatThreadFor(next, "s1")
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "m10", thread.Messages[1].ID)
	assert.Equal(t, "Nguyễn Văn Hùng", thread.ParentName)
}

func TestEngine_AnnouncementsAndToasts(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.ApplyAll(s,
		AddAnnouncement{Announcement: Announcement{ID: "a2", Title: "Họp phụ huynh"}},
		AddToast{Toast: Toast{ID: "t1", Title: "one"}},
		AddToast{Toast: Toast{ID: "t2", Title: "two"}},
		DismissToast{ID: "t1"},
		DismissToast{ID: "missing"},
	)

	require.Len(t, next.Announcements, 2)
	assert.Equal(t, "a2", next.Announcements[0].ID)
	require.Len(t, next.Toasts, 1)
	assert.Equal(t, "t2", next.Toasts[0].ID)
}

func TestEngine_SessionOperations(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	next := e.ApplyAll(s,
		SetRole{Role: RoleParent},
		SetCurrentStudent{StudentID: "s5"},
		SetScheduleWeek{Week: 2},
	)

	assert.Equal(t, RoleParent, next.Role)
	assert.Equal(t, "s5", next.CurrentStudentID)
	assert.Equal(t, 2, next.Schedule.Week)
	assert.Equal(t, RoleTeacher, s.Role)
}

type unregisteredOp struct{}

func (unregisteredOp) Name() OpName { return "bogus" }
func (unregisteredOp) isOperation() {}

func TestEngine_UnknownOperationIsNoop(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	assert.Equal(t, s, e.Apply(s, unregisteredOp{}))
	assert.Equal(t, s, e.Apply(s, nil))
}

func TestEngine_BalancesStayNonNegative(t *testing.T) {
	e := newTestEngine()
	s := NewDemoState(testNow)

	ops := []Operation{
		award("p1", "s4", -45, CategoryChamChi),
		BuyItem{StudentID: "s4", ItemID: "sticker"},
		award("p2", "s4", 25, CategoryKyLuat),
		BuyItem{StudentID: "s4", ItemID: "sticker"},
		BuyItem{StudentID: "s4", ItemID: "sticker"},
		award("p3", "s4", -1000, CategorySangTao),
	}
	for _, op := range ops {
		s = e.Apply(s, op)
		for _, st := range s.Students {
			assert.GreaterOrEqual(t, st.Points.Balance, 0)
			for _, c := range Categories {
				assert.GreaterOrEqual(t, st.Points.Get(c), 0)
			}
		}
	}

	assert.Equal(t, []string{"sticker"}, s.Inventory["s4"])
}
