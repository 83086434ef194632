// Package classroom contains the domain model of the classroom hub: one state
// tree shared by the teacher, student and parent views, the transition engine
// that is the only place computing the next state, and the read-only selectors.
// Name ordering uses golang.org/x/text; everything else is standard library.
package classroom

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role is the active view of the application.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// IsValid reports whether the role is one of the known views.
func (r Role) IsValid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

// Category is a points category. The set is closed: the balance is tracked
// separately and every category has its own running total.
type Category string

const (
	// CategoryChamChi rewards diligence.
	CategoryChamChi Category = "chamChi"
	// CategorySangTao rewards creativity.
	CategorySangTao Category = "sangTao"
	// CategoryKyLuat rewards discipline.
	CategoryKyLuat Category = "kyLuat"
)

// Categories lists all categories in display order.
var Categories = []Category{CategoryChamChi, CategorySangTao, CategoryKyLuat}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryChamChi, CategorySangTao, CategoryKyLuat:
		return true
	default:
		return false
	}
}

// Label returns the Vietnamese label shown to users.
func (c Category) Label() string {
	switch c {
	case CategoryChamChi:
		return "Chăm chỉ"
	case CategorySangTao:
		return "Sáng tạo"
	case CategoryKyLuat:
		return "Kỷ luật"
	default:
		return string(c)
	}
}

// ParseCategory converts a wire value into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	return c, c.IsValid()
}

// AttendanceStatus is the outcome of a single attendance call.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// IsValid reports whether the status is known.
func (s AttendanceStatus) IsValid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// Label returns the Vietnamese label shown to users.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Có mặt"
	case AttendanceAbsent:
		return "Vắng"
	default:
		return string(s)
	}
}

// LogbookStatus is the lifecycle of a logbook entry.
type LogbookStatus string

const (
	LogbookDraft     LogbookStatus = "draft"
	LogbookCompleted LogbookStatus = "completed"
)

// IsValid reports whether the status is known.
func (s LogbookStatus) IsValid() bool {
	return s == LogbookDraft || s == LogbookCompleted
}

// Sender identifies the author side of a chat message.
type Sender string

const (
	SenderParent  Sender = "parent"
	SenderTeacher Sender = "teacher"
)

// IsValid reports whether the sender is known.
func (s Sender) IsValid() bool {
	return s == SenderParent || s == SenderTeacher
}

// Severity is the tone of a toast notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// Points is a student's points record. Balance is the spendable total; the
// category values are independent running totals. No field is ever negative.
type Points struct {
	Balance int `json:"balance"`
	ChamChi int `json:"cham_chi"`
	SangTao int `json:"sang_tao"`
	KyLuat  int `json:"ky_luat"`
}

// Get returns the value of a category.
func (p Points) Get(c Category) int {
	switch c {
	case CategoryChamChi:
		return p.ChamChi
	case CategorySangTao:
		return p.SangTao
	case CategoryKyLuat:
		return p.KyLuat
	default:
		return 0
	}
}

// With returns a copy of p with the category set to v. Unknown categories
// leave p unchanged.
func (p Points) With(c Category, v int) Points {
	switch c {
	case CategoryChamChi:
		p.ChamChi = v
	case CategorySangTao:
		p.SangTao = v
	case CategoryKyLuat:
		p.KyLuat = v
	}
	return p
}

// Attendance is a student's attendance record.
type Attendance struct {
	PresentDays int              `json:"present_days"`
	AbsentDays  int              `json:"absent_days"`
	LastStatus  AttendanceStatus `json:"last_status"`
}

// ParentContact holds the contact details of a student's parent.
type ParentContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// GradeRecord is one historical grade.
type GradeRecord struct {
	Subject string  `json:"subject"`
	Term    string  `json:"term"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// Student is a member of the class.
type Student struct {
	ID          string        `json:"id"`
	FullName    string        `json:"full_name"`
	Nickname    string        `json:"nickname"`
	Avatar      string        `json:"avatar"`
	Parent      ParentContact `json:"parent"`
	HealthNotes []string      `json:"health_notes"`
	Points      Points        `json:"points"`
	Attendance  Attendance    `json:"attendance"`
	Grades      []GradeRecord `json:"grades"`
}

// PointEvent is an entry of the append-only points log.
type PointEvent struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Delta     int       `json:"delta"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SEATING
// ══════════════════════════════════════════════════════════════════════════════

// Position is a 0-indexed seat coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Seating is the classroom grid and the seat of every placed student.
type Seating struct {
	Columns   int                 `json:"columns"`
	Rows      int                 `json:"rows"`
	Positions map[string]Position `json:"positions"`
}

// Contains reports whether p lies inside the grid.
func (s Seating) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Columns && p.Y < s.Rows
}

// ══════════════════════════════════════════════════════════════════════════════
// SYLLABUS & SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// Lesson is a single syllabus lesson.
type Lesson struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Objective string `json:"objective"`
	Content   string `json:"content"`
}

// Subject groups the lessons of one subject inside a week.
type Subject struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Lessons []Lesson `json:"lessons"`
}

// Week is one syllabus week.
type Week struct {
	Number   int       `json:"number"`
	Subjects []Subject `json:"subjects"`
}

// Syllabus is the ordered list of weeks.
type Syllabus struct {
	Weeks []Week `json:"weeks"`
}

// LessonRef points at a syllabus lesson. It may dangle.
type LessonRef struct {
	SubjectID string `json:"subject_id"`
	LessonID  string `json:"lesson_id"`
}

// Slot describes one period of the school day.
type Slot struct {
	Label string `json:"label"`
	Time  string `json:"time"`
}

// CellKey addresses one schedule cell. It renders as "<day>_<slot>".
type CellKey struct {
	Day  int
	Slot int
}

// String implements fmt.Stringer.
func (k CellKey) String() string {
	return fmt.Sprintf("%d_%d", k.Day, k.Slot)
}

// MarshalText implements encoding.TextMarshaler so the key works as a JSON map key.
func (k CellKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CellKey) UnmarshalText(text []byte) error {
	parts, err := splitInts(string(text), 2)
	if err != nil {
		return fmt.Errorf("cell key %q: %w", text, err)
	}
	k.Day, k.Slot = parts[0], parts[1]
	return nil
}

// Schedule is the weekly timetable. Cells reference syllabus lessons without
// referential integrity: a dangling reference simply resolves to nothing.
type Schedule struct {
	Week  int                   `json:"week"`
	Days  []string              `json:"days"`
	Slots []Slot                `json:"slots"`
	Cells map[CellKey]LessonRef `json:"cells"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGBOOK
// ══════════════════════════════════════════════════════════════════════════════

// LogbookKey addresses one logbook entry. It renders as "<week>_<day>_<slot>".
type LogbookKey struct {
	Week int
	Day  int
	Slot int
}

// String implements fmt.Stringer.
func (k LogbookKey) String() string {
	return fmt.Sprintf("%d_%d_%d", k.Week, k.Day, k.Slot)
}

// MarshalText implements encoding.TextMarshaler.
func (k LogbookKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LogbookKey) UnmarshalText(text []byte) error {
	parts, err := splitInts(string(text), 3)
	if err != nil {
		return fmt.Errorf("logbook key %q: %w", text, err)
	}
	k.Week, k.Day, k.Slot = parts[0], parts[1], parts[2]
	return nil
}

// LogbookEntry is the teacher's record of one taught slot.
type LogbookEntry struct {
	Status      LogbookStatus `json:"status"`
	Rating      int           `json:"rating,omitempty"`
	Absentees   []string      `json:"absentees"`
	Notes       string        `json:"notes"`
	Signer      string        `json:"signer,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMUNICATION
// ══════════════════════════════════════════════════════════════════════════════

// Announcement is a class-wide post. Immutable once created.
type Announcement struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single chat message.
type Message struct {
	ID        string    `json:"id"`
	From      Sender    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"ts"`
}

// ChatThread is the parent/teacher conversation about one student.
type ChatThread struct {
	StudentID  string    `json:"student_id"`
	ParentName string    `json:"parent_name"`
	Messages   []Message `json:"messages"`
}

// Toast is an ephemeral notification. Expiry is scheduled outside the engine.
type Toast struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// StoreItem is an entry of the static rewards catalog.
type StoreItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cost        int    `json:"cost"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE TREE
// ══════════════════════════════════════════════════════════════════════════════

// State is the single authoritative state tree. Values are treated as
// immutable: the engine replaces subtrees instead of writing into them, so a
// State may be shared freely between readers.
type State struct {
	Role             Role                        `json:"role"`
	CurrentStudentID string                      `json:"current_student_id"`
	Students         []Student                   `json:"students"`
	PointLog         []PointEvent                `json:"point_log"`
	Seating          Seating                     `json:"seating"`
	Syllabus         Syllabus                    `json:"syllabus"`
	Schedule         Schedule                    `json:"schedule"`
	Logbook          map[LogbookKey]LogbookEntry `json:"logbook"`
	Announcements    []Announcement              `json:"announcements"`
	Chats            map[string]ChatThread       `json:"chats"`
	Store            []StoreItem                 `json:"store"`
	Inventory        map[string][]string         `json:"inventory"`
	Toasts           []Toast                     `json:"toasts"`
}

// IDGenerator produces unique opaque identifiers for new entities.
type IDGenerator interface {
	GenerateID() string
}

func splitInts(s string, n int) ([]int, error) {
	fields := strings.Split(s, "_")
	if len(fields) != n {
		return nil, fmt.Errorf("want %d parts, got %d", n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
