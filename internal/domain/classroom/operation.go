package classroom

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alem-hub/classroom-hub/internal/domain/shared"
)

// OpName is the wire name of a transition.
type OpName string

// Names of every transition understood by the engine.
const (
	OpSetRole             OpName = "role.set"
	OpSetCurrentStudent   OpName = "student.select"
	OpMoveSeat            OpName = "seat.move"
	OpSetAttendanceStatus OpName = "attendance.set"
	OpAddPoints           OpName = "points.add"
	OpBuyItem             OpName = "store.buy"
	OpUpsertLesson        OpName = "syllabus.lesson.upsert"
	OpDeleteLesson        OpName = "syllabus.lesson.delete"
	OpSetScheduleCell     OpName = "schedule.cell.set"
	OpSetScheduleWeek     OpName = "schedule.week.set"
	OpSaveLogbookEntry    OpName = "logbook.save"
	OpAddAnnouncement     OpName = "announcement.add"
	OpSendMessage         OpName = "chat.send"
	OpAddToast            OpName = "toast.add"
	OpDismissToast        OpName = "toast.dismiss"
)

// Operation is a named transition with a typed payload. The set is closed:
// only the types declared in this package implement it.
type Operation interface {
	Name() OpName
	isOperation()
}

// SetRole replaces the active role.
type SetRole struct {
	Role Role `json:"role"`
}

// SetCurrentStudent replaces the active-student pointer. Existence is not checked.
type SetCurrentStudent struct {
	StudentID string `json:"student_id"`
}

// MoveSeat overwrites a student's seat. Bounds and occupancy are not checked.
type MoveSeat struct {
	StudentID string `json:"student_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// SetAttendanceStatus records one attendance event.
type SetAttendanceStatus struct {
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
}

// AddPoints adjusts a student's balance and category and logs the event.
// ID and At are supplied by the caller so the transition stays deterministic.
type AddPoints struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Delta     int       `json:"delta"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// BuyItem spends balance on a store item.
type BuyItem struct {
	StudentID string `json:"student_id"`
	ItemID    string `json:"item_id"`
}

// UpsertLesson merges into an existing lesson or appends a new one.
type UpsertLesson struct {
	Week      int         `json:"week"`
	SubjectID string      `json:"subject_id"`
	Lesson    LessonPatch `json:"lesson"`
}

// DeleteLesson removes a lesson. Schedule cells pointing at it are left dangling.
type DeleteLesson struct {
	Week      int    `json:"week"`
	SubjectID string `json:"subject_id"`
	LessonID  string `json:"lesson_id"`
}

// SetScheduleCell sets a schedule cell, or clears it when either id is empty.
type SetScheduleCell struct {
	Day       int    `json:"day"`
	Slot      int    `json:"slot"`
	SubjectID string `json:"subject_id"`
	LessonID  string `json:"lesson_id"`
}

// SetScheduleWeek changes the week the schedule is showing.
type SetScheduleWeek struct {
	Week int `json:"week"`
}

// SaveLogbookEntry shallow-merges a patch into the entry at the key.
type SaveLogbookEntry struct {
	Week  int          `json:"week"`
	Day   int          `json:"day"`
	Slot  int          `json:"slot"`
	Patch LogbookPatch `json:"entry"`
}

// AddAnnouncement prepends an announcement.
type AddAnnouncement struct {
	Announcement Announcement `json:"announcement"`
}

// SendMessage appends a message to a student's chat thread, creating the
// thread when it does not exist yet.
type SendMessage struct {
	StudentID  string  `json:"student_id"`
	ParentName string  `json:"parent_name"`
	Message    Message `json:"message"`
}

// AddToast appends a toast.
type AddToast struct {
	Toast Toast `json:"toast"`
}

// DismissToast removes a toast by id.
type DismissToast struct {
	ID string `json:"id"`
}

func (SetRole) Name() OpName             { return OpSetRole }
func (SetCurrentStudent) Name() OpName   { return OpSetCurrentStudent }
func (MoveSeat) Name() OpName            { return OpMoveSeat }
func (SetAttendanceStatus) Name() OpName { return OpSetAttendanceStatus }
func (AddPoints) Name() OpName           { return OpAddPoints }
func (BuyItem) Name() OpName             { return OpBuyItem }
func (UpsertLesson) Name() OpName        { return OpUpsertLesson }
func (DeleteLesson) Name() OpName        { return OpDeleteLesson }
func (SetScheduleCell) Name() OpName     { return OpSetScheduleCell }
func (SetScheduleWeek) Name() OpName     { return OpSetScheduleWeek }
func (SaveLogbookEntry) Name() OpName    { return OpSaveLogbookEntry }
func (AddAnnouncement) Name() OpName     { return OpAddAnnouncement }
func (SendMessage) Name() OpName         { return OpSendMessage }
func (AddToast) Name() OpName            { return OpAddToast }
func (DismissToast) Name() OpName        { return OpDismissToast }

func (SetRole) isOperation()             {}
func (SetCurrentStudent) isOperation()   {}
func (MoveSeat) isOperation()            {}
func (SetAttendanceStatus) isOperation() {}
func (AddPoints) isOperation()           {}
func (BuyItem) isOperation()             {}
func (UpsertLesson) isOperation()        {}
func (DeleteLesson) isOperation()        {}
func (SetScheduleCell) isOperation()     {}
func (SetScheduleWeek) isOperation()     {}
func (SaveLogbookEntry) isOperation()    {}
func (AddAnnouncement) isOperation()     {}
func (SendMessage) isOperation()         {}
func (AddToast) isOperation()            {}
func (DismissToast) isOperation()        {}

var operationFactories = map[OpName]func() Operation{
	OpSetRole:             func() Operation { return &SetRole{} },
	OpSetCurrentStudent:   func() Operation { return &SetCurrentStudent{} },
	OpMoveSeat:            func() Operation { return &MoveSeat{} },
	OpSetAttendanceStatus: func() Operation { return &SetAttendanceStatus{} },
	OpAddPoints:           func() Operation { return &AddPoints{} },
	OpBuyItem:             func() Operation { return &BuyItem{} },
	OpUpsertLesson:        func() Operation { return &UpsertLesson{} },
	OpDeleteLesson:        func() Operation { return &DeleteLesson{} },
	OpSetScheduleCell:     func() Operation { return &SetScheduleCell{} },
	OpSetScheduleWeek:     func() Operation { return &SetScheduleWeek{} },
	OpSaveLogbookEntry:    func() Operation { return &SaveLogbookEntry{} },
	OpAddAnnouncement:     func() Operation { return &AddAnnouncement{} },
	OpSendMessage:         func() Operation { return &SendMessage{} },
	OpAddToast:            func() Operation { return &AddToast{} },
	OpDismissToast:        func() Operation { return &DismissToast{} },
}

// DecodeOperation builds an operation from its wire name and JSON payload.
// Unknown names return an error wrapping shared.ErrUnknownOperation.
func DecodeOperation(name OpName, payload []byte) (Operation, error) {
	factory, ok := operationFactories[name]
	if !ok {
		return nil, shared.WrapError("engine", "Decode", shared.ErrUnknownOperation,
			fmt.Sprintf("operation %q is not registered", name), nil)
	}
	op := factory()
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, op); err != nil {
			return nil, shared.WrapError("engine", "Decode", shared.ErrInvalidInput,
				fmt.Sprintf("payload of %q", name), err)
		}
	}
	return deref(op), nil
}

// deref turns the pointer produced by a factory back into the value type the
// engine switches on.
func deref(op Operation) Operation {
	switch o := op.(type) {
	case *SetRole:
		return *o
	case *SetCurrentStudent:
		return *o
	case *MoveSeat:
		return *o
	case *SetAttendanceStatus:
		return *o
	case *AddPoints:
		return *o
	case *BuyItem:
		return *o
	case *UpsertLesson:
		return *o
	case *DeleteLesson:
		return *o
	case *SetScheduleCell:
		return *o
	case *SetScheduleWeek:
		return *o
	case *SaveLogbookEntry:
		return *o
	case *AddAnnouncement:
		return *o
	case *SendMessage:
		return *o
	case *AddToast:
		return *o
	case *DismissToast:
		return *o
	default:
		return op
	}
}
