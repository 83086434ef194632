package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceCommand records one attendance call for a student.
type RecordAttendanceCommand struct {
	StudentID string                     `validate:"required"`
	Status    classroom.AttendanceStatus `validate:"required,oneof=present absent"`
}

// RecordAttendance increments exactly one counter per call. Calling it twice
// counts twice: each call is an attendance event, not a correction.
func (h *Handler) RecordAttendance(ctx context.Context, cmd RecordAttendanceCommand) (*classroom.Student, error) {
	if err := h.validateCommand("RecordAttendance", cmd); err != nil {
		return nil, err
	}
	if _, err := h.requireStudent(h.store.State(), cmd.StudentID); err != nil {
		return nil, err
	}

	next := h.store.Dispatch(classroom.SetAttendanceStatus{StudentID: cmd.StudentID, Status: cmd.Status})
	st, _ := classroom.StudentByID(next, cmd.StudentID)

	severity := classroom.SeveritySuccess
	if cmd.Status == classroom.AttendanceAbsent {
		severity = classroom.SeverityWarning
	}
	h.notify(ctx, severity, "Điểm danh", fmt.Sprintf("%s: %s", st.FullName, cmd.Status.Label()))

	return &st, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEATING
// ══════════════════════════════════════════════════════════════════════════════

// MoveSeatCommand moves a student to a seat.
type MoveSeatCommand struct {
	StudentID string `validate:"required"`
	X         int    `validate:"min=0"`
	Y         int    `validate:"min=0"`
}

// MoveSeat places a student on a seat inside the grid. An occupied target is
// not rejected: the last writer wins and both students map to the cell.
func (h *Handler) MoveSeat(ctx context.Context, cmd MoveSeatCommand) error {
	if err := h.validateCommand("MoveSeat", cmd); err != nil {
		return err
	}
	state := h.store.State()
	st, err := h.requireStudent(state, cmd.StudentID)
	if err != nil {
		return err
	}
	if !state.Seating.Contains(classroom.Position{X: cmd.X, Y: cmd.Y}) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", shared.ErrSeatOutOfBounds,
			cmd.X, cmd.Y, state.Seating.Columns, state.Seating.Rows)
	}

	h.store.Dispatch(classroom.MoveSeat{StudentID: cmd.StudentID, X: cmd.X, Y: cmd.Y})
	h.notify(ctx, classroom.SeverityInfo, "Đổi chỗ ngồi",
		fmt.Sprintf("%s → dãy %d, bàn %d", st.FullName, cmd.X+1, cmd.Y+1))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARDS STORE
// ══════════════════════════════════════════════════════════════════════════════

// PurchaseItemCommand buys a store item for a student.
type PurchaseItemCommand struct {
	StudentID string `validate:"required"`
	ItemID    string `validate:"required"`
}

// PurchaseResult contains the bought item and the updated student.
type PurchaseResult struct {
	Item      classroom.StoreItem
	Student   classroom.Student
	Inventory []string
}

// PurchaseItem is the enforcement point of the purchase preconditions: a
// failed check emits a failure notification and dispatches nothing.
func (h *Handler) PurchaseItem(ctx context.Context, cmd PurchaseItemCommand) (*PurchaseResult, error) {
	if err := h.validateCommand("PurchaseItem", cmd); err != nil {
		return nil, err
	}
	var item classroom.StoreItem
	next, err := h.store.Update(func(state classroom.State) ([]classroom.Operation, error) {
		var ok bool
		item, ok = classroom.StoreItemByID(state, cmd.ItemID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, cmd.ItemID)
		}
		st, err := h.requireStudent(state, cmd.StudentID)
		if err != nil {
			return nil, err
		}
		if st.Points.Balance < item.Cost {
			return nil, &balanceShortfall{item: item, student: st}
		}
		return []classroom.Operation{classroom.BuyItem{StudentID: cmd.StudentID, ItemID: cmd.ItemID}}, nil
	})
	if err != nil {
		h.notifyPurchaseFailure(ctx, err)
		var short *balanceShortfall
		if errors.As(err, &short) {
			return nil, fmt.Errorf("%w: need %d, have %d", shared.ErrNotEnoughPoints, short.item.Cost, short.student.Points.Balance)
		}
		return nil, err
	}

	updated, _ := classroom.StudentByID(next, cmd.StudentID)

	h.logger.Info("store item purchased",
		"student_id", cmd.StudentID,
		"item_id", item.ID,
		"cost", item.Cost,
		"balance", updated.Points.Balance,
	)
	h.notify(ctx, classroom.SeveritySuccess, "Đổi quà thành công",
		fmt.Sprintf("%s %s (-%d điểm)", item.Icon, item.Name, item.Cost))

	return &PurchaseResult{
		Item:      item,
		Student:   updated,
		Inventory: append([]string(nil), next.Inventory[cmd.StudentID]...),
	}, nil
}

// balanceShortfall carries the failed balance check out of the store lock.
type balanceShortfall struct {
	item    classroom.StoreItem
	student classroom.Student
}

func (e *balanceShortfall) Error() string {
	return fmt.Sprintf("need %d, have %d", e.item.Cost, e.student.Points.Balance)
}

// notifyPurchaseFailure runs after the store lock is released; notifiers
// dispatch toasts.
func (h *Handler) notifyPurchaseFailure(ctx context.Context, err error) {
	var short *balanceShortfall
	switch {
	case errors.As(err, &short):
		h.notify(ctx, classroom.SeverityDanger, "Không đủ điểm",
			fmt.Sprintf("%s cần %d điểm, %s hiện có %d điểm",
				short.item.Name, short.item.Cost, short.student.FullName, short.student.Points.Balance))
	case errors.Is(err, shared.ErrItemNotFound):
		h.notify(ctx, classroom.SeverityDanger, "Không thể đổi quà", "Món quà không tồn tại")
	default:
		h.notify(ctx, classroom.SeverityDanger, "Không thể đổi quà", "Không tìm thấy học sinh")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// SwitchRole changes the active view.
func (h *Handler) SwitchRole(ctx context.Context, role classroom.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: role %q", shared.ErrInvalidInput, role)
	}
	h.store.Dispatch(classroom.SetRole{Role: role})
	return nil
}

// SelectStudent focuses the views on a student. Unlike the raw transition,
// the student must exist.
func (h *Handler) SelectStudent(ctx context.Context, studentID string) error {
	if _, err := h.requireStudent(h.store.State(), studentID); err != nil {
		return err
	}
	h.store.Dispatch(classroom.SetCurrentStudent{StudentID: studentID})
	return nil
}

// DismissToast removes a toast before it expires.
func (h *Handler) DismissToast(ctx context.Context, id string) {
	h.store.Dispatch(classroom.DismissToast{ID: id})
}
