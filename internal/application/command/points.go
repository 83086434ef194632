package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD POINTS
// ══════════════════════════════════════════════════════════════════════════════

// AwardPointsCommand adds (or, with a negative delta, removes) points.
type AwardPointsCommand struct {
	StudentID string             `validate:"required"`
	Delta     int                `validate:"min=-1000,max=1000"`
	Category  classroom.Category `validate:"required,oneof=chamChi sangTao kyLuat"`
	Reason    string             `validate:"max=200"`
}

// AwardPointsResult contains the logged event and the updated student.
type AwardPointsResult struct {
	Event   classroom.PointEvent
	Student classroom.Student
}

// AwardPoints records a points change. Balance and category never go below 0.
func (h *Handler) AwardPoints(ctx context.Context, cmd AwardPointsCommand) (*AwardPointsResult, error) {
	if err := h.validateCommand("AwardPoints", cmd); err != nil {
		return nil, err
	}
	if _, err := h.requireStudent(h.store.State(), cmd.StudentID); err != nil {
		return nil, err
	}

	op := classroom.AddPoints{
		ID:        h.ids.GenerateID(),
		StudentID: cmd.StudentID,
		Delta:     cmd.Delta,
		Category:  cmd.Category,
		Reason:    cmd.Reason,
		At:        h.now(),
	}
	next := h.store.Dispatch(op)

	st, _ := classroom.StudentByID(next, cmd.StudentID)
	h.logger.Debug("points awarded",
		"student_id", cmd.StudentID,
		"delta", cmd.Delta,
		"category", cmd.Category,
		"balance", st.Points.Balance,
	)

	severity := classroom.SeveritySuccess
	if cmd.Delta < 0 {
		severity = classroom.SeverityDanger
	}
	h.notify(ctx, severity, st.FullName, formatPointsMessage(cmd.Delta, cmd.Category, cmd.Reason))

	return &AwardPointsResult{
		Event: classroom.PointEvent{
			ID:        op.ID,
			StudentID: op.StudentID,
			Delta:     op.Delta,
			Category:  op.Category,
			Reason:    op.Reason,
			Timestamp: op.At,
		},
		Student: st,
	}, nil
}

func formatPointsMessage(delta int, c classroom.Category, reason string) string {
	if reason == "" {
		return fmt.Sprintf("%+d điểm %s", delta, c.Label())
	}
	return fmt.Sprintf("%+d điểm %s: %s", delta, c.Label(), reason)
}
