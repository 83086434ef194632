package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
	"github.com/alem-hub/classroom-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGBOOK
// ══════════════════════════════════════════════════════════════════════════════

// SaveLogbookEntryCommand shallow-merges fields into a logbook entry.
type SaveLogbookEntryCommand struct {
	Week  int `validate:"min=1"`
	Day   int `validate:"min=0"`
	Slot  int `validate:"min=0"`
	Entry classroom.LogbookPatch
}

// SaveLogbookEntry merges the given fields over the stored entry, creating a
// draft entry when the slot has none yet.
func (h *Handler) SaveLogbookEntry(ctx context.Context, cmd SaveLogbookEntryCommand) (*classroom.LogbookEntry, error) {
	entry, err := h.saveLogbook("SaveLogbookEntry", cmd)
	if err != nil {
		return nil, err
	}
	h.notify(ctx, classroom.SeveritySuccess, "Đã lưu sổ đầu bài",
		fmt.Sprintf("Tuần %d · %s", cmd.Week, h.slotLabel(cmd.Day, cmd.Slot)))
	return entry, nil
}

// SignAndSubmitLogbook saves the entry as completed, signed by the configured
// signer at the current time.
func (h *Handler) SignAndSubmitLogbook(ctx context.Context, cmd SaveLogbookEntryCommand) (*classroom.LogbookEntry, error) {
	signedAt := h.now()
	cmd.Entry.Status = classroom.Ptr(classroom.LogbookCompleted)
	cmd.Entry.Signer = classroom.Ptr(h.config.SignerName)
	cmd.Entry.SubmittedAt = &signedAt

	entry, err := h.saveLogbook("SignAndSubmitLogbook", cmd)
	if err != nil {
		return nil, err
	}
	h.notify(ctx, classroom.SeveritySuccess, "Đã ký sổ đầu bài",
		fmt.Sprintf("%s ký lúc %s", h.config.SignerName, timeutil.FormatDateTime(signedAt)))
	return entry, nil
}

func (h *Handler) saveLogbook(op string, cmd SaveLogbookEntryCommand) (*classroom.LogbookEntry, error) {
	if err := h.validateCommand(op, cmd); err != nil {
		return nil, err
	}
	if cmd.Entry.Rating != nil && (*cmd.Entry.Rating < 1 || *cmd.Entry.Rating > 5) {
		return nil, fmt.Errorf("%w: got %d", shared.ErrInvalidRating, *cmd.Entry.Rating)
	}
	if cmd.Entry.Status != nil && !cmd.Entry.Status.IsValid() {
		return nil, fmt.Errorf("%w: logbook status %q", shared.ErrInvalidInput, *cmd.Entry.Status)
	}

	next := h.store.Dispatch(classroom.SaveLogbookEntry{
		Week:  cmd.Week,
		Day:   cmd.Day,
		Slot:  cmd.Slot,
		Patch: cmd.Entry,
	})
	entry, _ := classroom.LogbookEntryFor(next, cmd.Week, cmd.Day, cmd.Slot)

	h.logger.Debug("logbook entry saved",
		"key", classroom.LogbookKey{Week: cmd.Week, Day: cmd.Day, Slot: cmd.Slot}.String(),
		"status", entry.Status,
	)
	return &entry, nil
}

func (h *Handler) slotLabel(day, slot int) string {
	sched := h.store.State().Schedule
	dayLabel := fmt.Sprintf("Ngày %d", day+1)
	if day >= 0 && day < len(sched.Days) {
		dayLabel = sched.Days[day]
	}
	slotLabel := fmt.Sprintf("Tiết %d", slot+1)
	if slot >= 0 && slot < len(sched.Slots) {
		slotLabel = sched.Slots[slot].Label
	}
	return dayLabel + " · " + slotLabel
}
