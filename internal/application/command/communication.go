package command

import (
	"context"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANNOUNCEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// PostAnnouncementCommand publishes a class announcement.
type PostAnnouncementCommand struct {
	Author  string `validate:"required,max=100"`
	Title   string `validate:"required,max=200"`
	Content string `validate:"required"`
}

// PostAnnouncement prepends a new announcement.
func (h *Handler) PostAnnouncement(ctx context.Context, cmd PostAnnouncementCommand) (*classroom.Announcement, error) {
	if err := h.validateCommand("PostAnnouncement", cmd); err != nil {
		return nil, err
	}

	a := classroom.Announcement{
		ID:        h.ids.GenerateID(),
		Author:    cmd.Author,
		Title:     cmd.Title,
		Content:   cmd.Content,
		CreatedAt: h.now(),
	}
	h.store.Dispatch(classroom.AddAnnouncement{Announcement: a})
	h.notify(ctx, classroom.SeveritySuccess, "Đã đăng thông báo", a.Title)

	return &a, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageCommand sends a chat message in a student's thread.
type SendMessageCommand struct {
	StudentID string           `validate:"required"`
	From      classroom.Sender `validate:"required,oneof=parent teacher"`
	Text      string           `validate:"required,max=2000"`
}

// SendMessage appends a message. A parent message schedules the scripted
// teacher reply after the configured delay; the reply is applied against the
// state current at that time.
func (h *Handler) SendMessage(ctx context.Context, cmd SendMessageCommand) (*classroom.Message, error) {
	if err := h.validateCommand("SendMessage", cmd); err != nil {
		return nil, err
	}
	st, err := h.requireStudent(h.store.State(), cmd.StudentID)
	if err != nil {
		return nil, err
	}

	msg := classroom.Message{
		ID:        h.ids.GenerateID(),
		From:      cmd.From,
		Text:      cmd.Text,
		Timestamp: h.now(),
	}
	h.store.Dispatch(classroom.SendMessage{StudentID: st.ID, ParentName: st.Parent.Name, Message: msg})

	if cmd.From == classroom.SenderParent && !h.config.DisableAutoReply {
		h.config.AfterFunc(h.config.AutoReplyDelay, func() {
			h.store.Dispatch(classroom.SendMessage{
				StudentID:  st.ID,
				ParentName: st.Parent.Name,
				Message: classroom.Message{
					ID:        h.ids.GenerateID(),
					From:      classroom.SenderTeacher,
					Text:      h.config.AutoReplyText,
					Timestamp: h.now(),
				},
			})
			h.logger.Debug("scripted teacher reply sent", "student_id", st.ID)
		})
	}

	return &msg, nil
}
