// Package command contains the action layer (write side): validated entry
// points that check preconditions against the current state, dispatch one or
// more transitions and emit user-facing notifications.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
	"github.com/alem-hub/classroom-hub/internal/domain/slide"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// StateStore is the explicit state container the actions read and write.
type StateStore interface {
	State() classroom.State
	Dispatch(ops ...classroom.Operation) classroom.State
	Update(decide func(classroom.State) ([]classroom.Operation, error)) (classroom.State, error)
}

// Notification is a toast request sent to the presentation side channel.
type Notification struct {
	Title    string
	Message  string
	Severity classroom.Severity
}

// Notifier accepts notifications. Expiry is the notifier's business.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// HandlerConfig contains configuration for the handler.
type HandlerConfig struct {
	// SignerName is stamped on logbook entries signed through SignAndSubmitLogbook.
	SignerName string

	// AutoReplyDelay is how long a parent waits for the scripted teacher reply.
	AutoReplyDelay time.Duration

	// AutoReplyText is the scripted teacher reply.
	AutoReplyText string

	// DisableAutoReply turns the scripted reply off.
	DisableAutoReply bool

	// Clock returns the current time (defaults to time.Now).
	Clock func() time.Time

	// AfterFunc schedules deferred work (defaults to time.AfterFunc).
	AfterFunc func(d time.Duration, f func())
}

// DefaultHandlerConfig returns default configuration.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		SignerName:     "Cô Lan",
		AutoReplyDelay: 1500 * time.Millisecond,
		AutoReplyText:  "Cảm ơn anh/chị đã nhắn. Cô sẽ phản hồi chi tiết sau giờ học nhé!",
		Clock:          time.Now,
		AfterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Handler implements every classroom action.
type Handler struct {
	store    StateStore
	ids      classroom.IDGenerator
	notifier Notifier
	slides   slide.Generator
	validate *validator.Validate
	logger   *slog.Logger
	config   HandlerConfig
}

// NewHandler creates a new Handler. A nil notifier discards notifications and
// a nil slide generator makes slide requests fail.
func NewHandler(
	store StateStore,
	ids classroom.IDGenerator,
	notifier Notifier,
	slides slide.Generator,
	logger *slog.Logger,
	config HandlerConfig,
) *Handler {
	defaults := DefaultHandlerConfig()
	if config.SignerName == "" {
		config.SignerName = defaults.SignerName
	}
	if config.AutoReplyText == "" {
		config.AutoReplyText = defaults.AutoReplyText
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.AfterFunc == nil {
		config.AfterFunc = defaults.AfterFunc
	}
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Notification) {})
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		store:    store,
		ids:      ids,
		notifier: notifier,
		slides:   slides,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		config:   config,
	}
}

// State returns the latest state, for callers that only hold the handler.
func (h *Handler) State() classroom.State {
	return h.store.State()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (h *Handler) now() time.Time {
	return h.config.Clock().UTC()
}

func (h *Handler) notify(ctx context.Context, severity classroom.Severity, title, message string) {
	h.notifier.Notify(ctx, Notification{Title: title, Message: message, Severity: severity})
}

// validateCommand runs struct-tag validation and maps failures onto the
// shared error taxonomy.
func (h *Handler) validateCommand(op string, cmd any) error {
	err := h.validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return shared.WrapError("command", op, shared.ErrInvalidInput,
			"validation failed: "+strings.Join(fields, ", "), nil)
	}
	return shared.WrapError("command", op, shared.ErrInvalidInput, "validation failed", err)
}

func (h *Handler) requireStudent(state classroom.State, id string) (classroom.Student, error) {
	st, ok := classroom.StudentByID(state, id)
	if !ok {
		return classroom.Student{}, fmt.Errorf("%w: %s", shared.ErrStudentNotFound, id)
	}
	return st, nil
}
