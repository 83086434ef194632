package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/classroom-hub/internal/application/command"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

// IDGeneratorImpl implements classroom.IDGenerator.
type IDGeneratorImpl struct{}

func NewIDGenerator() *IDGeneratorImpl {
	return &IDGeneratorImpl{}
}

func (g *IDGeneratorImpl) GenerateID() string {
	return uuid.New().String()
}

// ══════════════════════════════════════════════════════════════════════════════
// TOASTS
// ══════════════════════════════════════════════════════════════════════════════

// ToastStore is the part of the state store the toast service needs.
type ToastStore interface {
	State() classroom.State
	Dispatch(ops ...classroom.Operation) classroom.State
}

// ToastPublisher fans toasts out to other consumers.
type ToastPublisher interface {
	PublishToast(ctx context.Context, t classroom.Toast) error
}

// ToastServiceConfig configures a ToastService.
type ToastServiceConfig struct {
	// TTL is how long a toast stays visible. Zero disables expiry.
	TTL time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time

	// AfterFunc defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

// ToastService implements command.Notifier on top of the state store: every
// notification becomes a toast in the tree and is dismissed after the TTL.
type ToastService struct {
	store     ToastStore
	ids       classroom.IDGenerator
	publisher ToastPublisher
	config    ToastServiceConfig
	logger    *slog.Logger
}

var _ command.Notifier = (*ToastService)(nil)

// NewToastService creates a ToastService. publisher may be nil.
func NewToastService(store ToastStore, ids classroom.IDGenerator, publisher ToastPublisher, config ToastServiceConfig, logger *slog.Logger) *ToastService {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.AfterFunc == nil {
		config.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ToastService{
		store:     store,
		ids:       ids,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Notify implements command.Notifier.
func (s *ToastService) Notify(ctx context.Context, n command.Notification) {
	toast := classroom.Toast{
		ID:        s.ids.GenerateID(),
		Title:     n.Title,
		Message:   n.Message,
		Severity:  n.Severity,
		CreatedAt: s.config.Clock().UTC(),
	}
	s.store.Dispatch(classroom.AddToast{Toast: toast})

	if s.config.TTL > 0 {
		s.config.AfterFunc(s.config.TTL, func() {
			s.store.Dispatch(classroom.DismissToast{ID: toast.ID})
		})
	}

	if s.publisher != nil {
		if err := s.publisher.PublishToast(ctx, toast); err != nil {
			s.logger.Warn("failed to publish toast", "toast_id", toast.ID, "error", err)
		}
	}
}

// Sweep dismisses toasts whose TTL has passed but that are still in the tree,
// e.g. because their timer was lost. It returns the number dismissed.
func (s *ToastService) Sweep(ctx context.Context) int {
	if s.config.TTL <= 0 {
		return 0
	}
	cutoff := s.config.Clock().Add(-s.config.TTL)

	var ops []classroom.Operation
	for _, t := range s.store.State().Toasts {
		if !t.CreatedAt.After(cutoff) {
			ops = append(ops, classroom.DismissToast{ID: t.ID})
		}
	}
	if len(ops) == 0 {
		return 0
	}
	s.store.Dispatch(ops...)
	s.logger.Debug("stale toasts swept", "count", len(ops))
	return len(ops)
}
