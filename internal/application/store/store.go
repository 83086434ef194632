// Package store owns the classroom state tree. It is the only writer: every
// mutation is a batch of operations applied through the transition engine and
// swapped in as a whole new tree.
package store

import (
	"log/slog"
	"sync"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

// Change describes one applied batch.
type Change struct {
	Version uint64
	Ops     []classroom.Operation
	Prev    classroom.State
	Next    classroom.State
}

// Listener is notified after every dispatch.
type Listener func(Change)

// Store is an explicit state container.
type Store struct {
	mu      sync.RWMutex
	engine  *classroom.Engine
	state   classroom.State
	version uint64

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	logger *slog.Logger
}

// New creates a Store holding initial.
func New(engine *classroom.Engine, initial classroom.State, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		engine:    engine,
		state:     initial,
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// State returns the current state tree. The value must be treated as read-only.
func (s *Store) State() classroom.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version returns the number of batches applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dispatch applies ops atomically and returns the resulting state. Observers
// never see a state in which only part of the batch is applied.
func (s *Store) Dispatch(ops ...classroom.Operation) classroom.State {
	if len(ops) == 0 {
		return s.State()
	}

	s.mu.Lock()
	prev := s.state
	next := s.engine.ApplyAll(prev, ops...)
	s.state = next
	s.version++
	change := Change{Version: s.version, Ops: ops, Prev: prev, Next: next}
	s.mu.Unlock()

	s.logger.Debug("store: dispatched", "version", change.Version, "ops", opNames(ops))
	s.notify(change)

	return next
}

// Update runs decide against the current state and applies the operations it
// returns, all under the write lock, so no other dispatch can land between
// the check and the write. An error or an empty batch leaves the state and
// version untouched; the error is returned as is.
func (s *Store) Update(decide func(classroom.State) ([]classroom.Operation, error)) (classroom.State, error) {
	s.mu.Lock()
	prev := s.state
	ops, err := decide(prev)
	if err != nil || len(ops) == 0 {
		s.mu.Unlock()
		return prev, err
	}
	next := s.engine.ApplyAll(prev, ops...)
	s.state = next
	s.version++
	change := Change{Version: s.version, Ops: ops, Prev: prev, Next: next}
	s.mu.Unlock()

	s.logger.Debug("store: updated", "version", change.Version, "ops", opNames(ops))
	s.notify(change)

	return next, nil
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(c Change) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		s.safeCall(l, c)
	}
}

func (s *Store) safeCall(l Listener, c Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("store: listener panicked", "version", c.Version, "panic", r)
		}
	}()
	l(c)
}

func opNames(ops []classroom.Operation) []string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		if op == nil {
			names = append(names, "<nil>")
			continue
		}
		names = append(names, string(op.Name()))
	}
	return names
}
