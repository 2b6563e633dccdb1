package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
	"github.com/dmitrymomot/gridkit/pkg/notify"
	"github.com/dmitrymomot/gridkit/pkg/rules"
)

// CellValidator is the slice of the validation engine the scheduler needs.
type CellValidator interface {
	ValidateCell(ctx context.Context, cell *gridmodel.Cell, row *gridmodel.Row) rules.Result
	Rules(column string) []rules.Rule
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger for scheduler-level faults.
func WithLogger(log *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEvents routes scheduler-level faults to the given hub in addition to
// the log.
func WithEvents(hub *notify.Hub) SchedulerOption {
	return func(s *Scheduler) {
		s.hub = hub
	}
}

type pendingValidation struct {
	cancel context.CancelFunc
}

// Scheduler debounces per-cell validations and bounds their concurrency.
// All methods are safe for concurrent use.
type Scheduler struct {
	cfg       Config
	validator CellValidator
	log       *slog.Logger
	hub       *notify.Hub

	mu      sync.Mutex
	pending map[string]*pendingValidation
	gate    chan struct{}
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewScheduler validates the config and builds a scheduler around the given
// validator.
func NewScheduler(cfg Config, validator CellValidator, opts ...SchedulerOption) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if validator == nil {
		return nil, ErrNilValidator
	}

	s := &Scheduler{
		cfg:       cfg,
		validator: validator,
		log:       slog.Default(),
		pending:   make(map[string]*pendingValidation),
		gate:      make(chan struct{}, cfg.MaxConcurrent),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func cellKey(rowIndex int, column string) string {
	return strconv.Itoa(rowIndex) + ":" + column
}

// Schedule handles a cell-value change. With throttling disabled it
// validates immediately (still through the empty-row short-circuit).
// Otherwise it cancels any pending validation for the same cell, skips
// scheduling entirely when the row went empty, and queues a debounced
// validation gated by the admission gate.
func (s *Scheduler) Schedule(ctx context.Context, cell *gridmodel.Cell, row *gridmodel.Row, kind DelayKind) {
	if cell == nil || row == nil {
		return
	}

	if !s.cfg.Enabled {
		s.validator.ValidateCell(ctx, cell, row)
		row.UpdateValidationStatus()
		return
	}

	key := cellKey(row.Index(), cell.Column())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Supersede: at most one pending validation per cell key.
	if prev, ok := s.pending[key]; ok {
		prev.cancel()
		delete(s.pending, key)
	}
	if row.IsEmpty() {
		s.mu.Unlock()
		cell.ClearError()
		row.UpdateValidationStatus()
		return
	}

	opCtx, cancel := context.WithCancel(ctx)
	p := &pendingValidation{cancel: cancel}
	s.pending[key] = p
	gate := s.gate
	// Register with the WaitGroup while still holding the lock, so a
	// concurrent Close cannot pass wg.Wait before this operation is counted.
	s.wg.Add(1)
	s.mu.Unlock()

	delay := s.delayFor(cell.Column(), kind)

	go s.run(opCtx, key, p, gate, delay, cell, row)
}

func (s *Scheduler) run(ctx context.Context, key string, p *pendingValidation, gate chan struct{}, delay time.Duration, cell *gridmodel.Cell, row *gridmodel.Row) {
	defer s.wg.Done()
	defer s.removePending(key, p)
	defer p.cancel()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	case <-s.done:
		return
	}

	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return
	case <-s.done:
		return
	}
	// Slot release is unconditional once acquired, panic included.
	defer func() { <-gate }()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("throttle: validation panicked: %v", r)
			s.log.Error("scheduled validation failed",
				slog.String("cell", key),
				slog.Any("error", err))
			if s.hub != nil {
				s.hub.Publish(notify.Event{Op: "scheduled_validation", Err: err})
			}
		}
	}()

	s.validator.ValidateCell(ctx, cell, row)
	row.UpdateValidationStatus()
}

// removePending deletes the pending entry only if it is still ours; a newer
// Schedule call may already have replaced it.
func (s *Scheduler) removePending(key string, p *pendingValidation) {
	s.mu.Lock()
	if cur, ok := s.pending[key]; ok && cur == p {
		delete(s.pending, key)
	}
	s.mu.Unlock()
}

// delayFor picks the configured delay for the kind, substituting the
// complex-validation delay when the column carries enough rules to warrant
// it.
func (s *Scheduler) delayFor(column string, kind DelayKind) time.Duration {
	base := s.cfg.delayFor(kind)
	if len(s.validator.Rules(column)) >= complexRuleThreshold && s.cfg.ComplexDelay > base {
		return s.cfg.ComplexDelay
	}
	return base
}

// PendingCount returns how many validations are waiting out their debounce
// window or a gate slot.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// MaxConcurrent returns the current admission bound.
func (s *Scheduler) MaxConcurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cap(s.gate)
}

// SetMaxConcurrent replaces the admission gate with one sized to n. The new
// bound applies to validations admitted from now on; operations already
// holding or waiting on the old gate keep using it, so nothing is stranded
// or double-released while the old gate drains.
func (s *Scheduler) SetMaxConcurrent(n int) error {
	if n < 1 {
		return ErrInvalidConcurrency
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.cfg.MaxConcurrent = n
	s.gate = make(chan struct{}, n)
	return nil
}

// Close cancels every pending validation and waits for in-flight work to
// finish. It is idempotent and always returns nil.
func (s *Scheduler) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for key, p := range s.pending {
			p.cancel()
			delete(s.pending, key)
		}
		s.mu.Unlock()

		close(s.done)
		s.wg.Wait()
	})
	return nil
}
