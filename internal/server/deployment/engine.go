// Package deployment drives catalog entries through their rollout:
// pending → deploying → completed, failed or cancelled.
//
// Every deploying entry is owned by one goroutine that holds both its ticker
// and its failure timer, so ticks are serial. All status writes go through
// firmware.Repository.Transition, and a writer that finds the entry no longer
// deploying backs off; cancel, failure and completion are therefore mutually
// exclusive and only the winner produces side effects.
//
// Printers are read when a rollout starts and written only when it
// completes; cancel and failure leave the registry as it is.
package deployment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/firmware"
	"github.com/dmitrijs2005/printfleet/internal/timex"
)

const (
	DefaultTickInterval      = 2 * time.Second
	DefaultFailureCheckDelay = 10 * time.Second
)

const (
	FailureMessage = "Connection timeout during deployment"
	CancelNote     = "deployment cancelled"
	FailureNote    = "deployment failed"
	SuccessNote    = "deployment completed"
)

var errNotDeploying = errors.New("entry is no longer deploying")

// Registry is the part of the printer registry the engine uses.
type Registry interface {
	Snapshot(ctx context.Context, ids []string) []*models.Printer
	ApplyFirmware(ctx context.Context, ids []string, version string) []*models.Printer
}

// Recorder appends outcomes to the update history.
type Recorder interface {
	Append(ctx context.Context, in models.HistoryEntry, initiator string) (*models.HistoryEntry, error)
}

type Options struct {
	TickInterval       time.Duration
	FailureCheckDelay  time.Duration
	FailureProbability float64
}

// timers are the two clocks of one rollout.
type timers struct {
	tick    <-chan time.Time
	failure <-chan time.Time
	stop    func()
}

func realTimers(o Options) timers {
	ticker := time.NewTicker(o.TickInterval)
	failure := time.NewTimer(o.FailureCheckDelay)
	return timers{
		tick:    ticker.C,
		failure: failure.C,
		stop: func() {
			ticker.Stop()
			failure.Stop()
		},
	}
}

type run struct {
	cancel    context.CancelFunc
	targets   []*models.Printer
	started   time.Time
	initiator string
}

type Engine struct {
	repo     firmware.Repository
	registry Registry
	history  Recorder
	progress ProgressSource
	opts     Options
	logger   logging.Logger

	now       func() time.Time
	roll      func() float64
	newTimers func(Options) timers

	mu      sync.Mutex
	running map[string]*run
	base    context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

func NewEngine(repo firmware.Repository, registry Registry, history Recorder, progress ProgressSource,
	opts Options, l logging.Logger) *Engine {
	logger := l.With("module", "deployment")
	if opts.TickInterval <= 0 {
		logger.Warn(context.Background(), "non-positive tick interval, using default",
			"given", opts.TickInterval, "default", DefaultTickInterval)
		opts.TickInterval = DefaultTickInterval
	}
	if opts.FailureCheckDelay <= 0 {
		logger.Warn(context.Background(), "non-positive failure check delay, using default",
			"given", opts.FailureCheckDelay, "default", DefaultFailureCheckDelay)
		opts.FailureCheckDelay = DefaultFailureCheckDelay
	}

	base, stop := context.WithCancel(context.Background())
	return &Engine{
		repo:      repo,
		registry:  registry,
		history:   history,
		progress:  progress,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		roll:      rand.Float64,
		newTimers: realTimers,
		running:   make(map[string]*run),
		base:      base,
		stop:      stop,
	}
}

// Deploy starts rolling out a pending entry.
func (e *Engine) Deploy(ctx context.Context, id, initiator string) (*models.FirmwareUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.base.Err() != nil {
		return nil, fmt.Errorf("deployment engine stopped: %w", common.ErrInvalidState)
	}

	started := e.now().UTC()
	f, err := e.repo.Transition(ctx, id, func(f *models.FirmwareUpdate) error {
		if f.Status != models.FirmwarePending {
			return fmt.Errorf("firmware %s is %s, only pending firmware can be deployed: %w",
				f.Version, f.Status, common.ErrInvalidState)
		}
		if f.Deleting {
			return fmt.Errorf("firmware %s is being deleted: %w", f.Version, common.ErrInvalidState)
		}
		zero := 0
		f.Status = models.FirmwareDeploying
		f.Progress = &zero
		f.DeployedBy = initiator
		f.DeploymentStarted = &started
		return nil
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(e.base)
	r := &run{
		cancel:    cancel,
		targets:   e.registry.Snapshot(ctx, f.TargetPrinters),
		started:   started,
		initiator: initiator,
	}
	e.running[id] = r
	e.wg.Add(1)
	go e.process(runCtx, id, r)

	e.logger.Info(ctx, "deployment started", "firmware_id", id, "version", f.Version,
		"targets", len(f.TargetPrinters), "by", initiator)
	return f, nil
}

// Cancel stops a deploying entry. Printers are not touched.
func (e *Engine) Cancel(ctx context.Context, id, canceller string) (*models.FirmwareUpdate, error) {
	e.mu.Lock()
	now := e.now().UTC()
	f, err := e.repo.Transition(ctx, id, func(f *models.FirmwareUpdate) error {
		if f.Status != models.FirmwareDeploying {
			return fmt.Errorf("firmware %s is %s, only deploying firmware can be cancelled: %w",
				f.Version, f.Status, common.ErrInvalidState)
		}
		f.Status = models.FirmwareCancelled
		f.CancelledBy = canceller
		f.CancelledAt = &now
		return nil
	})
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	r := e.running[id]
	delete(e.running, id)
	e.mu.Unlock()

	if r == nil {
		e.logger.Warn(ctx, "cancelled deployment had no running process", "firmware_id", id)
		return f, nil
	}
	r.cancel()

	ctx = context.WithoutCancel(ctx)
	e.record(ctx, f, r, r.targets, models.OutcomeFailed, CancelNote, "", canceller)
	e.logger.Info(ctx, "deployment cancelled", "firmware_id", id, "version", f.Version, "by", canceller)
	return f, nil
}

// Running reports how many deployments have a live process.
func (e *Engine) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.running)
}

// Shutdown stops every process and waits for them to exit. Entries that
// were deploying stay deploying.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.stop()
	for id, r := range e.running {
		r.cancel()
		delete(e.running, id)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) process(ctx context.Context, id string, r *run) {
	defer e.wg.Done()

	t := e.newTimers(e.opts)
	defer t.stop()
	failureC := t.failure

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.tick:
			if e.tick(ctx, id, r) {
				return
			}
		case <-failureC:
			failureC = nil
			// a tick that is due at the same moment runs first
			select {
			case <-t.tick:
				if e.tick(ctx, id, r) {
					return
				}
			default:
			}
			if e.roll() < e.opts.FailureProbability {
				e.fail(ctx, id, r)
				return
			}
		}
	}
}

// tick advances progress once and reports whether the process is done.
func (e *Engine) tick(ctx context.Context, id string, r *run) bool {
	now := e.now().UTC()
	f, err := e.repo.Transition(ctx, id, func(f *models.FirmwareUpdate) error {
		if f.Status != models.FirmwareDeploying {
			return errNotDeploying
		}
		current := 0
		if f.Progress != nil {
			current = *f.Progress
		}
		next := min(max(e.progress.Advance(ctx, id, current), current), 100)
		f.Progress = &next
		if next == 100 {
			f.Status = models.FirmwareCompleted
			f.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errNotDeploying) {
			e.logger.Error(ctx, "deployment tick failed", "firmware_id", id, "error", err)
		}
		return true
	}

	if f.Status != models.FirmwareCompleted {
		return false
	}

	e.release(id, r)
	ctx = context.WithoutCancel(ctx)
	applied := e.registry.ApplyFirmware(ctx, f.TargetPrinters, f.Version)
	done := make(map[string]struct{}, len(applied))
	for _, p := range applied {
		done[p.ID] = struct{}{}
	}
	var updated []*models.Printer
	for _, p := range r.targets {
		if _, ok := done[p.ID]; ok {
			updated = append(updated, p)
		}
	}
	e.record(ctx, f, r, updated, models.OutcomeSuccess, SuccessNote, "", r.initiator)
	e.logger.Info(ctx, "deployment completed", "firmware_id", id, "version", f.Version, "printers", len(applied))
	return true
}

func (e *Engine) fail(ctx context.Context, id string, r *run) {
	now := e.now().UTC()
	f, err := e.repo.Transition(ctx, id, func(f *models.FirmwareUpdate) error {
		if f.Status != models.FirmwareDeploying {
			return errNotDeploying
		}
		f.Status = models.FirmwareFailed
		f.Error = FailureMessage
		f.FailedAt = &now
		return nil
	})
	if err != nil {
		if !errors.Is(err, errNotDeploying) {
			e.logger.Error(ctx, "deployment failure not recorded", "firmware_id", id, "error", err)
		}
		return
	}

	e.release(id, r)
	ctx = context.WithoutCancel(ctx)
	e.record(ctx, f, r, r.targets, models.OutcomeFailed, FailureNote, FailureMessage, r.initiator)
	e.logger.Warn(ctx, "deployment failed", "firmware_id", id, "version", f.Version, "error", FailureMessage)
}

func (e *Engine) release(id string, r *run) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[id] == r {
		delete(e.running, id)
	}
}

func (e *Engine) record(ctx context.Context, f *models.FirmwareUpdate, r *run, printers []*models.Printer,
	outcome models.UpdateOutcome, note, errMsg, initiator string) {
	duration := timex.Human(e.now().Sub(r.started))
	for _, p := range printers {
		_, err := e.history.Append(ctx, models.HistoryEntry{
			PrinterID:    p.ID,
			PrinterName:  p.Name,
			FromVersion:  p.FirmwareVersion,
			ToVersion:    f.Version,
			Status:       outcome,
			Duration:     duration,
			Notes:        note,
			ErrorMessage: errMsg,
		}, initiator)
		if err != nil {
			e.logger.Error(ctx, "history not recorded", "firmware_id", f.ID, "printer_id", p.ID, "error", err)
		}
	}
}
