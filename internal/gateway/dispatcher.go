package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/model"
	"github.com/sethvargo/go-retry"
)

// Outbox persists commands until the backend has answered them
type Outbox interface {
	PutCommand(taskID string, seq uint64, patch model.TaskPatch) (*db.OutboxEntry, error)
	MarkAttempt(id string) error
	DeleteCommand(id string) error
	PendingCommands() ([]db.OutboxEntry, error)
}

// Result is the terminal outcome of a dispatched command
type Result struct {
	Command  board.DragCommand
	Task     *model.Task
	Err      error
	Attempts int

	// Replayed marks commands restored from the outbox. Their Seq
	// belongs to an earlier session.
	Replayed bool
}

// DispatcherConfig tunes a Dispatcher
type DispatcherConfig struct {
	Workers        int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	Outbox   Outbox
	OnResult func(Result)
	Logger   *slog.Logger
}

func (c *DispatcherConfig) setDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ErrClosed is reported for commands dispatched after Close
var ErrClosed = errors.New("dispatcher closed")

type job struct {
	cmd      board.DragCommand
	replayed bool

	// outboxID is the stored row for this command, empty when unsaved
	outboxID string
}

// Dispatcher sends drag commands to a Gateway in the background. At most
// one request per task is in flight; a command arriving while its task
// is busy waits, and a later one replaces it.
type Dispatcher struct {
	gw  Gateway
	cfg DispatcherConfig
	sem chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inflight map[string]bool
	queued   map[string]job
}

// NewDispatcher creates a dispatcher over gw
func NewDispatcher(gw Gateway, cfg DispatcherConfig) *Dispatcher {
	cfg.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		gw:       gw,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.Workers),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]bool),
		queued:   make(map[string]job),
	}
}

// Dispatch queues cmd and returns immediately
func (d *Dispatcher) Dispatch(cmd board.DragCommand) {
	d.enqueue(job{cmd: cmd}, true)
}

// Replay re-dispatches commands left in the outbox by an earlier run.
// Returns the number of commands queued.
func (d *Dispatcher) Replay() (int, error) {
	if d.cfg.Outbox == nil {
		return 0, nil
	}
	entries, err := d.cfg.Outbox.PendingCommands()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		d.cfg.Logger.Info("replaying pending move", "task_id", e.TaskID, "patch", e.Patch.String(), "attempts", e.Attempts)
		d.enqueue(job{
			cmd:      board.DragCommand{TaskID: e.TaskID, Patch: e.Patch, Seq: e.Seq},
			replayed: true,
			outboxID: e.ID,
		}, false)
	}
	return len(entries), nil
}

func (d *Dispatcher) enqueue(j job, persist bool) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.report(Result{Command: j.cmd, Err: ErrClosed, Replayed: j.replayed})
		return
	}

	if persist && d.cfg.Outbox != nil {
		e, err := d.cfg.Outbox.PutCommand(j.cmd.TaskID, j.cmd.Seq, j.cmd.Patch)
		if err != nil {
			d.cfg.Logger.Warn("failed to persist command", "task_id", j.cmd.TaskID, "error", err)
		} else {
			j.outboxID = e.ID
		}
	}

	id := j.cmd.TaskID
	if d.inflight[id] {
		if prev, ok := d.queued[id]; ok {
			d.cfg.Logger.Debug("coalescing move", "task_id", id, "dropped_seq", prev.cmd.Seq, "seq", j.cmd.Seq)
		}
		d.queued[id] = j
		d.mu.Unlock()
		return
	}
	d.inflight[id] = true
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(j)
}

// run drains the commands of one task in order
func (d *Dispatcher) run(j job) {
	defer d.wg.Done()
	for {
		d.report(d.send(j))

		d.mu.Lock()
		next, ok := d.queued[j.cmd.TaskID]
		if !ok {
			delete(d.inflight, j.cmd.TaskID)
			d.mu.Unlock()
			return
		}
		delete(d.queued, j.cmd.TaskID)
		d.mu.Unlock()
		j = next
	}
}

func (d *Dispatcher) send(j job) Result {
	res := Result{Command: j.cmd, Replayed: j.replayed}

	select {
	case d.sem <- struct{}{}:
	case <-d.ctx.Done():
		res.Err = d.ctx.Err()
		return res
	}
	defer func() { <-d.sem }()

	b := retry.NewExponential(d.cfg.InitialBackoff)
	b = retry.WithCappedDuration(d.cfg.MaxBackoff, b)
	b = retry.WithMaxRetries(uint64(d.cfg.MaxAttempts-1), b)

	logger := d.cfg.Logger.With("task_id", j.cmd.TaskID, "seq", j.cmd.Seq)
	res.Err = retry.Do(d.ctx, b, func(ctx context.Context) error {
		res.Attempts++
		task, err := d.gw.UpdateTask(ctx, j.cmd.TaskID, j.cmd.Patch)
		if err == nil {
			res.Task = task
			return nil
		}
		if d.cfg.Outbox != nil && j.outboxID != "" {
			if merr := d.cfg.Outbox.MarkAttempt(j.outboxID); merr != nil {
				logger.Debug("failed to record attempt", "error", merr)
			}
		}
		if IsPermanent(err) {
			return err
		}
		logger.Warn("move failed, will retry", "attempt", res.Attempts, "error", err)
		return retry.RetryableError(err)
	})

	// A cancelled send stays in the outbox for the next run
	if d.cfg.Outbox != nil && j.outboxID != "" && !errors.Is(res.Err, context.Canceled) {
		if err := d.cfg.Outbox.DeleteCommand(j.outboxID); err != nil {
			logger.Warn("failed to clear outbox", "error", err)
		}
	}
	if res.Err != nil {
		logger.Error("move given up", "attempts", res.Attempts, "patch", j.cmd.Patch.String(), "error", res.Err)
	}
	return res
}

func (d *Dispatcher) report(res Result) {
	if d.cfg.OnResult != nil {
		d.cfg.OnResult(res)
	}
}

// Close stops accepting commands and waits for queued work. If ctx ends
// first, in-flight requests are cancelled and their commands stay in the
// outbox.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
