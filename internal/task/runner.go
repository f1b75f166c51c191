package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when the buffer has no room.
	ErrQueueFull = errors.New("task queue is full")
	// ErrRunnerStopped is returned by Submit after Stop.
	ErrRunnerStopped = errors.New("task runner is stopped")
)

// RunnerConfig sizes the worker pool.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers. Values below 1 mean 1.
	WorkerCount int
	// QueueSize is the number of tasks buffered ahead of the workers.
	QueueSize int
	// TaskTimeout bounds a single Execute call. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultRunnerConfig returns the configuration used by the server.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 1,
		QueueSize:   16,
		TaskTimeout: 30 * time.Second,
	}
}

// Runner executes submitted tasks on a fixed set of workers. Tasks still
// queued when Stop is called are drained before Stop returns.
type Runner struct {
	config     RunnerConfig
	tasks      chan Task
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	errHandler func(task Task, err error)

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewRunner creates a Runner. Call Start before submitting.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		config: config,
		tasks:  make(chan Task, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.String("error", err.Error()))
		},
	}
}

// SetErrorHandler replaces the handler called when a task fails.
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	if handler != nil {
		r.errHandler = handler
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	for i := range r.config.WorkerCount {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Debug("task runner started", slog.Int("workers", r.config.WorkerCount))
}

// Submit enqueues task without blocking.
func (r *Runner) Submit(task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrRunnerStopped
	}

	select {
	case r.tasks <- task:
		r.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("status", string(StatusPending)),
			slog.Int("queue_len", len(r.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(r.tasks))
	}
}

// Stop rejects further submissions, lets the workers drain the queue and
// waits for them. ctx bounds the wait; when it expires, running tasks are
// canceled.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.tasks)
	started := r.started
	r.mu.Unlock()

	if !started {
		r.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		r.logger.Debug("task runner stopped")
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return fmt.Errorf("task runner stop: %w", ctx.Err())
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for task := range r.tasks {
		r.process(task, id)
	}
}

func (r *Runner) process(task Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	ctx := r.ctx
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	log.Debug("processing task", slog.String("status", string(StatusRunning)))
	if err := task.Execute(ctx); err != nil {
		log.Debug("task finished", slog.String("status", string(StatusFailed)))
		r.errHandler(task, err)
		return
	}
	log.Debug("task finished", slog.String("status", string(StatusCompleted)))
}
