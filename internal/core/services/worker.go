package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docflow-io/docflow/internal/core/ports/driven"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
	"github.com/docflow-io/docflow/internal/logger"
)

// DefaultPollInterval is how long a worker sleeps after finding the
// queue empty.
const DefaultPollInterval = 5 * time.Second

// WorkerConfig tunes a single worker loop.
type WorkerConfig struct {
	// PollInterval is the sleep between empty polls.
	// Zero means DefaultPollInterval.
	PollInterval time.Duration

	// ExitOnIdle stops the loop the first time the queue is empty
	// instead of sleeping and retrying.
	ExitOnIdle bool

	// Params is passed through to the tool runner on every Process call.
	Params map[string]string
}

// Worker is one poll loop for one (tool, worker) pair. It claims pending
// documents from the queue, runs the tool out of the queue manager's
// control flow, and reports the outcome back.
//
// A worker is deliberately isolated from the queue core: a tool crash can
// only ever fail the one claimed document, never corrupt queue state.
type Worker struct {
	queue  driving.Queue
	runner driven.ToolRunner
	config WorkerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewWorker creates a worker for the runner's tool.
func NewWorker(queue driving.Queue, runner driven.ToolRunner, config WorkerConfig) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Worker{
		queue:  queue,
		runner: runner,
		config: config,
	}
}

// Start begins the poll loop. It blocks until the context is cancelled,
// Stop is called, or (with ExitOnIdle) the queue runs empty.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	defer w.wg.Done()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	tool := w.runner.Name()
	logger.Info("worker for %s polling every %s", tool, w.config.PollInterval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		default:
		}

		claimed, err := w.queue.Claim(ctx, tool)
		if err != nil {
			// Transient store trouble: log and retry next cycle.
			logger.Warn("worker %s: claim failed: %v", tool, err)
			if !w.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		if claimed == nil {
			if w.config.ExitOnIdle {
				logger.Info("no jobs for %s, quitting", tool)
				return nil
			}
			if !w.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		w.handle(ctx, tool, claimed)
	}
}

// Stop signals the loop to finish and waits for the in-flight document.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

// handle processes one claimed document and reports the outcome. Nothing
// in here may escape: a tool error becomes a Fail call, a failing Fail
// call is logged, and the loop carries on either way.
func (w *Worker) handle(ctx context.Context, tool string, claimed *driving.Claimed) {
	logger.Info("received task %s/%s (%d bytes)", tool, claimed.DocID, len(claimed.Content))

	result, err := w.process(ctx, claimed.Content)
	if err != nil {
		logger.Warn("worker %s: processing %s: %v", tool, claimed.DocID, err)
		if failErr := w.queue.Fail(ctx, tool, claimed.DocID, err.Error()); failErr != nil {
			logger.Warn("worker %s: storing error for %s: %v", tool, claimed.DocID, failErr)
		}
		return
	}

	if err := w.queue.Complete(ctx, tool, claimed.DocID, result); err != nil {
		logger.Warn("worker %s: storing result for %s: %v", tool, claimed.DocID, err)
		return
	}
	logger.Debug("completed task %s/%s (%d bytes)", tool, claimed.DocID, len(result))
}

// process invokes the tool runner with panic containment.
func (w *Worker) process(ctx context.Context, content string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return w.runner.Process(ctx, content, w.config.Params)
}

// sleep waits one poll interval, returning false if the context or the
// stop channel ended the wait.
func (w *Worker) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.config.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-w.stopCh:
		return true // Start's loop will observe stopCh and return nil
	case <-timer.C:
		return true
	}
}

// RunWorkers starts count workers per runner against the same queue and
// blocks until all of them stop. Correctness under this concurrency rests
// entirely on the store's atomic claim.
func RunWorkers(
	ctx context.Context,
	queue driving.Queue,
	runners []driven.ToolRunner,
	count int,
	config WorkerConfig,
) error {
	if count <= 0 {
		count = 1
	}

	var wg sync.WaitGroup
	for _, runner := range runners {
		for i := 0; i < count; i++ {
			worker := NewWorker(queue, runner, config)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("worker %s exited: %v", worker.runner.Name(), err)
				}
			}()
		}
	}

	logger.Info("workers active and waiting for input")
	wg.Wait()
	return ctx.Err()
}
