package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"subweave/internal/admission"
	"subweave/internal/config"
	"subweave/internal/jobfiles"
	"subweave/internal/logging"
	"subweave/internal/pipeline"
	"subweave/internal/queue"
	"subweave/internal/stage"
	"subweave/internal/watch"
)

// Processor runs one admitted job end to end. The production implementation
// is the pipeline; tests substitute fakes.
type Processor interface {
	Process(ctx context.Context, naming jobfiles.Naming, overrides jobfiles.Overrides) (*pipeline.Summary, error)
}

// Manager wires the watcher, queue, gate, and worker pool together.
type Manager struct {
	cfg       *config.Config
	logger    *slog.Logger
	queue     *queue.Queue
	gate      *admission.Gate
	processor Processor
	watcher   *watch.Watcher
	jobSem    *semaphore.Weighted
	checks    []stage.HealthChecker

	mu        sync.Mutex
	startedAt time.Time
	running   bool
	active    map[string]ActiveJob
	processed int
	skipped   int
	failed    int
	lastError string
}

// NewManager builds a manager around a processor. The watcher emits into the
// queue with computed priorities; nothing runs until Run is called.
func NewManager(cfg *config.Config, processor Processor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		queue:     queue.New(),
		gate:      admission.NewGate(cfg),
		processor: processor,
		jobSem:    semaphore.NewWeighted(int64(atLeastOne(cfg.Queue.MaxActiveJobs))),
		active:    make(map[string]ActiveJob),
	}
	m.watcher = watch.New(cfg, logger, m.enqueue)
	return m
}

// WithHealthChecks registers readiness probes surfaced through Status.
func (m *Manager) WithHealthChecks(checks ...stage.HealthChecker) {
	m.checks = append(m.checks, checks...)
}

// Queue exposes the underlying queue for IPC handlers.
func (m *Manager) Queue() *queue.Queue { return m.queue }

// TriggerScan asks the watcher for an immediate rescan.
func (m *Manager) TriggerScan() { m.watcher.TriggerScan() }

// ScanOnce walks the watch roots a single time and reports how many paths
// were emitted.
func (m *Manager) ScanOnce() int { return m.watcher.ScanOnce() }

// Run starts the watcher and the worker pool and blocks until the context is
// cancelled and every in-flight job has drained.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	m.running = true
	m.startedAt = time.Now()
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer m.queue.Close()
		return m.watcher.Run(ctx)
	})

	workers := atLeastOne(m.cfg.Queue.WorkerConcurrency)
	for i := 0; i < workers; i++ {
		worker := i
		group.Go(func() error {
			m.workerLoop(ctx, worker)
			return nil
		})
	}
	m.logger.Info("workflow started",
		logging.Int("workers", workers),
		logging.Int("max_active_jobs", atLeastOne(m.cfg.Queue.MaxActiveJobs)))
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *Manager) workerLoop(ctx context.Context, worker int) {
	logger := m.logger.With(logging.Int("worker", worker))
	for {
		entry, ok := m.queue.Take(ctx)
		if !ok {
			return
		}
		m.handle(ctx, logger, entry)
		m.queue.Done(entry.Path)
	}
}

// handle gates one dequeued path and, when admitted, runs it through the
// processor while holding the job lock.
func (m *Manager) handle(ctx context.Context, logger *slog.Logger, entry queue.Entry) {
	naming := m.resolveNaming(entry.Path)
	logger = logger.With(logging.String("video", entry.Path))

	overrides, err := jobfiles.LoadOverrides(naming.OverridePath())
	if err != nil {
		logger.Warn("job override file unreadable", logging.Error(err))
	}

	decision, err := m.gate.Admit(naming, overrides)
	if err != nil {
		logger.Error("admission check failed", logging.Error(err))
		m.recordFailure(err)
		return
	}
	if !decision.Admit {
		logger.Debug("path skipped", logging.String("reason", decision.Reason))
		m.mu.Lock()
		m.skipped++
		m.mu.Unlock()
		return
	}

	// The gate acquired the lock; hold it for the life of the job.
	defer func() {
		if err := jobfiles.ReleaseLock(naming.LockPath()); err != nil {
			logger.Warn("lock release failed", logging.Error(err))
		}
	}()

	if err := m.jobSem.Acquire(ctx, 1); err != nil {
		return
	}
	defer m.jobSem.Release(1)

	m.trackStart(entry)
	defer m.trackFinish(entry.Path)

	summary, err := m.processor.Process(ctx, naming, overrides)
	if err != nil {
		logger.Error("job failed", logging.Error(err))
		m.recordFailure(err)
		return
	}
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
	logger.Info("job finished",
		logging.String("run_id", summary.RunID),
		logging.Bool("early_exit", summary.EarlyExit),
		logging.Bool("reused", summary.Reused),
		logging.Int("outputs", len(summary.Outputs)),
		logging.Duration("duration", summary.Duration))
}

// enqueue is the watcher emit hook.
func (m *Manager) enqueue(path string) {
	naming := m.resolveNaming(path)
	priority := queue.ComputePriority(naming, m.cfg.Translate.SimplifiedTarget, m.cfg.Queue.PriorityEnabled)
	if m.queue.Enqueue(path, priority) {
		m.logger.Debug("path queued",
			logging.String("video", path),
			logging.Int("priority", int(priority)))
	}
}

func (m *Manager) resolveNaming(path string) jobfiles.Naming {
	return jobfiles.ResolveNaming(path, m.cfg.Paths.OutputDir, m.cfg.Admission.OutputBesideVideo, "")
}

func (m *Manager) trackStart(entry queue.Entry) {
	m.mu.Lock()
	m.active[entry.Path] = ActiveJob{
		Path:      entry.Path,
		Priority:  int(entry.Priority),
		StartedAt: time.Now(),
	}
	m.mu.Unlock()
}

func (m *Manager) trackFinish(path string) {
	m.mu.Lock()
	delete(m.active, path)
	m.mu.Unlock()
}

func (m *Manager) recordFailure(err error) {
	m.mu.Lock()
	m.failed++
	m.lastError = err.Error()
	m.mu.Unlock()
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
