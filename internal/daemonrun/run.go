package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"subweave/internal/config"
	"subweave/internal/ipc"
	"subweave/internal/logging"
	"subweave/internal/notifications"
	"subweave/internal/organizer"
	"subweave/internal/pipeline"
	"subweave/internal/preflight"
	"subweave/internal/workflow"
)

// Version identifies the daemon build in status output and webhook
// user agents.
const Version = "0.1.0"

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the daemon: it takes the singleton lock, assembles the
// pipeline, serves the control socket, and drives the workflow manager
// until SIGINT or SIGTERM. SIGHUP and SIGUSR1 trigger an immediate rescan.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "subweave.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another daemon already holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	pidPath := filepath.Join(cfg.Paths.LogDir, "subweave.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "subweave.log.*"},
	)

	logPreflight(signalCtx, cfg, logger)

	deps, cleanup, err := BuildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	deps = workflow.GateFFmpeg(deps, cfg.Queue.FFmpegConcurrency)

	pipe := pipeline.New(cfg, deps, logger)
	manager := workflow.NewManager(cfg, pipe, logger)
	if checker := llmChecker(cfg); checker != nil {
		manager.WithHealthChecks(checker)
	}

	rescan := make(chan os.Signal, 1)
	signal.Notify(rescan, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(rescan)
	go func() {
		for {
			select {
			case <-signalCtx.Done():
				return
			case sig := <-rescan:
				logger.Info("rescan signal received", logging.String("signal", sig.String()))
				manager.TriggerScan()
			}
		}
	}()

	d := &daemonSurface{
		manager:  manager,
		cancel:   cancel,
		logPath:  filepath.Join(cfg.Paths.LogDir, "subweave.log"),
		notifier: notifications.NewService(cfg),
	}
	ipcServer, err := ipc.NewServer(signalCtx, cfg.IPC.SocketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("daemon started",
		logging.String("version", Version),
		logging.Int("watch_dirs", len(cfg.Paths.WatchDirs)),
		logging.String("socket", cfg.IPC.SocketPath))

	err = manager.Run(signalCtx)
	logger.Info("daemon shutting down")
	return err
}

// BuildDeps assembles the production pipeline collaborators from the
// configuration snapshot. The returned cleanup closes long-lived handles.
func BuildDeps(cfg *config.Config, logger *slog.Logger) (pipeline.Deps, func(), error) {
	deps := pipeline.Deps{
		Prober:   pipeline.ExecProber(cfg.FFprobeBinary()),
		Notifier: notifications.NewService(cfg),
	}
	extractor := newExtractor(cfg)
	deps.AudioExtractor = extractor
	deps.SubtitleExtractor = extractor
	deps.Organizer = organizer.New(cfg, logger)

	limiters := newLimiters(cfg)
	cleanup := func() {}

	recognizer, err := buildRecognizer(cfg, limiters, logger)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}
	deps.Recognizer = recognizer

	translator, translatorCleanup, err := buildTranslator(cfg, limiters, logger)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}
	deps.Translator = translator
	if translatorCleanup != nil {
		cleanup = translatorCleanup
	}

	deps.Resolver = buildResolver(cfg, limiters, logger)
	deps.WorkInfoModel = workInfoModel(cfg)
	return deps, cleanup, nil
}

func logPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
	for _, status := range preflight.CheckSystemDeps(cfg) {
		logger.Info("dependency snapshot",
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.Bool("available", status.Available))
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// daemonSurface adapts the workflow manager to the IPC control interface.
type daemonSurface struct {
	manager  *workflow.Manager
	cancel   context.CancelFunc
	logPath  string
	notifier notifications.Service
}

func (d *daemonSurface) Status(ctx context.Context) workflow.Snapshot {
	return d.manager.Status(ctx)
}

func (d *daemonSurface) TriggerScan() { d.manager.TriggerScan() }

func (d *daemonSurface) ClearQueue() int { return d.manager.Queue().Clear() }

func (d *daemonSurface) Stop() {
	// Delay so the RPC response reaches the client before the listener dies.
	go func() {
		time.Sleep(100 * time.Millisecond)
		d.cancel()
	}()
}

func (d *daemonSurface) LogPath() string { return d.logPath }

func (d *daemonSurface) Version() string { return Version }

func (d *daemonSurface) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}
