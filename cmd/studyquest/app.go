package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/studyquest/internal/config"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/domain/srs"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/phrazzld/studyquest/internal/hearts"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/platform/filestore"
	"github.com/phrazzld/studyquest/internal/platform/memstore"
	"github.com/phrazzld/studyquest/internal/platform/postgres"
	"github.com/phrazzld/studyquest/internal/platform/sqlite"
	"github.com/phrazzld/studyquest/internal/progress"
	"github.com/phrazzld/studyquest/internal/service/study"
	"github.com/phrazzld/studyquest/internal/store"
	"github.com/phrazzld/studyquest/internal/task"
	"github.com/spf13/afero"
)

// application holds the wired components shared by every subcommand.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	kv       store.KVStore
	progress *progress.Store
	hearts   *hearts.Pool
	study    study.Service
	recorder *events.Recorder
	backups  *task.Runner
	closers  []io.Closer
}

// newApplication opens storage and wires the services on top of it.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	fsys afero.Fs,
	clk clock.Clock,
	logger *slog.Logger,
) (*application, error) {
	app := &application{config: cfg, logger: logger}

	kv, closer, err := openStorage(ctx, cfg.Storage, fsys, logger)
	if err != nil {
		return nil, err
	}
	app.kv = kv
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	strategy, err := srs.ParseStrategy(cfg.Scheduler.Strategy)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("invalid scheduler configuration: %w", err)
	}
	scheduler, err := srs.New(strategy, nil)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	goal := domain.DailyGoal{
		CardsToReview:  cfg.Goals.Cards,
		MinutesToStudy: cfg.Goals.Minutes,
		XPToEarn:       cfg.Goals.XP,
	}
	app.progress = progress.NewStore(kv, clk, logger, progress.WithDailyGoal(goal))
	app.hearts = hearts.NewPool(kv, clk, logger)

	app.recorder = events.NewRecorder(events.DefaultRecorderLimit)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))
	emitter.RegisterHandler(app.recorder)

	if cfg.Backup.Dir != "" {
		runnerConfig := task.DefaultRunnerConfig()
		if cfg.Backup.Workers > 0 {
			runnerConfig.WorkerCount = cfg.Backup.Workers
		}
		app.backups = task.NewRunner(runnerConfig, logger)
		app.backups.Start()
		emitter.RegisterHandler(task.NewBackupHandler(app.backups, app.progress, fsys,
			task.BackupConfig{Dir: cfg.Backup.Dir, Keep: cfg.Backup.Keep}, logger),
			events.TypeSessionRecorded)
	}

	app.study = study.NewService(app.progress, scheduler, emitter, clk, logger)

	if err := app.progress.Load(ctx); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	logger.Debug("application initialized",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("strategy", string(strategy)))
	return app, nil
}

// openStorage returns the configured key-value backend and, for database
// drivers, the closer that releases it.
func openStorage(
	ctx context.Context,
	cfg config.StorageConfig,
	fsys afero.Fs,
	logger *slog.Logger,
) (store.KVStore, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memstore.New(), nil, nil

	case config.DriverFile:
		fs, err := filestore.New(fsys, cfg.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return fs, nil, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return db, db, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		kv := postgres.NewKVStore(db, logger)
		return kv, kv, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}

// cleanup waits for pending backups and releases storage handles.
func (app *application) cleanup() {
	if app.backups != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.backups.Stop(ctx); err != nil {
			app.logger.Error("failed to stop backup runner", slog.String("error", err.Error()))
		}
		cancel()
		app.backups = nil
	}
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}
	app.closers = nil
}
