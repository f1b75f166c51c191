package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/spf13/afero"
)

// TypeBackup identifies backup snapshot tasks.
const TypeBackup = "backup"

const (
	backupPrefix     = "studyquest-"
	backupExt        = ".json"
	backupTimeLayout = "20060102T150405.000Z"
)

// Exporter produces the backup envelope.
type Exporter interface {
	Export(ctx context.Context) ([]byte, error)
}

// BackupConfig locates backup snapshots.
type BackupConfig struct {
	Dir string
	// Keep is the number of snapshots retained; older ones are pruned. Zero
	// keeps all of them.
	Keep int
}

// BackupTask writes one export snapshot into the backup directory and prunes
// old snapshots.
type BackupTask struct {
	id       uuid.UUID
	exporter Exporter
	fs       afero.Fs
	config   BackupConfig
	at       time.Time
	logger   *slog.Logger
}

var _ Task = (*BackupTask)(nil)

// NewBackupTask creates a snapshot task stamped with at.
func NewBackupTask(exporter Exporter, fsys afero.Fs, config BackupConfig, at time.Time, logger *slog.Logger) *BackupTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupTask{
		id:       uuid.New(),
		exporter: exporter,
		fs:       fsys,
		config:   config,
		at:       at,
		logger:   logger,
	}
}

func (t *BackupTask) ID() uuid.UUID { return t.id }
func (t *BackupTask) Type() string  { return TypeBackup }

// Path is the file the snapshot is written to.
func (t *BackupTask) Path() string {
	return filepath.Join(t.config.Dir, backupPrefix+t.at.UTC().Format(backupTimeLayout)+backupExt)
}

// Execute implements Task.
func (t *BackupTask) Execute(ctx context.Context) error {
	data, err := t.exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export progress: %w", err)
	}

	if err := t.fs.MkdirAll(t.config.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := t.Path()
	tmp := path + ".tmp"
	if err := afero.WriteFile(t.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := t.fs.Rename(tmp, path); err != nil {
		_ = t.fs.Remove(tmp)
		return fmt.Errorf("failed to finalize backup: %w", err)
	}

	t.logger.Info("backup written", slog.String("path", path), slog.Int("bytes", len(data)))
	return t.prune()
}

func (t *BackupTask) prune() error {
	if t.config.Keep <= 0 {
		return nil
	}
	snapshots, err := ListBackups(t.fs, t.config.Dir)
	if err != nil {
		return err
	}
	if len(snapshots) <= t.config.Keep {
		return nil
	}

	var errs []error
	for _, name := range snapshots[:len(snapshots)-t.config.Keep] {
		if err := t.fs.Remove(filepath.Join(t.config.Dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to prune backups: %w", err)
	}
	return nil
}

// ListBackups returns snapshot file names in dir, oldest first.
func ListBackups(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// BackupHandler schedules a snapshot after every recorded session.
type BackupHandler struct {
	runner   *Runner
	exporter Exporter
	fs       afero.Fs
	config   BackupConfig
	logger   *slog.Logger
}

var _ events.EventHandler = (*BackupHandler)(nil)

// NewBackupHandler creates a BackupHandler submitting to runner.
func NewBackupHandler(
	runner *Runner,
	exporter Exporter,
	fsys afero.Fs,
	config BackupConfig,
	logger *slog.Logger,
) *BackupHandler {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if exporter == nil {
		panic("exporter cannot be nil")
	}
	if fsys == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupHandler{
		runner:   runner,
		exporter: exporter,
		fs:       fsys,
		config:   config,
		logger:   logger.With(slog.String("component", "backup_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *BackupHandler) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.TypeSessionRecorded {
		return nil
	}

	task := NewBackupTask(h.exporter, h.fs, h.config, event.OccurredAt, h.logger)
	if err := h.runner.Submit(task); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}
	return nil
}
