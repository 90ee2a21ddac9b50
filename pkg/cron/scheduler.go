// Package cron runs scheduled statement imports from a watched
// directory using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/davidbugayov/statement-importer/pkg/storage"
)

// ImportRunner imports one statement file, returning true on success.
type ImportRunner func(ctx context.Context, path string) bool

// Default schedule: scan the watch directory every minute.
const DefaultSchedule = "* * * * *"

const scanTimeout = 30 * time.Minute

// Scheduler periodically scans a directory for statement files,
// imports them and moves the processed ones into the archive. Files
// that fail to import stay in place and are retried on the next scan.
type Scheduler struct {
	cron     *cron.Cron
	watchDir string
	run      ImportRunner
	archive  storage.Archive
	logger   *slog.Logger
}

// NewScheduler creates a watch scheduler.
func NewScheduler(watchDir string, run ImportRunner, archive storage.Archive, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		watchDir: watchDir,
		run:      run,
		archive:  archive,
		logger:   logger,
	}
}

// Start registers the scan job and begins the schedule. spec is a
// standard 5-field cron expression or a descriptor like "@hourly".
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		s.Scan(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("watch scheduler started", "dir", s.watchDir, "schedule", spec)
	return nil
}

// Stop gracefully stops the schedule. The returned context is done
// once a running scan has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("watch scheduler stopping")
	return s.cron.Stop()
}

// Scan imports every regular file currently in the watch directory.
// It is exported so a startup scan can run before the first tick.
func (s *Scheduler) Scan(ctx context.Context) {
	entries, err := os.ReadDir(s.watchDir)
	if err != nil {
		s.logger.Error("failed to read watch directory", "dir", s.watchDir, "error", err)
		return
	}

	imported := 0
	failed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(s.watchDir, entry.Name())
		if !s.run(ctx, path) {
			s.logger.Warn("import failed, leaving file for retry", "path", path)
			failed++
			continue
		}

		if _, err := s.archive.Store(ctx, path); err != nil {
			s.logger.Error("failed to archive imported file", "path", path, "error", err)
			failed++
			continue
		}
		imported++
	}

	if imported > 0 || failed > 0 {
		s.logger.Info("watch scan completed", "imported", imported, "failed", failed)
	}
}
