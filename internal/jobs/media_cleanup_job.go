package job

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maheshrc27/crosspost/internal/metrics"
	"github.com/maheshrc27/crosspost/internal/service"
)

// MediaCleanupJob removes staged uploads that are old and not referenced by
// any pending post.
type MediaCleanupJob struct {
	ss        service.ScheduleService
	dir       string
	retention time.Duration
	now       func() time.Time
}

func NewMediaCleanupJob(ss service.ScheduleService, dir string, retention time.Duration) *MediaCleanupJob {
	return &MediaCleanupJob{
		ss:        ss,
		dir:       dir,
		retention: retention,
		now:       time.Now,
	}
}

// Run is the cron entry point.
func (j *MediaCleanupJob) Run() {
	removed, err := j.Cleanup(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if removed > 0 {
		slog.Info("removed stale uploads", "count", removed)
	}
}

func (j *MediaCleanupJob) Cleanup(ctx context.Context) (int, error) {
	if j.retention <= 0 {
		return 0, nil
	}

	refs, err := j.ss.ReferencedMedia(ctx)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(refs))
	for path := range refs {
		keep[filepath.Base(path)] = struct{}{}
	}

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-j.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			slog.Warn("failed to remove upload", "file", entry.Name(), "error", err)
			continue
		}
		removed++
		metrics.MediaFilesRemoved.Inc()
	}

	return removed, nil
}
