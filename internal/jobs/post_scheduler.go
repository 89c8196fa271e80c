package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/crosspost/internal/metrics"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/service"
)

var ErrSchedulerRunning = errors.New("scheduler is already running")

// PostScheduler polls for due posts and executes them. Each cycle runs to
// completion before the next sleep starts.
type PostScheduler struct {
	ss       service.ScheduleService
	ds       service.DispatchService
	interval time.Duration
	now      func() time.Time

	cycleMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPostScheduler(ss service.ScheduleService, ds service.DispatchService, interval time.Duration) *PostScheduler {
	return &PostScheduler{
		ss:       ss,
		ds:       ds,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the polling loop in the background until Stop is called or ctx
// is cancelled.
func (s *PostScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)

	slog.Info("scheduler started", "interval", s.interval.String())
	return nil
}

// Stop signals the loop and waits for it to exit. A cycle in progress is
// allowed to finish.
func (s *PostScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	slog.Info("scheduler stopped")
}

func (s *PostScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *PostScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		// A cycle outlives cancellation of ctx.
		s.RunOnce(context.WithoutCancel(ctx))

		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// RunOnce executes every post due now and returns their ids.
func (s *PostScheduler) RunOnce(ctx context.Context) []int64 {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	defer func() {
		metrics.SchedulerCycleDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now().UTC()
	posts := s.ss.ListPendingDue(ctx, now)
	metrics.SchedulerDuePosts.Set(float64(len(posts)))
	if len(posts) > 0 {
		slog.Info("executing due posts", "count", len(posts), "now", now.Format(time.RFC3339))
	}

	ids := make([]int64, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
		s.execute(ctx, post)
	}
	return ids
}

func (s *PostScheduler) execute(ctx context.Context, post *models.ScheduledPost) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled post execution panicked", "post_id", post.ID, "panic", r)
			s.ss.SetStatus(ctx, post.ID, models.PostStatusFailed)
		}
	}()

	_, err := s.ds.Execute(ctx, post)
	if errors.Is(err, service.ErrExecutionInProgress) {
		slog.Info("post is already executing, skipping", "post_id", post.ID)
		return
	}
	if err != nil {
		slog.Error("scheduled post execution failed", "post_id", post.ID, "error", err)
		s.ss.SetStatus(ctx, post.ID, models.PostStatusFailed)
	}
}
