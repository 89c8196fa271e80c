package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/crosspost/internal/metrics"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/repository"
)

var errNoReadableMedia = errors.New("no readable media files")

type DispatchService interface {
	// Execute runs a post once against every selected platform and records
	// its final status.
	Execute(ctx context.Context, post *models.ScheduledPost) (*models.ExecutionResult, error)
	ExecuteByID(ctx context.Context, id int64) (*models.ExecutionResult, error)
	// Publish sends texts immediately without persisting anything.
	Publish(ctx context.Context, texts map[string]string, files []string) map[string]models.Outcome
}

type dispatchService struct {
	ss      ScheduleService
	ps      PlatformService
	ph      repository.PostingHistoryRepository
	timeout time.Duration

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewDispatchService(ss ScheduleService, ps PlatformService, ph repository.PostingHistoryRepository, timeout time.Duration) DispatchService {
	return &dispatchService{
		ss:       ss,
		ps:       ps,
		ph:       ph,
		timeout:  timeout,
		inflight: make(map[int64]struct{}),
	}
}

func (s *dispatchService) ExecuteByID(ctx context.Context, id int64) (*models.ExecutionResult, error) {
	post, err := s.ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, post)
}

func (s *dispatchService) Execute(ctx context.Context, post *models.ScheduledPost) (*models.ExecutionResult, error) {
	if !s.acquire(post.ID) {
		return nil, ErrExecutionInProgress
	}
	defer s.release(post.ID)

	result := s.run(ctx, post)

	s.ss.SetStatus(ctx, post.ID, result.Status)
	metrics.Executions.WithLabelValues(result.Status).Inc()
	slog.Info("scheduled post executed", "post_id", post.ID, "status", result.Status)

	return result, nil
}

func (s *dispatchService) run(ctx context.Context, post *models.ScheduledPost) *models.ExecutionResult {
	result := &models.ExecutionResult{
		PostID:  post.ID,
		Status:  models.PostStatusFailed,
		Results: map[string]models.Outcome{},
	}

	if post.DecodeErr != nil {
		slog.Error("scheduled post cannot be decoded", "post_id", post.ID, "error", post.DecodeErr)
		return result
	}

	selected := post.Platforms.Selected()
	if len(selected) == 0 {
		slog.Warn("scheduled post has no selected platform", "post_id", post.ID)
		return result
	}
	sort.Strings(selected)

	var files []string
	if !post.MediaPaths.Empty() {
		files = readableFiles(post.ID, post.MediaPaths.Files)
		if len(files) == 0 {
			slog.Error("scheduled post references no readable media", "post_id", post.ID, "files", post.MediaPaths.Files)
			for _, platform := range selected {
				result.Results[platform] = models.Failed(errNoReadableMedia)
			}
			s.record(ctx, post.ID, result.Results)
			return result
		}
	}

	for _, platform := range selected {
		text, ok := ResolveContent(post, platform)
		if !ok || strings.TrimSpace(text) == "" {
			slog.Warn("no content resolved for platform", "post_id", post.ID, "platform", platform)
			result.Results[platform] = models.Failed(fmt.Errorf("no content for %s", platform))
			continue
		}
		result.Results[platform] = s.invoke(ctx, platform, text, files)
	}

	result.Success = len(result.Results) > 0
	for platform, outcome := range result.Results {
		if !outcome.Success {
			slog.Warn("platform post failed", "post_id", post.ID, "platform", platform, "error", outcome.Error)
			result.Success = false
		}
	}
	if result.Success {
		result.Status = models.PostStatusCompleted
	}

	s.record(ctx, post.ID, result.Results)
	return result
}

func (s *dispatchService) Publish(ctx context.Context, texts map[string]string, files []string) map[string]models.Outcome {
	results := make(map[string]models.Outcome, len(texts))
	for platform, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[platform] = models.Failed(fmt.Errorf("no content for %s", platform))
			continue
		}
		results[platform] = s.invoke(ctx, platform, text, files)
	}
	return results
}

// invoke calls one platform under the configured timeout. Errors and panics
// become a failed outcome.
func (s *dispatchService) invoke(ctx context.Context, platform, text string, files []string) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("platform client panicked", "platform", platform, "panic", r)
			outcome = models.Outcome{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
		metrics.PlatformPosts.WithLabelValues(platform, metrics.Result(outcome.Success)).Inc()
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		resp string
		err  error
	)
	if len(files) > 0 {
		resp, err = s.ps.PostWithMedia(ctx, platform, text, files)
	} else {
		resp, err = s.ps.Post(ctx, platform, text)
	}
	if err != nil {
		return models.Failed(err)
	}
	return models.Succeeded(resp)
}

func (s *dispatchService) record(ctx context.Context, postID int64, outcomes map[string]models.Outcome) {
	if s.ph == nil {
		return
	}
	for platform, outcome := range outcomes {
		_, err := s.ph.Create(ctx, &models.PostingHistory{
			PostID:       postID,
			Platform:     platform,
			Success:      outcome.Success,
			ErrorMessage: outcome.Error,
		})
		if err != nil {
			slog.Error("failed to record posting history", "post_id", postID, "platform", platform, "error", err)
		}
	}
}

func (s *dispatchService) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *dispatchService) release(id int64) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// readableFiles drops entries that are missing, unreadable or directories.
func readableFiles(postID int64, paths []string) []string {
	var files []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			slog.Warn("dropping unreadable media file", "post_id", postID, "path", path, "error", err)
			continue
		}
		info, err := f.Stat()
		f.Close()
		if err != nil || info.IsDir() {
			slog.Warn("dropping media path that is not a file", "post_id", postID, "path", path)
			continue
		}
		files = append(files, path)
	}
	return files
}
