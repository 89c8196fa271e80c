package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/repository"
	"github.com/maheshrc27/crosspost/internal/transfer"
	"github.com/maheshrc27/crosspost/pkg/utils"
)

type ScheduleService interface {
	Schedule(ctx context.Context, req *transfer.ScheduleRequest) (int64, error)
	Create(ctx context.Context, content models.Content, platforms models.Platforms, scheduledTime string, media *models.MediaPaths) (int64, error)
	Get(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListPendingDue(ctx context.Context, now time.Time) []*models.ScheduledPost
	ListAll(ctx context.Context) []*models.ScheduledPost
	SetStatus(ctx context.Context, id int64, status string)
	Delete(ctx context.Context, id int64)
	Reschedule(ctx context.Context, id int64, at time.Time) error
	ReferencedMedia(ctx context.Context) (map[string]struct{}, error)
	History(ctx context.Context, id int64) ([]*models.PostingHistory, error)
}

type scheduleService struct {
	sp  repository.ScheduledPostRepository
	ph  repository.PostingHistoryRepository
	now func() time.Time
}

func NewScheduleService(sp repository.ScheduledPostRepository, ph repository.PostingHistoryRepository) ScheduleService {
	return &scheduleService{
		sp:  sp,
		ph:  ph,
		now: time.Now,
	}
}

// Schedule validates a schedule request and persists it as a pending post.
// Only selected platforms are kept, and both content carriers are filled so
// either one can be read back.
func (s *scheduleService) Schedule(ctx context.Context, req *transfer.ScheduleRequest) (int64, error) {
	if strings.TrimSpace(req.ScheduledTime) == "" {
		return 0, ErrMissingScheduledTime
	}
	if _, err := utils.ParseScheduleInput(req.ScheduledTime); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScheduledTime, req.ScheduledTime)
	}

	platforms := models.Platforms{}
	for name, entry := range req.Platforms {
		if !entry.Selected {
			continue
		}
		if !models.IsSupportedPlatform(name) {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, name)
		}
		platforms[name] = entry
	}
	if len(platforms) == 0 {
		return 0, ErrNoPlatformSelected
	}

	content, err := req.SharedContent()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	content, platforms = reconcileContent(content, platforms)

	draft := &models.ScheduledPost{Content: content, Platforms: platforms, PostMode: content.Mode}
	for _, name := range platforms.Selected() {
		text, ok := ResolveContent(draft, name)
		if !ok || strings.TrimSpace(text) == "" {
			return 0, fmt.Errorf("%w for %s", ErrEmptyContent, name)
		}
	}

	var media *models.MediaPaths
	if len(req.MediaFiles) > 0 {
		media = &models.MediaPaths{Files: req.MediaFiles}
	}

	return s.Create(ctx, content, platforms, req.ScheduledTime, media)
}

// reconcileContent makes the shared content and the per-platform entries
// agree. Entries that carry their own text keep it.
func reconcileContent(content models.Content, platforms models.Platforms) (models.Content, models.Platforms) {
	if content.Mode == models.PostModeIndividual {
		texts := make(map[string]string, len(platforms))
		for name, text := range content.PerPlatform {
			texts[name] = text
		}
		for name, entry := range platforms {
			if entry.Content != "" {
				texts[name] = entry.Content
			} else {
				entry.Content = texts[name]
				platforms[name] = entry
			}
		}
		return models.IndividualContent(texts), platforms
	}

	for name, entry := range platforms {
		if entry.Content == "" {
			entry.Content = content.Text
			platforms[name] = entry
		}
	}
	return content, platforms
}

// Create persists a pending post. A schedule time with no offset, or with the
// Z shorthand, is local wall time; it is stored as UTC. Input that cannot be
// parsed is stored as given; the next scheduler cycle fails it.
func (s *scheduleService) Create(ctx context.Context, content models.Content, platforms models.Platforms, scheduledTime string, media *models.MediaPaths) (int64, error) {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return 0, fmt.Errorf("encode content: %w", err)
	}

	if platforms == nil {
		platforms = models.Platforms{}
	}
	platformsJSON, err := json.Marshal(platforms)
	if err != nil {
		return 0, fmt.Errorf("encode platforms: %w", err)
	}

	storedTime := scheduledTime
	if t, err := utils.ParseScheduleInput(scheduledTime); err != nil {
		slog.Warn("storing unparseable scheduled_time verbatim", "scheduled_time", scheduledTime, "error", err)
	} else {
		storedTime = utils.FormatStoredTime(t)
	}

	var mediaPaths sql.NullString
	if !media.Empty() {
		mediaJSON, err := json.Marshal(media)
		if err != nil {
			return 0, fmt.Errorf("encode media_paths: %w", err)
		}
		mediaPaths = sql.NullString{String: string(mediaJSON), Valid: true}
	}

	mode := content.Mode
	if mode == "" {
		mode = models.PostModeUnified
	}

	record := &models.ScheduledPostRecord{
		Content:       string(contentJSON),
		Platforms:     string(platformsJSON),
		ScheduledTime: storedTime,
		Status:        models.PostStatusPending,
		CreatedAt:     s.now().UTC(),
		MediaPaths:    mediaPaths,
		PostMode:      sql.NullString{String: string(mode), Valid: true},
	}

	id, err := s.sp.Create(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("create scheduled post: %w", err)
	}

	slog.Info("scheduled post created", "post_id", id, "scheduled_time", storedTime, "post_mode", mode)
	return id, nil
}

func (s *scheduleService) Get(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	record, err := s.sp.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPostNotFound
	}

	scheduledTime, err := utils.ParseStoredTime(record.ScheduledTime)
	if err != nil {
		slog.Warn("scheduled post has unparseable scheduled_time", "post_id", id, "scheduled_time", record.ScheduledTime)
	}

	return decodePost(record, scheduledTime), nil
}

// ListPendingDue returns pending posts whose scheduled instant is not after
// now. A pending post whose scheduled_time cannot be parsed is returned with
// DecodeErr set, so executing it marks it failed. Storage errors yield an
// empty result.
func (s *scheduleService) ListPendingDue(ctx context.Context, now time.Time) []*models.ScheduledPost {
	records, err := s.sp.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		slog.Error("failed to list pending posts", "error", err)
		return nil
	}

	now = now.UTC()
	var due []*models.ScheduledPost
	for _, record := range records {
		scheduledTime, err := utils.ParseStoredTime(record.ScheduledTime)
		if err != nil {
			slog.Error("pending post has unparseable scheduled_time", "post_id", record.ID, "scheduled_time", record.ScheduledTime)
			post := decodePost(record, time.Time{})
			post.DecodeErr = fmt.Errorf("%w: %q", ErrInvalidScheduledTime, record.ScheduledTime)
			due = append(due, post)
			continue
		}
		if scheduledTime.After(now) {
			continue
		}
		due = append(due, decodePost(record, scheduledTime))
	}

	return due
}

// ListAll returns every post, newest schedule first, with scheduled_time in
// the local display zone. Storage errors yield an empty result.
func (s *scheduleService) ListAll(ctx context.Context) []*models.ScheduledPost {
	records, err := s.sp.List(ctx)
	if err != nil {
		slog.Error("failed to list scheduled posts", "error", err)
		return nil
	}

	posts := make([]*models.ScheduledPost, 0, len(records))
	for _, record := range records {
		scheduledTime, err := utils.ParseStoredTime(record.ScheduledTime)
		if err != nil {
			slog.Warn("omitting post with unparseable scheduled_time", "post_id", record.ID, "scheduled_time", record.ScheduledTime)
			continue
		}
		posts = append(posts, decodePost(record, utils.ToLocal(scheduledTime)))
	}

	return posts
}

func (s *scheduleService) SetStatus(ctx context.Context, id int64, status string) {
	found, err := s.sp.UpdateStatus(ctx, id, status)
	if err != nil {
		slog.Error("failed to update post status", "post_id", id, "status", status, "error", err)
		return
	}
	if !found {
		slog.Warn("status update for missing post", "post_id", id, "status", status)
	}
}

func (s *scheduleService) Delete(ctx context.Context, id int64) {
	found, err := s.sp.Remove(ctx, id)
	if err != nil {
		slog.Error("failed to delete scheduled post", "post_id", id, "error", err)
		return
	}
	if !found {
		slog.Info("delete for missing post", "post_id", id)
	}
}

func (s *scheduleService) Reschedule(ctx context.Context, id int64, at time.Time) error {
	found, err := s.sp.UpdateScheduledTime(ctx, id, utils.FormatStoredTime(at))
	if err != nil {
		return err
	}
	if !found {
		return ErrPostNotFound
	}
	return nil
}

// ReferencedMedia returns the media paths of every pending post.
func (s *scheduleService) ReferencedMedia(ctx context.Context) (map[string]struct{}, error) {
	records, err := s.sp.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]struct{})
	for _, record := range records {
		media, err := decodeMediaPaths(record.MediaPaths)
		if err != nil || media == nil {
			continue
		}
		for _, file := range media.Files {
			refs[file] = struct{}{}
		}
	}
	return refs, nil
}

func (s *scheduleService) History(ctx context.Context, id int64) ([]*models.PostingHistory, error) {
	record, err := s.sp.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPostNotFound
	}
	return s.ph.ListByPostID(ctx, id)
}
