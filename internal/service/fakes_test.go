package service

import (
	"context"
	"sort"
	"sync"

	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/stretchr/testify/mock"
)

// memPostRepository is an in-memory ScheduledPostRepository.
type memPostRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.ScheduledPostRecord
	err     error
}

func newMemPostRepository() *memPostRepository {
	return &memPostRepository{records: map[int64]*models.ScheduledPostRecord{}}
}

func (r *memPostRepository) Create(ctx context.Context, post *models.ScheduledPostRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	stored := *post
	stored.ID = r.nextID
	r.records[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memPostRepository) ListByStatus(ctx context.Context, status string) ([]*models.ScheduledPostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.ScheduledPostRecord
	for _, rec := range r.records {
		if rec.Status == status {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPostRepository) List(ctx context.Context) ([]*models.ScheduledPostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.ScheduledPostRecord
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime > out[j].ScheduledTime })
	return out, nil
}

func (r *memPostRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	rec.Status = status
	return true, nil
}

func (r *memPostRepository) UpdateScheduledTime(ctx context.Context, id int64, scheduledTime string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	rec.ScheduledTime = scheduledTime
	return true, nil
}

func (r *memPostRepository) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.records[id]
	delete(r.records, id)
	return ok, nil
}

func (r *memPostRepository) status(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		return rec.Status
	}
	return ""
}

type memHistoryRepository struct {
	mu      sync.Mutex
	entries []*models.PostingHistory
}

func (r *memHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ph
	cp.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, &cp)
	return cp.ID, nil
}

func (r *memHistoryRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PostingHistory
	for _, e := range r.entries {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockPlatformService is a mock of the PlatformService interface.
type MockPlatformService struct {
	mock.Mock
}

func (m *MockPlatformService) Post(ctx context.Context, platform, text string) (string, error) {
	args := m.Called(ctx, platform, text)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformService) PostWithMedia(ctx context.Context, platform, text string, files []string) (string, error) {
	args := m.Called(ctx, platform, text, files)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformService) Enabled(platform string) bool {
	args := m.Called(platform)
	return args.Bool(0)
}

func (m *MockPlatformService) Platforms() map[string]models.PlatformInfo {
	args := m.Called()
	return args.Get(0).(map[string]models.PlatformInfo)
}
