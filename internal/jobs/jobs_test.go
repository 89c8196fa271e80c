package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/service"
	"github.com/maheshrc27/crosspost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockScheduleService is a mock of the ScheduleService interface.
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Schedule(ctx context.Context, req *transfer.ScheduleRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScheduleService) Create(ctx context.Context, content models.Content, platforms models.Platforms, scheduledTime string, media *models.MediaPaths) (int64, error) {
	args := m.Called(ctx, content, platforms, scheduledTime, media)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScheduleService) Get(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledPost), args.Error(1)
}

func (m *MockScheduleService) ListPendingDue(ctx context.Context, now time.Time) []*models.ScheduledPost {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.ScheduledPost)
}

func (m *MockScheduleService) ListAll(ctx context.Context) []*models.ScheduledPost {
	args := m.Called(ctx)
	return args.Get(0).([]*models.ScheduledPost)
}

func (m *MockScheduleService) SetStatus(ctx context.Context, id int64, status string) {
	m.Called(ctx, id, status)
}

func (m *MockScheduleService) Delete(ctx context.Context, id int64) {
	m.Called(ctx, id)
}

func (m *MockScheduleService) Reschedule(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockScheduleService) ReferencedMedia(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockScheduleService) History(ctx context.Context, id int64) ([]*models.PostingHistory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]*models.PostingHistory), args.Error(1)
}

// MockDispatchService is a mock of the DispatchService interface.
type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) Execute(ctx context.Context, post *models.ScheduledPost) (*models.ExecutionResult, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionResult), args.Error(1)
}

func (m *MockDispatchService) ExecuteByID(ctx context.Context, id int64) (*models.ExecutionResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExecutionResult), args.Error(1)
}

func (m *MockDispatchService) Publish(ctx context.Context, texts map[string]string, files []string) map[string]models.Outcome {
	args := m.Called(ctx, texts, files)
	return args.Get(0).(map[string]models.Outcome)
}

func TestPostScheduler_RunOnceIsolatesPosts(t *testing.T) {
	ss := new(MockScheduleService)
	ds := new(MockDispatchService)
	s := NewPostScheduler(ss, ds, time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	panicking := &models.ScheduledPost{ID: 1}
	failing := &models.ScheduledPost{ID: 2}
	busy := &models.ScheduledPost{ID: 3}
	fine := &models.ScheduledPost{ID: 4}

	ss.On("ListPendingDue", mock.Anything, now).Return([]*models.ScheduledPost{panicking, failing, busy, fine})
	ds.On("Execute", mock.Anything, panicking).Panic("boom")
	ds.On("Execute", mock.Anything, failing).Return(nil, errors.New("unexpected"))
	ds.On("Execute", mock.Anything, busy).Return(nil, service.ErrExecutionInProgress)
	ds.On("Execute", mock.Anything, fine).Return(&models.ExecutionResult{PostID: 4, Status: models.PostStatusCompleted}, nil)
	ss.On("SetStatus", mock.Anything, int64(1), models.PostStatusFailed).Return()
	ss.On("SetStatus", mock.Anything, int64(2), models.PostStatusFailed).Return()

	ids := s.RunOnce(context.Background())
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	ds.AssertNumberOfCalls(t, "Execute", 4)
	ss.AssertExpectations(t)
	ss.AssertNotCalled(t, "SetStatus", mock.Anything, int64(3), mock.Anything)
	ss.AssertNotCalled(t, "SetStatus", mock.Anything, int64(4), mock.Anything)
}

func TestPostScheduler_EmptyCycle(t *testing.T) {
	ss := new(MockScheduleService)
	ds := new(MockDispatchService)
	s := NewPostScheduler(ss, ds, time.Hour)

	ss.On("ListPendingDue", mock.Anything, mock.Anything).Return(nil)

	assert.Empty(t, s.RunOnce(context.Background()))
	ds.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

// recordStore is an in-memory ScheduledPostRepository.
type recordStore struct {
	records map[int64]*models.ScheduledPostRecord
}

func (r *recordStore) Create(ctx context.Context, post *models.ScheduledPostRecord) (int64, error) {
	post.ID = int64(len(r.records) + 1)
	r.records[post.ID] = post
	return post.ID, nil
}

func (r *recordStore) GetByID(ctx context.Context, id int64) (*models.ScheduledPostRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (r *recordStore) ListByStatus(ctx context.Context, status string) ([]*models.ScheduledPostRecord, error) {
	var out []*models.ScheduledPostRecord
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *recordStore) List(ctx context.Context) ([]*models.ScheduledPostRecord, error) {
	var out []*models.ScheduledPostRecord
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *recordStore) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	rec, ok := r.records[id]
	if ok {
		rec.Status = status
	}
	return ok, nil
}

func (r *recordStore) UpdateScheduledTime(ctx context.Context, id int64, scheduledTime string) (bool, error) {
	rec, ok := r.records[id]
	if ok {
		rec.ScheduledTime = scheduledTime
	}
	return ok, nil
}

func (r *recordStore) Remove(ctx context.Context, id int64) (bool, error) {
	_, ok := r.records[id]
	delete(r.records, id)
	return ok, nil
}

type historyStore struct {
	entries []*models.PostingHistory
}

func (h *historyStore) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	h.entries = append(h.entries, ph)
	return int64(len(h.entries)), nil
}

func (h *historyStore) ListByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	var out []*models.PostingHistory
	for _, e := range h.entries {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestPostScheduler_UnparseableTimeIsFailed(t *testing.T) {
	store := &recordStore{records: map[int64]*models.ScheduledPostRecord{
		7: {
			ID:            7,
			Content:       `"hello"`,
			Platforms:     `{"x":{"selected":true}}`,
			ScheduledTime: "tomorrow 10am",
			Status:        models.PostStatusPending,
		},
	}}
	history := &historyStore{}
	ss := service.NewScheduleService(store, history)
	ds := service.NewDispatchService(ss, service.NewPlatformService(nil), history, time.Second)
	s := NewPostScheduler(ss, ds, time.Hour)

	assert.Equal(t, []int64{7}, s.RunOnce(context.Background()))
	assert.Equal(t, models.PostStatusFailed, store.records[7].Status)
	assert.Empty(t, history.entries)

	assert.Empty(t, s.RunOnce(context.Background()))
}

func TestPostScheduler_StartStop(t *testing.T) {
	ss := new(MockScheduleService)
	ds := new(MockDispatchService)
	s := NewPostScheduler(ss, ds, 10*time.Millisecond)

	var cycles int32
	ss.On("ListPendingDue", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		atomic.AddInt32(&cycles, 1)
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerRunning)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&cycles) >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())

	after := atomic.LoadInt32(&cycles)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&cycles))

	s.Stop()
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestPostScheduler_StopWaitsForCycle(t *testing.T) {
	ss := new(MockScheduleService)
	ds := new(MockDispatchService)
	s := NewPostScheduler(ss, ds, time.Hour)

	post := &models.ScheduledPost{ID: 7}
	entered := make(chan struct{})
	var finished int32

	ss.On("ListPendingDue", mock.Anything, mock.Anything).Return([]*models.ScheduledPost{post}).Once()
	ds.On("Execute", mock.Anything, post).Return(&models.ExecutionResult{}, nil).Run(func(args mock.Arguments) {
		close(entered)
		ctx := args.Get(0).(context.Context)
		time.Sleep(30 * time.Millisecond)
		assert.NoError(t, ctx.Err())
		atomic.StoreInt32(&finished, 1)
	})

	require.NoError(t, s.Start(context.Background()))
	<-entered
	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func touch(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestMediaCleanupJob_Cleanup(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	touch(t, dir, "old_unreferenced.png", old)
	touch(t, dir, "old_referenced.png", old)
	touch(t, dir, "fresh.png", now)

	ss := new(MockScheduleService)
	ss.On("ReferencedMedia", mock.Anything).Return(map[string]struct{}{
		filepath.Join("uploads", "old_referenced.png"): {},
	}, nil)

	job := NewMediaCleanupJob(ss, dir, 24*time.Hour)
	removed, err := job.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, filepath.Join(dir, "old_unreferenced.png"))
	assert.FileExists(t, filepath.Join(dir, "old_referenced.png"))
	assert.FileExists(t, filepath.Join(dir, "fresh.png"))
}

func TestMediaCleanupJob_KeepsEverythingWhenStoreFails(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "old.png", time.Now().Add(-48*time.Hour))

	ss := new(MockScheduleService)
	ss.On("ReferencedMedia", mock.Anything).Return(nil, errors.New("connection refused"))

	job := NewMediaCleanupJob(ss, dir, time.Hour)
	_, err := job.Cleanup(context.Background())
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "old.png"))

	job.Run()
	assert.FileExists(t, filepath.Join(dir, "old.png"))
}
