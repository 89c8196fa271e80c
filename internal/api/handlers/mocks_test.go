package handlers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/transfer"
	"github.com/stretchr/testify/mock"
)

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
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockScheduleService) History(ctx context.Context, id int64) ([]*models.PostingHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PostingHistory), args.Error(1)
}

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
	return m.Called(platform).Bool(0)
}

func (m *MockPlatformService) Platforms() map[string]models.PlatformInfo {
	return m.Called().Get(0).(map[string]models.PlatformInfo)
}

type stubRunner struct {
	ids []int64
}

func (s *stubRunner) RunOnce(ctx context.Context) []int64 {
	return s.ids
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}
