package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client used to submit tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueExecution submits a forced execution of a scheduled post. The task
// is not retried; a failed execution is recorded on the post itself.
func EnqueueExecution(ctx context.Context, client Enqueuer, payload ExecutePostPayload) (string, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypeExecutePost, taskPayload, asynq.MaxRetry(0))

	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return "", err
	}

	slog.Info("execution task enqueued", "post_id", payload.PostID, "task_id", info.ID)
	return info.ID, nil
}
