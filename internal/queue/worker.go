package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/crosspost/internal/service"
)

func (q *Queue) HandleExecutePostTask(ctx context.Context, task *asynq.Task) error {
	var payload ExecutePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	result, err := q.ds.ExecuteByID(ctx, payload.PostID)
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		slog.Warn("queued post no longer exists", "post_id", payload.PostID)
		return nil
	case errors.Is(err, service.ErrExecutionInProgress):
		slog.Info("queued post is already executing", "post_id", payload.PostID)
		return nil
	case err != nil:
		return err
	}

	slog.Info("queued execution finished", "post_id", payload.PostID, "status", result.Status)
	return nil
}

// NewServeMux registers the task handlers of q.
func (q *Queue) NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeExecutePost, q.HandleExecutePostTask)
	return mux
}
