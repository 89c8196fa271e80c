package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/queue"
	"github.com/maheshrc27/crosspost/internal/service"
	"github.com/maheshrc27/crosspost/internal/transfer"
	"github.com/maheshrc27/crosspost/pkg/utils"
)

// CycleRunner runs one scheduler cycle on demand.
type CycleRunner interface {
	RunOnce(ctx context.Context) []int64
}

type ScheduleHandler struct {
	ss       service.ScheduleService
	ds       service.DispatchService
	runner   CycleRunner
	enqueuer queue.Enqueuer
	now      func() time.Time
}

// NewScheduleHandler wires the schedule endpoints. enqueuer may be nil, in
// which case async execution requests run synchronously.
func NewScheduleHandler(ss service.ScheduleService, ds service.DispatchService, runner CycleRunner, enqueuer queue.Enqueuer) *ScheduleHandler {
	return &ScheduleHandler{
		ss:       ss,
		ds:       ds,
		runner:   runner,
		enqueuer: enqueuer,
		now:      time.Now,
	}
}

func (h *ScheduleHandler) SchedulePost(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	id, err := h.ss.Schedule(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingScheduledTime),
			errors.Is(err, service.ErrInvalidScheduledTime),
			errors.Is(err, service.ErrNoPlatformSelected),
			errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrInvalidContent),
			errors.Is(err, service.ErrUnsupportedPlatform):
			return failure(c, fiber.StatusBadRequest, err.Error())
		}
		slog.Error("failed to schedule post", "error", err)
		return failure(c, fiber.StatusInternalServerError, "failed to schedule post")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        "post scheduled",
		"post_id":        id,
		"scheduled_time": req.ScheduledTime,
	})
}

func (h *ScheduleHandler) ListScheduledPosts(c *fiber.Ctx) error {
	posts := h.ss.ListAll(c.Context())
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// DeleteScheduledPost succeeds whether or not the post exists.
func (h *ScheduleHandler) DeleteScheduledPost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	h.ss.Delete(c.Context(), id)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("scheduled post %d deleted", id),
	})
}

// ExecutePost runs a post now regardless of its schedule. With ?async=true
// and a configured queue the execution is handed to a worker instead.
func (h *ScheduleHandler) ExecutePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	if c.QueryBool("async") && h.enqueuer != nil {
		return h.enqueue(c, id)
	}

	result, err := h.ds.ExecuteByID(c.Context(), id)
	if err != nil {
		return executionFailure(c, id, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": result.Success,
		"status":  result.Status,
		"results": result.Results,
	})
}

func (h *ScheduleHandler) enqueue(c *fiber.Ctx, id int64) error {
	if _, err := h.ss.Get(c.Context(), id); err != nil {
		return executionFailure(c, id, err)
	}

	taskID, err := queue.EnqueueExecution(c.Context(), h.enqueuer, queue.ExecutePostPayload{PostID: id})
	if err != nil {
		slog.Error("failed to enqueue execution", "post_id", id, "error", err)
		return failure(c, fiber.StatusInternalServerError, "failed to queue execution")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"queued":  true,
		"task_id": taskID,
	})
}

func executionFailure(c *fiber.Ctx, id int64, err error) error {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		return failure(c, fiber.StatusNotFound, fmt.Sprintf("scheduled post %d not found", id))
	case errors.Is(err, service.ErrExecutionInProgress):
		return failure(c, fiber.StatusConflict, fmt.Sprintf("scheduled post %d is already executing", id))
	}
	slog.Error("failed to execute post", "post_id", id, "error", err)
	return failure(c, fiber.StatusInternalServerError, "failed to execute post")
}

func (h *ScheduleHandler) PostHistory(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	history, err := h.ss.History(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return failure(c, fiber.StatusNotFound, fmt.Sprintf("scheduled post %d not found", id))
		}
		slog.Info(err.Error())
		return failure(c, fiber.StatusInternalServerError, "failed to load posting history")
	}
	if history == nil {
		history = []*models.PostingHistory{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"history": history,
	})
}

// ForceCheckScheduled runs one scheduler cycle immediately.
func (h *ScheduleHandler) ForceCheckScheduled(c *fiber.Ctx) error {
	ids := h.runner.RunOnce(c.Context())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":       true,
		"message":       fmt.Sprintf("checked %d scheduled post(s)", len(ids)),
		"checked_posts": ids,
	})
}

// SetPostNow moves a post's schedule to the current instant.
func (h *ScheduleHandler) SetPostNow(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	now := h.now()
	if err := h.ss.Reschedule(c.Context(), id, now); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return failure(c, fiber.StatusNotFound, fmt.Sprintf("scheduled post %d not found", id))
		}
		slog.Info(err.Error())
		return failure(c, fiber.StatusInternalServerError, "failed to update scheduled time")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("scheduled time of post %d set to %s", id, utils.FormatStoredTime(now)),
	})
}
