package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/crosspost/internal/models"
	"github.com/maheshrc27/crosspost/internal/service"
	"github.com/maheshrc27/crosspost/internal/transfer"
)

// PostHandler publishes immediately. Nothing is persisted.
type PostHandler struct {
	ds service.DispatchService
}

func NewPostHandler(ds service.DispatchService) *PostHandler {
	return &PostHandler{ds: ds}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	return h.publish(c, false)
}

func (h *PostHandler) CreatePostWithMedia(c *fiber.Ctx) error {
	return h.publish(c, true)
}

func (h *PostHandler) publish(c *fiber.Ctx, withMedia bool) error {
	var req transfer.PostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return failure(c, fiber.StatusBadRequest, "invalid request body")
	}

	texts, err := selectedTexts(&req)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	var files []string
	if withMedia {
		files = req.MediaFiles
	}

	results := h.ds.Publish(c.Context(), texts, files)

	success := true
	for _, outcome := range results {
		success = success && outcome.Success
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": success,
		"results": results,
	})
}

// selectedTexts resolves the text for every selected platform the same way a
// scheduled post would be resolved.
func selectedTexts(req *transfer.PostRequest) (map[string]string, error) {
	content, err := req.SharedContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidContent, err)
	}

	draft := &models.ScheduledPost{
		Content:   content,
		Platforms: req.Platforms,
		PostMode:  content.Mode,
	}

	texts := map[string]string{}
	for _, name := range req.Platforms.Selected() {
		text, _ := service.ResolveContent(draft, name)
		texts[name] = text
	}
	if len(texts) == 0 {
		return nil, service.ErrNoPlatformSelected
	}
	return texts, nil
}
