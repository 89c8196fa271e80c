package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/crosspost/internal/service"
)

type UploadHandler struct {
	us service.UploadService
}

func NewUploadHandler(us service.UploadService) *UploadHandler {
	return &UploadHandler{us: us}
}

// Upload stages files from the files[] field for later posting.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Info(err.Error())
		return failure(c, fiber.StatusBadRequest, "no files were sent")
	}

	files := form.File["files[]"]
	if len(files) == 0 || files[0].Filename == "" {
		return failure(c, fiber.StatusBadRequest, "no files were selected")
	}

	saved, err := h.us.Save(files)
	if err != nil {
		slog.Info(err.Error())
		return failure(c, fiber.StatusBadRequest, "failed to upload files")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("%d file(s) uploaded", len(saved)),
		"files":   saved,
	})
}
