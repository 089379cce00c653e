package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// allowedExtensions mirrors the media kinds the client may attach.
var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp3": true, ".wav": true, ".ogg": true, ".webm": true, ".mp4": true,
}

// Upload POST /api/upload — stores the blob locally and returns the URL the
// client then attaches to a privateMessage as fileUrl.
func (a *API) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, "No file provided")
	}
	if file.Size > a.Cfg.MaxUploadBytes {
		return errJSON(c, fiber.StatusRequestEntityTooLarge, "File too large")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return errJSON(c, fiber.StatusBadRequest, "File type not allowed")
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(a.Cfg.UploadDir, name)); err != nil {
		a.Log.Error("save upload", "err", err)
		return errJSON(c, fiber.StatusInternalServerError, "Upload failed")
	}
	return c.JSON(fiber.Map{"url": "/uploads/" + name})
}
