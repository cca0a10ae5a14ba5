package server

import (
	"io"

	"pinboard/internal/models"
	"pinboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Upload handles POST /upload. It responds with {"url": ...} on success or a
// structured {"error": ...} body: 403 without a session, 400 for a missing or
// unsupported file. The 16 MiB body limit is enforced by the transport.
func (s *Server) Upload(c *fiber.Ctx) error {
	ident, ok := s.identityFromRequest(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Authentication required"))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewNoFileError())
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	url, err := s.uploadService.Upload(c.UserContext(), service.UploadInput{
		Identity: ident,
		Filename: file.Filename,
		Content:  content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"url": url,
	})
}
