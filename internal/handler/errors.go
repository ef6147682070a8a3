package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
)

// respondError writes the JSON error for a known service error. Anything else
// is returned to the app error handler, which logs it and answers 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrorResponse(verr.Errors))
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Access denied"))
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Not found"))
	case errors.Is(err, service.ErrInvalidLoginLink):
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid or expired login link"))
	case errors.Is(err, service.ErrFaceNotRecognized):
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Face not recognized"))
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse("Already checked in"))
	case errors.Is(err, service.ErrFaceUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse("Face recognition is unavailable, please try again later"))
	case errors.Is(err, service.ErrMailUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse("Login emails are delayed, please try again shortly"))
	}
	return err
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
