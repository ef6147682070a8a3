package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/controller"
	"github.com/sefazor/conference-backend/internal/middleware"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
)

type EventHandler struct {
	eventController *controller.EventController
}

func NewEventHandler(eventController *controller.EventController) *EventHandler {
	return &EventHandler{
		eventController: eventController,
	}
}

func (h *EventHandler) GetAgenda(c *fiber.Ctx) error {
	items, err := h.eventController.Agenda(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(items, ""))
}

func (h *EventHandler) GetCurrentSession(c *fiber.Ctx) error {
	session, err := h.eventController.CurrentSession(c.UserContext())
	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(models.SuccessResponse(nil, "No session in progress"))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *EventHandler) GetSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid session ID"))
	}

	detail, err := h.eventController.SessionDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(detail, ""))
}

func (h *EventHandler) GetSessionFeedbackEligibility(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid session ID"))
	}

	eligibility, err := h.eventController.SessionEligibility(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(eligibility, ""))
}

func (h *EventHandler) SubmitSessionFeedback(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid session ID"))
	}

	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	feedback, err := h.eventController.SubmitSessionFeedback(c.UserContext(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(feedback, "Thank you for your feedback"))
}

func (h *EventHandler) GetEventFeedbackEligibility(c *fiber.Ctx) error {
	eligibility, err := h.eventController.EventEligibility(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(eligibility, ""))
}

func (h *EventHandler) SubmitEventFeedback(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	feedback, err := h.eventController.SubmitEventFeedback(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(feedback, "Thank you for your feedback"))
}

func (h *EventHandler) UpdateFeedback(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid feedback ID"))
	}

	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	feedback, err := h.eventController.UpdateFeedback(c.UserContext(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(feedback, "Feedback updated"))
}
