package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/controller"
	"github.com/sefazor/conference-backend/internal/models"
)

type AdminHandler struct {
	adminController *controller.AdminController
}

func NewAdminHandler(adminController *controller.AdminController) *AdminHandler {
	return &AdminHandler{
		adminController: adminController,
	}
}

func (h *AdminHandler) GetDashboard(c *fiber.Ctx) error {
	stats, err := h.adminController.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(stats, ""))
}

func (h *AdminHandler) GetAttendees(c *fiber.Ctx) error {
	page, err := h.adminController.Attendees(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *AdminHandler) ExportAttendees(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.adminController.ExportAttendees(c.UserContext(), &buf); err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("attendees-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func (h *AdminHandler) GetFeedbackResults(c *fiber.Ctx) error {
	results, err := h.adminController.FeedbackResults(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(results, ""))
}

func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.adminController.ListSessions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(sessions, ""))
}

func (h *AdminHandler) CreateSession(c *fiber.Ctx) error {
	var req models.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	session, err := h.adminController.CreateSession(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(session, "Session created successfully"))
}

func (h *AdminHandler) UpdateSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid session ID"))
	}

	var req models.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	session, err := h.adminController.UpdateSession(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, "Session updated successfully"))
}

func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid session ID"))
	}

	if err := h.adminController.DeleteSession(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Session deleted successfully"))
}

func (h *AdminHandler) GetCheckInQR(c *fiber.Ctx) error {
	png, err := h.adminController.CheckInQR(c.QueryInt("size", 0))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
