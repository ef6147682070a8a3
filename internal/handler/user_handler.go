package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/controller"
	"github.com/sefazor/conference-backend/internal/middleware"
	"github.com/sefazor/conference-backend/internal/models"
)

type UserHandler struct {
	userController *controller.UserController
}

func NewUserHandler(userController *controller.UserController) *UserHandler {
	return &UserHandler{
		userController: userController,
	}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	user, err := h.userController.GetProfile(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, ""))
}

func (h *UserHandler) EnrollFace(c *fiber.Ctx) error {
	var req models.FaceImageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.userController.EnrollFace(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, "Face registered successfully"))
}

func (h *UserHandler) CheckIn(c *fiber.Ctx) error {
	user, err := h.userController.CheckIn(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, "Checked in successfully"))
}

func (h *UserHandler) CheckInStats(c *fiber.Ctx) error {
	stats, err := h.userController.CheckInStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(stats, ""))
}
