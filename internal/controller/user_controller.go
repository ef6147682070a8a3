package controller

import (
	"context"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/pkg/utils"
)

type UserController struct {
	userService *service.UserService
	faceService *service.FaceService
	validator   *utils.Validator
}

func NewUserController(userService *service.UserService, faceService *service.FaceService, validator *utils.Validator) *UserController {
	return &UserController{
		userService: userService,
		faceService: faceService,
		validator:   validator,
	}
}

func (c *UserController) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return c.userService.GetProfile(ctx, userID)
}

func (c *UserController) EnrollFace(ctx context.Context, userID uint, req models.FaceImageRequest) (*models.User, error) {
	if err := validate(c.validator, req); err != nil {
		return nil, err
	}
	return c.faceService.Enroll(ctx, userID, req.Image)
}

func (c *UserController) CheckIn(ctx context.Context, userID uint) (*models.User, error) {
	return c.userService.CheckIn(ctx, userID)
}

func (c *UserController) CheckInStats(ctx context.Context) (*models.CheckInStats, error) {
	return c.userService.CheckInStats(ctx)
}
