package controller

import (
	"context"
	"fmt"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/pkg/utils"
)

// CaptchaVerifier checks a bot challenge token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// AuthController drives the login flows: magic link request and redemption,
// face login and logout.
type AuthController struct {
	authService *service.AuthService
	faceService *service.FaceService
	captcha     CaptchaVerifier
	validator   *utils.Validator
}

func NewAuthController(
	authService *service.AuthService,
	faceService *service.FaceService,
	captcha CaptchaVerifier,
	validator *utils.Validator,
) *AuthController {
	return &AuthController{
		authService: authService,
		faceService: faceService,
		captcha:     captcha,
		validator:   validator,
	}
}

func (c *AuthController) RequestLogin(ctx context.Context, req models.LoginRequest, remoteIP string) (*models.User, error) {
	if err := validate(c.validator, req); err != nil {
		return nil, err
	}

	ok, err := c.captcha.Verify(ctx, req.CaptchaToken, remoteIP)
	if err != nil {
		return nil, fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return nil, &service.ValidationError{Errors: []models.FieldError{{Field: "captcha_token", Message: "verification failed"}}}
	}

	return c.authService.RequestLogin(ctx, req.Email)
}

func (c *AuthController) CompleteLogin(ctx context.Context, token string) (*models.AuthResponse, error) {
	return c.authService.CompleteLogin(ctx, token)
}

func (c *AuthController) FaceLogin(ctx context.Context, req models.FaceImageRequest) (*models.AuthResponse, error) {
	if err := validate(c.validator, req); err != nil {
		return nil, err
	}
	return c.faceService.Login(ctx, req.Image)
}

func (c *AuthController) Authenticate(ctx context.Context, sessionToken string) (*models.User, error) {
	return c.authService.Authenticate(ctx, sessionToken)
}

func (c *AuthController) Logout(user *models.User) {
	c.authService.Logout(user)
}
