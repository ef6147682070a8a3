package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/controller"
	"github.com/sefazor/conference-backend/internal/models"
)

type AuthHandler struct {
	authController *controller.AuthController
	cookieName     string
	secureCookie   bool
}

func NewAuthHandler(authController *controller.AuthController, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authController: authController,
		cookieName:     cookieName,
		secureCookie:   secureCookie,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if _, err := h.authController.RequestLogin(c.UserContext(), req, c.IP()); err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Check your email for the login link"))
}

func (h *AuthHandler) MagicLogin(c *fiber.Ctx) error {
	resp, err := h.authController.CompleteLogin(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookie(c, resp)
	return c.JSON(models.SuccessResponse(resp, "Logged in successfully"))
}

func (h *AuthHandler) FaceLogin(c *fiber.Ctx) error {
	var req models.FaceImageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authController.FaceLogin(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookie(c, resp)
	return c.JSON(models.SuccessResponse(resp, "Logged in successfully"))
}

// Logout always succeeds. A still valid session is attributed in the log.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(h.cookieName); token != "" {
		if user, err := h.authController.Authenticate(c.UserContext(), token); err == nil {
			h.authController.Logout(user)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(models.SuccessResponse(nil, "Logged out"))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, resp *models.AuthResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
