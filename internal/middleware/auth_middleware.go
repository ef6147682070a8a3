package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
	jwtPkg "github.com/sefazor/conference-backend/pkg/jwt"
)

const (
	localUser   = "user"
	localUserID = "userID"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionToken string) (*models.User, error)
}

// AuthMiddleware accepts the session token from a Bearer header or from the
// session cookie and loads the user into the request locals.
func AuthMiddleware(auth Authenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authentication required"))
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, jwtPkg.ErrInvalidToken) || errors.Is(err, service.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid or expired session"))
			}
			return err
		}

		c.Locals(localUser, user)
		c.Locals(localUserID, user.ID)
		return c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.Role.CanAccessAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Access denied"))
		}
		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx, cookieName string) string {
	const bearerPrefix = "Bearer "
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return c.Cookies(cookieName)
}

// CurrentUser returns the authenticated user, or nil outside AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}
