package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/conference-backend/internal/handler"
	"github.com/sefazor/conference-backend/internal/metrics"
	"github.com/sefazor/conference-backend/internal/middleware"
	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	Event *handler.EventHandler
	Admin *handler.AdminHandler
}

// Setup registers every route. auth must populate the current user.
func Setup(app *fiber.App, db *gorm.DB, h Handlers, auth fiber.Handler) {
	app.Get("/health", healthCheck(db))
	app.Get("/metrics", metrics.PrometheusHandler())

	api := app.Group("/api")

	// Public routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Get("/magic-login/:token", h.Auth.MagicLogin)
	authRoutes.Post("/face-login", h.Auth.FaceLogin)
	authRoutes.Post("/logout", h.Auth.Logout)

	// Protected routes
	protected := api.Group("", auth)
	protected.Get("/me", h.User.GetMyProfile)
	protected.Post("/me/face", h.User.EnrollFace)
	protected.Post("/check-in", h.User.CheckIn)
	protected.Get("/check-in/stats", h.User.CheckInStats)

	protected.Get("/agenda", h.Event.GetAgenda)
	protected.Get("/sessions/current", h.Event.GetCurrentSession)
	protected.Get("/sessions/:id", h.Event.GetSession)
	protected.Get("/sessions/:id/feedback/eligibility", h.Event.GetSessionFeedbackEligibility)
	protected.Post("/sessions/:id/feedback", h.Event.SubmitSessionFeedback)
	protected.Get("/feedback/event/eligibility", h.Event.GetEventFeedbackEligibility)
	protected.Post("/feedback/event", h.Event.SubmitEventFeedback)
	protected.Put("/feedback/:id", h.Event.UpdateFeedback)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/dashboard", h.Admin.GetDashboard)
	admin.Get("/attendees", h.Admin.GetAttendees)
	admin.Get("/attendees/export", h.Admin.ExportAttendees)
	admin.Get("/feedback", h.Admin.GetFeedbackResults)
	admin.Get("/sessions", h.Admin.ListSessions)
	admin.Post("/sessions", h.Admin.CreateSession)
	admin.Put("/sessions/:id", h.Admin.UpdateSession)
	admin.Delete("/sessions/:id", h.Admin.DeleteSession)
	admin.Get("/check-in-qr", h.Admin.GetCheckInQR)
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse("database unavailable"))
		}
		return c.JSON(models.SuccessResponse(fiber.Map{"status": "ok"}, ""))
	}
}
