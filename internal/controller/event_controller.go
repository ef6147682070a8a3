package controller

import (
	"context"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
)

// EventController serves the attendee side of the conference: agenda,
// sessions and feedback. Feedback input is checked by the feedback rules so
// every violation is reported together.
type EventController struct {
	scheduleService *service.ScheduleService
	feedbackService *service.FeedbackService
}

func NewEventController(scheduleService *service.ScheduleService, feedbackService *service.FeedbackService) *EventController {
	return &EventController{
		scheduleService: scheduleService,
		feedbackService: feedbackService,
	}
}

func (c *EventController) Agenda(ctx context.Context, userID uint) ([]models.AgendaItem, error) {
	return c.scheduleService.Agenda(ctx, userID)
}

func (c *EventController) CurrentSession(ctx context.Context) (*models.Session, error) {
	return c.scheduleService.Current(ctx)
}

func (c *EventController) SessionDetail(ctx context.Context, sessionID uint) (*models.SessionDetail, error) {
	return c.scheduleService.Detail(ctx, sessionID)
}

func (c *EventController) SubmitSessionFeedback(ctx context.Context, userID, sessionID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	return c.feedbackService.SubmitSessionFeedback(ctx, userID, sessionID, req)
}

func (c *EventController) SubmitEventFeedback(ctx context.Context, userID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	return c.feedbackService.SubmitEventFeedback(ctx, userID, req)
}

func (c *EventController) UpdateFeedback(ctx context.Context, userID, feedbackID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	return c.feedbackService.UpdateFeedback(ctx, userID, feedbackID, req)
}

func (c *EventController) SessionEligibility(ctx context.Context, userID, sessionID uint) (*models.Eligibility, error) {
	return c.feedbackService.SessionEligibility(ctx, userID, sessionID)
}

func (c *EventController) EventEligibility(ctx context.Context, userID uint) (*models.Eligibility, error) {
	return c.feedbackService.EventEligibility(ctx, userID)
}
