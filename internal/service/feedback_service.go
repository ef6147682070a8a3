package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sefazor/conference-backend/internal/metrics"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	MsgRatingRange      = "must be between 1 and 5"
	MsgSessionNotEnded  = "feedback only after session ends"
	MsgDuplicateSession = "already provided feedback for this session"
	MsgDuplicateOverall = "already provided overall event feedback"
	feedbackKindSession = "session"
	feedbackKindOverall = "overall"
)

var msgCommentTooLong = fmt.Sprintf("must be at most %d characters", models.MaxCommentLength)

// feedbackCandidate is a feedback row about to be written, with its session loaded.
type feedbackCandidate struct {
	feedback *models.Feedback
	session  *models.Session
}

// feedbackRule returns a violation, or nil when the candidate passes.
type feedbackRule func(ctx context.Context, c *feedbackCandidate) (*models.FieldError, error)

type FeedbackService struct {
	feedback *repository.FeedbackRepository
	sessions *repository.SessionRepository
	clock    Clock
	log      *zap.Logger
	rules    []feedbackRule
}

func NewFeedbackService(
	feedback *repository.FeedbackRepository,
	sessions *repository.SessionRepository,
	clock Clock,
	log *zap.Logger,
) *FeedbackService {
	s := &FeedbackService{
		feedback: feedback,
		sessions: sessions,
		clock:    clock,
		log:      log,
	}
	s.rules = []feedbackRule{
		s.ratingInRange,
		s.commentLength,
		s.sessionHasEnded,
		s.uniquePerSession,
		s.uniqueOverall,
	}
	return s
}

// validate runs every rule and collects all violations.
func (s *FeedbackService) validate(ctx context.Context, c *feedbackCandidate) error {
	var errs []models.FieldError
	for _, rule := range s.rules {
		fe, err := rule(ctx, c)
		if err != nil {
			return err
		}
		if fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (s *FeedbackService) ratingInRange(_ context.Context, c *feedbackCandidate) (*models.FieldError, error) {
	if c.feedback.Rating < models.MinRating || c.feedback.Rating > models.MaxRating {
		return &models.FieldError{Field: "rating", Message: MsgRatingRange}, nil
	}
	return nil, nil
}

func (s *FeedbackService) commentLength(_ context.Context, c *feedbackCandidate) (*models.FieldError, error) {
	if utf8.RuneCountInString(c.feedback.Comment) > models.MaxCommentLength {
		return &models.FieldError{Field: "comment", Message: msgCommentTooLong}, nil
	}
	return nil, nil
}

func (s *FeedbackService) sessionHasEnded(_ context.Context, c *feedbackCandidate) (*models.FieldError, error) {
	if c.session == nil {
		return nil, nil
	}
	if !CanReceiveFeedback(c.session, s.clock.Now()) {
		return &models.FieldError{Field: "session", Message: MsgSessionNotEnded}, nil
	}
	return nil, nil
}

func (s *FeedbackService) uniquePerSession(ctx context.Context, c *feedbackCandidate) (*models.FieldError, error) {
	if c.feedback.SessionID == nil {
		return nil, nil
	}
	exists, err := s.feedback.ExistsForSession(ctx, c.feedback.UserID, *c.feedback.SessionID, c.feedback.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &models.FieldError{Field: "session", Message: MsgDuplicateSession}, nil
	}
	return nil, nil
}

// uniqueOverall is an existence check only. Two concurrent submissions by the
// same user can both pass it; there is no storage constraint behind it.
func (s *FeedbackService) uniqueOverall(ctx context.Context, c *feedbackCandidate) (*models.FieldError, error) {
	if c.feedback.SessionID != nil {
		return nil, nil
	}
	exists, err := s.feedback.ExistsOverall(ctx, c.feedback.UserID, c.feedback.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &models.FieldError{Field: "base", Message: MsgDuplicateOverall}, nil
	}
	return nil, nil
}

// SubmitSessionFeedback rates a session on behalf of userID.
func (s *FeedbackService) SubmitSessionFeedback(ctx context.Context, userID, sessionID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	fb := &models.Feedback{
		UserID:    userID,
		SessionID: &session.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	return s.create(ctx, &feedbackCandidate{feedback: fb, session: session}, feedbackKindSession)
}

// SubmitEventFeedback stores the user's overall conference rating.
func (s *FeedbackService) SubmitEventFeedback(ctx context.Context, userID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	fb := &models.Feedback{
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	return s.create(ctx, &feedbackCandidate{feedback: fb}, feedbackKindOverall)
}

// UpdateFeedback edits a feedback row owned by userID in place.
func (s *FeedbackService) UpdateFeedback(ctx context.Context, userID, feedbackID uint, req models.FeedbackRequest) (*models.Feedback, error) {
	fb, err := s.feedback.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if fb.UserID != userID {
		return nil, ErrForbidden
	}

	fb.Rating = req.Rating
	fb.Comment = req.Comment
	candidate := &feedbackCandidate{feedback: fb, session: fb.Session}
	fb.Session = nil

	kind := kindOf(fb)
	if err := s.validate(ctx, candidate); err != nil {
		metrics.RecordFeedbackSubmission(kind, "rejected")
		return nil, err
	}
	if err := s.feedback.Update(ctx, fb); err != nil {
		return nil, s.storageError(err, kind)
	}

	metrics.RecordFeedbackSubmission(kind, "updated")
	return fb, nil
}

func (s *FeedbackService) create(ctx context.Context, c *feedbackCandidate, kind string) (*models.Feedback, error) {
	if err := s.validate(ctx, c); err != nil {
		metrics.RecordFeedbackSubmission(kind, "rejected")
		return nil, err
	}

	if err := s.feedback.Create(ctx, c.feedback); err != nil {
		return nil, s.storageError(err, kind)
	}

	metrics.RecordFeedbackSubmission(kind, "accepted")
	s.log.Info("Stored feedback",
		zap.Uint("feedback_id", c.feedback.ID),
		zap.Uint("user_id", c.feedback.UserID),
		zap.String("kind", kind),
	)
	return c.feedback, nil
}

// storageError turns a (user, session) constraint hit into the same validation
// error the pre-check would have produced.
func (s *FeedbackService) storageError(err error, kind string) error {
	if errors.Is(err, repository.ErrDuplicateFeedback) {
		metrics.RecordFeedbackSubmission(kind, "rejected")
		s.log.Warn("Duplicate feedback caught by unique index", zap.String("kind", kind))
		return newValidationError("session", MsgDuplicateSession)
	}
	return err
}

// SessionEligibility explains whether userID may rate sessionID now.
func (s *FeedbackService) SessionEligibility(ctx context.Context, userID, sessionID uint) (*models.Eligibility, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return s.eligibility(ctx, &feedbackCandidate{
		feedback: &models.Feedback{UserID: userID, SessionID: &session.ID, Rating: models.MaxRating},
		session:  session,
	})
}

func (s *FeedbackService) EventEligibility(ctx context.Context, userID uint) (*models.Eligibility, error) {
	return s.eligibility(ctx, &feedbackCandidate{
		feedback: &models.Feedback{UserID: userID, Rating: models.MaxRating},
	})
}

func (s *FeedbackService) eligibility(ctx context.Context, c *feedbackCandidate) (*models.Eligibility, error) {
	err := s.validate(ctx, c)
	if err == nil {
		return &models.Eligibility{Allowed: true}, nil
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	reasons := make([]string, len(verr.Errors))
	for i, fe := range verr.Errors {
		reasons[i] = fe.Message
	}
	return &models.Eligibility{Allowed: false, Reasons: reasons}, nil
}

func kindOf(fb *models.Feedback) string {
	if fb.IsOverall() {
		return feedbackKindOverall
	}
	return feedbackKindSession
}
