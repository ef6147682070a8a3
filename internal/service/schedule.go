package service

import (
	"context"
	"errors"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	msgEndAfterStart = "must be after start time"
	msgOverlap       = "overlaps with another session"
)

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. Touching intervals do not.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ValidateSchedule checks the candidate's window against others, which must
// not contain the candidate itself.
func ValidateSchedule(candidate *models.Session, others []models.Session) []models.FieldError {
	var errs []models.FieldError

	if !candidate.EndTime.After(candidate.StartTime) {
		errs = append(errs, models.FieldError{Field: "end_time", Message: msgEndAfterStart})
		return errs
	}

	for _, other := range others {
		if other.ID != 0 && other.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			errs = append(errs, models.FieldError{Field: "start_time", Message: msgOverlap})
			break
		}
	}
	return errs
}

// Classify derives the session status at now. Both boundaries count as current.
func Classify(session *models.Session, now time.Time) models.SessionStatus {
	switch {
	case session.StartTime.After(now):
		return models.SessionUpcoming
	case session.EndTime.Before(now):
		return models.SessionPast
	default:
		return models.SessionCurrent
	}
}

// CanReceiveFeedback is true once the session has strictly ended.
func CanReceiveFeedback(session *models.Session, now time.Time) bool {
	return session.EndTime.Before(now)
}

type ScheduleService struct {
	sessions *repository.SessionRepository
	users    *repository.UserRepository
	feedback *repository.FeedbackRepository
	clock    Clock
	log      *zap.Logger
}

func NewScheduleService(
	sessions *repository.SessionRepository,
	users *repository.UserRepository,
	feedback *repository.FeedbackRepository,
	clock Clock,
	log *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		sessions: sessions,
		users:    users,
		feedback: feedback,
		clock:    clock,
		log:      log,
	}
}

func (s *ScheduleService) CreateSession(ctx context.Context, req models.SessionRequest) (*models.Session, error) {
	session := &models.Session{}
	applySessionRequest(session, req)

	if err := s.validate(ctx, session); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("Created session", zap.Uint("session_id", session.ID), zap.String("title", session.Title))
	return s.sessions.GetByID(ctx, session.ID)
}

func (s *ScheduleService) UpdateSession(ctx context.Context, id uint, req models.SessionRequest) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	applySessionRequest(session, req)

	if err := s.validate(ctx, session); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("Updated session", zap.Uint("session_id", session.ID))
	return s.sessions.GetByID(ctx, session.ID)
}

func (s *ScheduleService) DeleteSession(ctx context.Context, id uint) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.log.Info("Deleted session", zap.Uint("session_id", id))
	return nil
}

func (s *ScheduleService) validate(ctx context.Context, session *models.Session) error {
	var errs []models.FieldError

	if session.SpeakerID != nil {
		if _, err := s.users.GetByID(ctx, *session.SpeakerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			errs = append(errs, models.FieldError{Field: "speaker_id", Message: "does not exist"})
		}
	}

	others, err := s.sessions.ListExcept(ctx, session.ID)
	if err != nil {
		return err
	}
	errs = append(errs, ValidateSchedule(session, others)...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (s *ScheduleService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.sessions.List(ctx)
}

// Agenda lists every session with its status and the user's feedback state.
func (s *ScheduleService) Agenda(ctx context.Context, userID uint) ([]models.AgendaItem, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	rated, err := s.feedback.RatedSessionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]models.AgendaItem, len(sessions))
	for i := range sessions {
		items[i] = models.AgendaItem{
			Session:         sessions[i],
			Status:          Classify(&sessions[i], now),
			CanGiveFeedback: CanReceiveFeedback(&sessions[i], now) && !rated[sessions[i].ID],
			HasFeedback:     rated[sessions[i].ID],
		}
	}
	return items, nil
}

func (s *ScheduleService) Current(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.Current(ctx, s.clock.Now())
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return session, nil
}

func (s *ScheduleService) Detail(ctx context.Context, id uint) (*models.SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	avg, count, err := s.feedback.SessionSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.SessionDetail{
		Session:       *session,
		Status:        Classify(session, s.clock.Now()),
		AverageRating: avg,
		FeedbackCount: count,
	}, nil
}

func applySessionRequest(session *models.Session, req models.SessionRequest) {
	session.Title = req.Title
	session.Description = req.Description
	session.StartTime = req.StartTime.UTC()
	session.EndTime = req.EndTime.UTC()
	session.SpeakerID = req.SpeakerID
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
