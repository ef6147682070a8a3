package service

import (
	"context"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	users   *repository.UserRepository
	reports *repository.ReportRepository
	log     *zap.Logger
}

func NewUserService(users *repository.UserRepository, reports *repository.ReportRepository, log *zap.Logger) *UserService {
	return &UserService{
		users:   users,
		reports: reports,
		log:     log,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

// CheckIn marks the user as present. It succeeds once per user.
func (s *UserService) CheckIn(ctx context.Context, userID uint) (*models.User, error) {
	flipped, err := s.users.MarkCheckedIn(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !flipped {
		return nil, ErrAlreadyCheckedIn
	}

	s.log.Info("User checked in", zap.Uint("user_id", userID))
	return user, nil
}

func (s *UserService) CheckInStats(ctx context.Context) (*models.CheckInStats, error) {
	total, err := s.reports.CountUsers(ctx, false)
	if err != nil {
		return nil, err
	}
	checkedIn, err := s.reports.CountUsers(ctx, true)
	if err != nil {
		return nil, err
	}

	return &models.CheckInStats{
		TotalAttendees: total,
		CheckedIn:      checkedIn,
		CheckInRate:    percentage(checkedIn, total),
	}, nil
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return roundTo(float64(part)*100/float64(total), 1)
}
