package repository

import (
	"context"

	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts feedback. A (user, session) collision surfaces as ErrDuplicateFeedback.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	err := r.db.WithContext(ctx).Omit("User", "Session").Create(feedback).Error
	if isUniqueViolation(err) {
		return ErrDuplicateFeedback
	}
	return err
}

func (r *FeedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	err := r.db.WithContext(ctx).Omit("User", "Session").Save(feedback).Error
	if isUniqueViolation(err) {
		return ErrDuplicateFeedback
	}
	return err
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).Preload("Session").First(&feedback, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &feedback, nil
}

// ExistsForSession reports whether the user rated the session in a row other than excludeID.
func (r *FeedbackRepository) ExistsForSession(ctx context.Context, userID, sessionID, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// ExistsOverall reports whether the user left event feedback in a row other than excludeID.
func (r *FeedbackRepository) ExistsOverall(ctx context.Context, userID, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("user_id = ? AND session_id IS NULL", userID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// RatedSessionIDs returns the set of sessions the user already rated.
func (r *FeedbackRepository) RatedSessionIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("user_id = ? AND session_id IS NOT NULL", userID).
		Pluck("session_id", &ids).Error
	if err != nil {
		return nil, err
	}

	rated := make(map[uint]bool, len(ids))
	for _, id := range ids {
		rated[id] = true
	}
	return rated, nil
}

func (r *FeedbackRepository) SessionSummary(ctx context.Context, sessionID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("session_id = ?", sessionID).
		Scan(&row).Error
	return row.Average, row.Total, err
}
