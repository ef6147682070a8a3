package repository

import (
	"context"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
)

// FeedbackScope selects which feedback rows an aggregate covers.
type FeedbackScope int

const (
	ScopeAll FeedbackScope = iota
	ScopeOverall
	ScopeSession
)

type RatingCount struct {
	Rating int
	Count  int64
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) scoped(ctx context.Context, scope FeedbackScope) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Feedback{})
	switch scope {
	case ScopeOverall:
		query = query.Where("session_id IS NULL")
	case ScopeSession:
		query = query.Where("session_id IS NOT NULL")
	}
	return query
}

func (r *ReportRepository) CountAttendees(ctx context.Context, checkedInOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAttendee)
	if checkedInOnly {
		query = query.Where("checked_in = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountUsers counts every account regardless of role.
func (r *ReportRepository) CountUsers(ctx context.Context, checkedInOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{})
	if checkedInOnly {
		query = query.Where("checked_in = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *ReportRepository) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).Count(&count).Error
	return count, err
}

func (r *ReportRepository) CountFeedback(ctx context.Context, scope FeedbackScope) (int64, error) {
	var count int64
	err := r.scoped(ctx, scope).Count(&count).Error
	return count, err
}

func (r *ReportRepository) AverageRating(ctx context.Context, scope FeedbackScope) (float64, error) {
	var avg float64
	err := r.scoped(ctx, scope).Select("COALESCE(AVG(rating), 0)").Scan(&avg).Error
	return avg, err
}

func (r *ReportRepository) RatingCounts(ctx context.Context, scope FeedbackScope) ([]RatingCount, error) {
	var rows []RatingCount
	err := r.scoped(ctx, scope).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) RecentFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	var feedback []models.Feedback
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Session").
		Order("created_at DESC").
		Limit(limit).
		Find(&feedback).Error
	return feedback, err
}

// TopSessions ranks sessions with at least one rating by average rating.
func (r *ReportRepository) TopSessions(ctx context.Context, limit int) ([]models.SessionRating, error) {
	var rows []models.SessionRating
	err := r.db.WithContext(ctx).
		Table("sessions").
		Select("sessions.id AS session_id, sessions.title AS title, AVG(feedbacks.rating) AS average_rating, COUNT(feedbacks.id) AS feedback_count").
		Joins("JOIN feedbacks ON feedbacks.session_id = sessions.id").
		Group("sessions.id, sessions.title").
		Order("average_rating DESC, feedback_count DESC, sessions.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Attendees returns a page of attendees ordered by name. pageSize <= 0 returns all rows.
func (r *ReportRepository) Attendees(ctx context.Context, page, pageSize int) ([]models.AttendeeRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAttendee)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	query := r.db.WithContext(ctx).Where("role = ?", models.RoleAttendee).Order("name ASC, id ASC")
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]models.AttendeeRow, len(users))
	ids := make([]uint, len(users))
	index := make(map[uint]int, len(users))
	for i, u := range users {
		rows[i] = models.AttendeeRow{ID: u.ID, Name: u.Name, Email: u.Email, CheckedIn: u.CheckedIn}
		ids[i] = u.ID
		index[u.ID] = i
	}
	if len(ids) == 0 {
		return rows, total, nil
	}

	var feedback []models.Feedback
	if err := r.db.WithContext(ctx).
		Select("id", "user_id", "created_at").
		Where("user_id IN ?", ids).
		Find(&feedback).Error; err != nil {
		return nil, 0, err
	}

	for _, f := range feedback {
		row := &rows[index[f.UserID]]
		row.FeedbackCount++
		if row.LastFeedback == nil || f.CreatedAt.After(*row.LastFeedback) {
			created := f.CreatedAt
			row.LastFeedback = &created
		}
	}

	return rows, total, nil
}

// CountFeedbackSince is used by the dashboard to show recent activity.
func (r *ReportRepository) CountFeedbackSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
