package repository

import (
	"context"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Preload("Speaker").First(&session, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Omit("Speaker").Save(session).Error
}

func (r *SessionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Session{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every session in chronological order.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).Preload("Speaker").Order("start_time ASC").Find(&sessions).Error
	return sessions, err
}

// ListExcept returns every session other than excludeID. Zero excludes nothing.
func (r *SessionRepository) ListExcept(ctx context.Context, excludeID uint) ([]models.Session, error) {
	var sessions []models.Session
	query := r.db.WithContext(ctx).Order("start_time ASC")
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// Current returns the first session running at now, or ErrNotFound.
func (r *SessionRepository) Current(ctx context.Context, now time.Time) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("Speaker").
		Where("start_time <= ? AND end_time >= ?", now, now).
		Order("start_time ASC").
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}
