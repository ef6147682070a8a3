package repository

import (
	"context"

	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindOrCreateByEmail returns the user owning email, creating it from defaults when absent.
// A concurrent insert of the same email loses on the unique index and re-reads the winner.
func (r *UserRepository) FindOrCreateByEmail(ctx context.Context, email string, defaults models.User) (*models.User, bool, error) {
	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	defaults.Email = email
	if err := r.db.WithContext(ctx).Create(&defaults).Error; err != nil {
		if isUniqueViolation(err) {
			user, err := r.GetByEmail(ctx, email)
			return user, false, err
		}
		return nil, false, err
	}
	return &defaults, true, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// MarkCheckedIn flips checked_in from false to true. It reports false when the
// user was already checked in.
func (r *UserRepository) MarkCheckedIn(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND checked_in = ?", id, false).
		Update("checked_in", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *UserRepository) UpdateFace(ctx context.Context, id uint, encoding []float64, photoKey string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{ID: id}).
		Select("FaceEncoding", "FacePhotoKey").
		Updates(&models.User{FaceEncoding: encoding, FacePhotoKey: photoKey}).Error
}

func (r *UserRepository) ListWithFaceEncoding(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("face_encoding IS NOT NULL").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListSpeakers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("is_speaker = ?", true).Order("name").Find(&users).Error
	return users, err
}
