package repository

import (
	"context"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoginTokenRepository struct {
	db *gorm.DB
}

func NewLoginTokenRepository(db *gorm.DB) *LoginTokenRepository {
	return &LoginTokenRepository{db: db}
}

// ReplaceForUser deletes every token of the user and stores token in one transaction.
// The owning user row is locked so concurrent issuance for the same user serialises.
func (r *LoginTokenRepository) ReplaceForUser(ctx context.Context, token *models.LoginToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&owner, token.UserID).Error; err != nil {
			return notFound(err)
		}

		if err := tx.Where("user_id = ?", token.UserID).Delete(&models.LoginToken{}).Error; err != nil {
			return err
		}

		return tx.Create(token).Error
	})
}

// Consume marks the token used if it is unused and unexpired at now. The
// conditional update is the only writer of used, so at most one caller sees
// consumed == true for a given token.
func (r *LoginTokenRepository) Consume(ctx context.Context, token string, now time.Time) (*models.LoginToken, bool, error) {
	var consumed models.LoginToken
	ok := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LoginToken{}).
			Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
			Update("used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return nil
		}

		ok = true
		return tx.Preload("User").Where("token = ?", token).First(&consumed).Error
	})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &consumed, true, nil
}

func (r *LoginTokenRepository) GetByToken(ctx context.Context, token string) (*models.LoginToken, error) {
	var t models.LoginToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *LoginTokenRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoginToken{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
