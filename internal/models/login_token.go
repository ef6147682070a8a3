package models

import "time"

// LoginToken is a single use magic link credential.
type LoginToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null;size:64"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"-"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid is true while the token is unused and now is before expiry.
func (t *LoginToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
