package models

import (
	"time"
)

type Role string

const (
	RoleAttendee Role = "attendee"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleAdmin:
		return true
	}
	return false
}

// CanAccessAdmin reports whether the role may use the admin surface.
func (r Role) CanAccessAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"not null"`
	Email        string       `json:"email" gorm:"uniqueIndex;not null"`
	Role         Role         `json:"role" gorm:"type:varchar(20);not null;default:attendee"`
	CheckedIn    bool         `json:"checked_in" gorm:"not null;default:false"`
	IsSpeaker    bool         `json:"is_speaker" gorm:"not null;default:false"`
	FaceEncoding []float64    `json:"-" gorm:"serializer:json"`
	FacePhotoKey string       `json:"-"`
	LoginTokens  []LoginToken `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Feedbacks    []Feedback   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role.CanAccessAdmin()
}

func (u *User) HasFaceEncoding() bool {
	return len(u.FaceEncoding) > 0
}
