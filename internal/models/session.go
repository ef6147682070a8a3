package models

import "time"

type SessionStatus string

const (
	SessionUpcoming SessionStatus = "upcoming"
	SessionCurrent  SessionStatus = "current"
	SessionPast     SessionStatus = "past"
)

// Session is a conference talk. Status is derived from wall-clock time and never stored.
type Session struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	StartTime   time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time  `json:"end_time" gorm:"not null"`
	SpeakerID   *uint      `json:"speaker_id"`
	Speaker     *User      `json:"speaker,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Feedbacks   []Feedback `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
