package models

import "time"

const (
	MinRating = 1
	MaxRating = 5

	MaxCommentLength = 2000
)

// Feedback rates a session, or the whole event when SessionID is nil.
// (user_id, session_id) is unique; NULL session ids never collide in the index.
type Feedback struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_feedback_user_session"`
	SessionID *uint     `json:"session_id" gorm:"uniqueIndex:idx_feedback_user_session"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_feedback_rating,rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	User      *User     `json:"user,omitempty"`
	Session   *Session  `json:"session,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Feedback) IsOverall() bool {
	return f.SessionID == nil
}

func (Feedback) TableName() string {
	return "feedbacks"
}
