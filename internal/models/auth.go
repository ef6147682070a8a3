package models

import "time"

type LoginRequest struct {
	Email        string `json:"email" validate:"max=255"`
	CaptchaToken string `json:"captcha_token"`
}

type FaceImageRequest struct {
	Image string `json:"image" validate:"required,image_base64"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type SessionRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=5000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	SpeakerID   *uint     `json:"speaker_id"`
}
