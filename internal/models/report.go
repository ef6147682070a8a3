package models

import "time"

type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CheckInStats struct {
	TotalAttendees int64   `json:"total_attendees"`
	CheckedIn      int64   `json:"checked_in"`
	CheckInRate    float64 `json:"check_in_rate"`
}

type DashboardStats struct {
	TotalAttendees       int64          `json:"total_attendees"`
	CheckedInAttendees   int64          `json:"checked_in_attendees"`
	TotalSessions        int64          `json:"total_sessions"`
	TotalFeedback        int64          `json:"total_feedback"`
	OverallFeedbackCount int64          `json:"overall_feedback_count"`
	SessionFeedbackCount int64          `json:"session_feedback_count"`
	AverageRating        float64        `json:"average_rating"`
	FeedbackLast24h      int64          `json:"feedback_last_24h"`
	Distribution         []RatingBucket `json:"distribution"`
	RecentFeedback       []Feedback     `json:"recent_feedback"`
}

// AttendeeRow backs both the paginated attendee list and the CSV export.
type AttendeeRow struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	CheckedIn     bool       `json:"checked_in"`
	FeedbackCount int64      `json:"feedback_count"`
	LastFeedback  *time.Time `json:"last_feedback,omitempty"`
}

type SessionRating struct {
	SessionID     uint    `json:"session_id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int64   `json:"feedback_count"`
}

type FeedbackResults struct {
	OverallAverage      float64         `json:"overall_average"`
	OverallCount        int64           `json:"overall_count"`
	OverallDistribution []RatingBucket  `json:"overall_distribution"`
	SessionAverage      float64         `json:"session_average"`
	SessionCount        int64           `json:"session_count"`
	SessionDistribution []RatingBucket  `json:"session_distribution"`
	TopSessions         []SessionRating `json:"top_sessions"`
}

type AgendaItem struct {
	Session         Session       `json:"session"`
	Status          SessionStatus `json:"status"`
	CanGiveFeedback bool          `json:"can_give_feedback"`
	HasFeedback     bool          `json:"has_feedback"`
}

type SessionDetail struct {
	Session       Session       `json:"session"`
	Status        SessionStatus `json:"status"`
	AverageRating float64       `json:"average_rating"`
	FeedbackCount int64         `json:"feedback_count"`
}

type Eligibility struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

type Page struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type AttendeePage struct {
	Page
	Attendees []AttendeeRow `json:"attendees"`
}
