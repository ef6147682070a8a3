package database

import (
	"fmt"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedSession struct {
	title       string
	description string
	start, end  time.Duration
	speaker     string
}

// Seed inserts demo users and sessions. Existing rows are left untouched so it
// can run on every boot.
func Seed(db *gorm.DB, now time.Time, log *zap.Logger) error {
	users := []models.User{
		{Email: "admin@company.com", Name: "Conference Admin", Role: models.RoleAdmin},
		{Email: "john.doe@company.com", Name: "John Doe", Role: models.RoleAttendee, IsSpeaker: true},
		{Email: "jane.smith@company.com", Name: "Jane Smith", Role: models.RoleAttendee, IsSpeaker: true},
		{Email: "mike.wilson@company.com", Name: "Mike Wilson", Role: models.RoleAttendee, IsSpeaker: true},
		{Email: "alice.johnson@company.com", Name: "Alice Johnson", Role: models.RoleAttendee},
		{Email: "bob.brown@company.com", Name: "Bob Brown", Role: models.RoleAttendee},
	}

	byEmail := make(map[string]uint, len(users))
	for _, u := range users {
		user := u
		if err := db.Where(models.User{Email: u.Email}).Attrs(u).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		byEmail[u.Email] = user.ID
	}

	sessions := []seedSession{
		{
			title:       "Welcome & Opening Keynote",
			description: "The official opening: the latest trends in software development and what to expect from the day.",
			start:       -3 * time.Hour,
			end:         -2 * time.Hour,
			speaker:     "john.doe@company.com",
		},
		{
			title:       "Building Scalable APIs",
			description: "Performance, caching strategies, database design and API versioning used in production systems.",
			start:       -2 * time.Hour,
			end:         -1 * time.Hour,
			speaker:     "jane.smith@company.com",
		},
		{
			title:       "Modern Frontend Development",
			description: "Server rendered interactivity and how it keeps modern web applications fast.",
			start:       -30 * time.Minute,
			end:         30 * time.Minute,
			speaker:     "mike.wilson@company.com",
		},
		{
			title:       "Database Performance & Optimization",
			description: "PostgreSQL query analysis, indexing strategies and monitoring tools.",
			start:       1 * time.Hour,
			end:         2 * time.Hour,
			speaker:     "john.doe@company.com",
		},
		{
			title:       "Closing Remarks & Networking",
			description: "Key takeaways, upcoming initiatives and time to connect with fellow developers.",
			start:       3 * time.Hour,
			end:         4 * time.Hour,
			speaker:     "jane.smith@company.com",
		},
	}

	for _, s := range sessions {
		speakerID := byEmail[s.speaker]
		session := models.Session{
			Title:       s.title,
			Description: s.description,
			StartTime:   now.Add(s.start),
			EndTime:     now.Add(s.end),
			SpeakerID:   &speakerID,
		}
		var existing models.Session
		if err := db.Where(models.Session{Title: s.title}).Attrs(session).FirstOrCreate(&existing).Error; err != nil {
			return fmt.Errorf("seed session %q: %w", s.title, err)
		}
	}

	log.Info("Seeded database",
		zap.Int("users", len(users)),
		zap.Int("sessions", len(sessions)),
	)
	return nil
}
