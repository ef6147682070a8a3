package service

import (
	"errors"
	"strings"

	"github.com/sefazor/conference-backend/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidLoginLink  = errors.New("invalid or expired login link")
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrFaceNotRecognized = errors.New("face not recognized")
	ErrFaceUnavailable   = errors.New("face recognition unavailable")
	ErrMailUnavailable   = errors.New("login mail unavailable")
)

// ValidationError carries every rule violation found for one candidate.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + " " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation carries msg.
func (e *ValidationError) Has(msg string) bool {
	for _, fe := range e.Errors {
		if fe.Message == msg {
			return true
		}
	}
	return false
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Errors: []models.FieldError{{Field: field, Message: msg}}}
}
