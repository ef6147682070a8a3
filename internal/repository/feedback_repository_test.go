package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_UniquePerUserAndSession(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@x.com", models.RoleAttendee)
	s1 := testutil.CreateSession(t, db, "One", testutil.Epoch, testutil.Epoch.Add(time.Hour))
	s2 := testutil.CreateSession(t, db, "Two", testutil.Epoch.Add(time.Hour), testutil.Epoch.Add(2*time.Hour))

	require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: user.ID, SessionID: &s1.ID, Rating: 4}))
	require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: user.ID, SessionID: &s2.ID, Rating: 5}))

	err := repo.Create(ctx, &models.Feedback{UserID: user.ID, SessionID: &s1.ID, Rating: 3})
	assert.ErrorIs(t, err, ErrDuplicateFeedback)

	exists, err := repo.ExistsForSession(ctx, user.ID, s1.ID, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	rated, err := repo.RatedSessionIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{s1.ID: true, s2.ID: true}, rated)
}

func TestFeedbackRepository_OverallIsNotConstrained(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@x.com", models.RoleAttendee)

	first := &models.Feedback{UserID: user.ID, Rating: 4}
	require.NoError(t, repo.Create(ctx, first))

	exists, err := repo.ExistsOverall(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsOverall(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, exists, "a row never conflicts with itself")

	// The storage layer accepts a second overall row; only the service guards it.
	require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: user.ID, Rating: 2}))
}

func TestFeedbackRepository_SessionSummary(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFeedbackRepository(db)
	ctx := context.Background()
	session := testutil.CreateSession(t, db, "One", testutil.Epoch, testutil.Epoch.Add(time.Hour))

	avg, count, err := repo.SessionSummary(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	for i, rating := range []int{2, 4} {
		user := testutil.CreateUser(t, db, []string{"a@x.com", "b@x.com"}[i], models.RoleAttendee)
		require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: user.ID, SessionID: &session.ID, Rating: rating}))
	}

	avg, count, err = repo.SessionSummary(ctx, session.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 0.001)
	assert.Equal(t, int64(2), count)
}

func TestFeedbackRepository_CascadeOnSessionDelete(t *testing.T) {
	db := testutil.NewDB(t)
	feedbackRepo := NewFeedbackRepository(db)
	sessionRepo := NewSessionRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@x.com", models.RoleAttendee)
	session := testutil.CreateSession(t, db, "One", testutil.Epoch, testutil.Epoch.Add(time.Hour))

	fb := &models.Feedback{UserID: user.ID, SessionID: &session.ID, Rating: 5}
	require.NoError(t, feedbackRepo.Create(ctx, fb))
	require.NoError(t, sessionRepo.Delete(ctx, session.ID))

	_, err := feedbackRepo.GetByID(ctx, fb.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
