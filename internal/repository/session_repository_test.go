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

func TestSessionRepository_ListAndCurrent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	base := testutil.Epoch

	late := testutil.CreateSession(t, db, "Late", base.Add(2*time.Hour), base.Add(3*time.Hour))
	early := testutil.CreateSession(t, db, "Early", base, base.Add(time.Hour))

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, early.ID, sessions[0].ID)
	assert.Equal(t, late.ID, sessions[1].ID)

	others, err := repo.ListExcept(ctx, early.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, late.ID, others[0].ID)

	current, err := repo.Current(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, early.ID, current.ID)

	_, err = repo.Current(ctx, base.Add(90*time.Minute))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_SpeakerDeletionNullifies(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	speaker := testutil.CreateUser(t, db, "speaker@x.com", models.RoleAttendee)

	session := &models.Session{
		Title:     "Talk",
		StartTime: testutil.Epoch,
		EndTime:   testutil.Epoch.Add(time.Hour),
		SpeakerID: &speaker.ID,
	}
	require.NoError(t, repo.Create(ctx, session))
	require.NoError(t, db.Delete(&models.User{}, speaker.ID).Error)

	reloaded, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.SpeakerID)
	assert.Nil(t, reloaded.Speaker)
}

func TestSessionRepository_DeleteMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)

	assert.ErrorIs(t, repo.Delete(context.Background(), 42), ErrNotFound)
}
