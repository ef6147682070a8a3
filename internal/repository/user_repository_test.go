package repository

import (
	"context"
	"testing"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindOrCreateByEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, created, err := repo.FindOrCreateByEmail(ctx, "a@x.com", models.User{Name: "A", Role: models.RoleAttendee})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, user.ID)

	again, created, err := repo.FindOrCreateByEmail(ctx, "a@x.com", models.User{Name: "Other", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "A", again.Name)
}

func TestUserRepository_MarkCheckedIn(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@x.com", models.RoleAttendee)

	flipped, err := repo.MarkCheckedIn(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkCheckedIn(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestUserRepository_FaceEncoding(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	enrolled := testutil.CreateUser(t, db, "a@x.com", models.RoleAttendee)
	testutil.CreateUser(t, db, "b@x.com", models.RoleAttendee)

	require.NoError(t, repo.UpdateFace(ctx, enrolled.ID, []float64{0.1, 0.2}, "faces/1.jpg"))

	users, err := repo.ListWithFaceEncoding(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, enrolled.ID, users[0].ID)
	assert.Equal(t, []float64{0.1, 0.2}, users[0].FaceEncoding)
	assert.Equal(t, "faces/1.jpg", users[0].FacePhotoKey)
}
