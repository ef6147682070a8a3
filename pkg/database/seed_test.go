package database_test

import (
	"testing"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/internal/testutil"
	"github.com/sefazor/conference-backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)

	require.NoError(t, database.Seed(db, testutil.Epoch, log))
	require.NoError(t, database.Seed(db, testutil.Epoch, log))

	var users, admins, sessions int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	assert.Equal(t, int64(6), users)
	assert.Equal(t, int64(1), admins)
	assert.Equal(t, int64(5), sessions)
}

func TestSeedScheduleHasNoOverlaps(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, database.Seed(db, testutil.Epoch, zaptest.NewLogger(t)))

	var all []models.Session
	require.NoError(t, db.Order("start_time").Find(&all).Error)

	for i := range all {
		others := make([]models.Session, 0, len(all)-1)
		others = append(others, all[:i]...)
		others = append(others, all[i+1:]...)
		assert.Empty(t, service.ValidateSchedule(&all[i], others), all[i].Title)
	}

	statuses := map[models.SessionStatus]int{}
	for i := range all {
		statuses[service.Classify(&all[i], testutil.Epoch)]++
	}
	assert.Equal(t, 2, statuses[models.SessionPast])
	assert.Equal(t, 1, statuses[models.SessionCurrent])
	assert.Equal(t, 2, statuses[models.SessionUpcoming])
}
