package service

import (
	"context"
	"testing"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "a@x.com", models.RoleAttendee)

	token, err := env.tokenSvc.Issue(ctx, user)
	require.NoError(t, err)
	assert.Len(t, token.Token, 43)
	assert.Equal(t, testutil.Epoch.Add(LoginTokenTTL), token.ExpiresAt)

	got, err := env.tokenSvc.ValidateAndConsume(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	for i := 0; i < 3; i++ {
		_, err = env.tokenSvc.ValidateAndConsume(ctx, token.Token)
		assert.ErrorIs(t, err, ErrInvalidLoginLink)
	}
}

func TestTokenService_Supersession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "a@x.com", models.RoleAttendee)

	first, err := env.tokenSvc.Issue(ctx, user)
	require.NoError(t, err)
	second, err := env.tokenSvc.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = env.tokenSvc.ValidateAndConsume(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidLoginLink)

	_, err = env.tokenSvc.ValidateAndConsume(ctx, second.Token)
	assert.NoError(t, err)
}

func TestTokenService_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr bool
	}{
		{name: "just before expiry", advance: LoginTokenTTL - time.Second},
		{name: "at expiry", advance: LoginTokenTTL, wantErr: true},
		{name: "long after expiry", advance: 24 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user := testutil.CreateUser(t, env.db, "a@x.com", models.RoleAttendee)

			token, err := env.tokenSvc.Issue(ctx, user)
			require.NoError(t, err)

			env.clock.Advance(tt.advance)
			_, err = env.tokenSvc.ValidateAndConsume(ctx, token.Token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLoginLink)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenService_UnknownAndEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tokenSvc.ValidateAndConsume(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrInvalidLoginLink)

	_, err = env.tokenSvc.ValidateAndConsume(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidLoginLink)
}
