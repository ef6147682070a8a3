package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sefazor/conference-backend/internal/config"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_MagicLinkRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.authSvc.RequestLogin(ctx, "newcomer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Newcomer", user.Name)
	assert.Equal(t, models.RoleAttendee, user.Role)

	var users int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	count, err := env.tokens.CountForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	sent := env.queue.last(t)
	assert.Equal(t, "newcomer@example.com", sent.to)
	assert.True(t, strings.HasPrefix(sent.link, testAppURL+MagicLoginPath))

	value := tokenFromLink(sent.link)
	resp, err := env.authSvc.CompleteLogin(ctx, value)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	stored, err := env.tokens.GetByToken(ctx, value)
	require.NoError(t, err)
	assert.True(t, stored.Used)

	_, err = env.authSvc.CompleteLogin(ctx, value)
	assert.ErrorIs(t, err, ErrInvalidLoginLink)

	current, err := env.authSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
}

func TestAuthService_RepeatRequestReusesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.authSvc.RequestLogin(ctx, "Jane@Example.com")
	require.NoError(t, err)
	second, err := env.authSvc.RequestLogin(ctx, "  jane@example.COM ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "jane@example.com", second.Email)

	count, err := env.tokens.CountForUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Only the newest link works.
	env.queue.mu.Lock()
	require.Len(t, env.queue.links, 2)
	stale := tokenFromLink(env.queue.links[0].link)
	fresh := tokenFromLink(env.queue.links[1].link)
	env.queue.mu.Unlock()

	_, err = env.authSvc.CompleteLogin(ctx, stale)
	assert.ErrorIs(t, err, ErrInvalidLoginLink)
	_, err = env.authSvc.CompleteLogin(ctx, fresh)
	assert.NoError(t, err)
}

func TestAuthService_RequestLoginRejectsBadEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		msg   string
	}{
		{name: "blank", email: "   ", msg: "can't be blank"},
		{name: "no at", email: "nobody", msg: "is invalid"},
		{name: "no local part", email: "@example.com", msg: "is invalid"},
		{name: "no domain", email: "someone@", msg: "is invalid"},
		{name: "two ats", email: "a@b@example.com", msg: "is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.authSvc.RequestLogin(context.Background(), tt.email)
			verr := validationErr(err)
			require.NotNil(t, verr)
			assert.True(t, verr.Has(tt.msg))
			assert.Empty(t, env.queue.links)
		})
	}
}

func TestAuthService_DomainRestriction(t *testing.T) {
	env := newTestEnvWithRestriction(t, config.DomainRestriction{Enabled: true, AllowedSuffix: "@Acme.com"})
	ctx := context.Background()

	_, err := env.authSvc.RequestLogin(ctx, "visitor@gmail.com")
	verr := validationErr(err)
	require.NotNil(t, verr)
	assert.Equal(t, "email", verr.Errors[0].Field)

	var users int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)

	_, err = env.authSvc.RequestLogin(ctx, "staff@acme.com")
	assert.NoError(t, err)
}

func TestAuthService_DomainRestrictionWithoutAt(t *testing.T) {
	env := newTestEnvWithRestriction(t, config.DomainRestriction{Enabled: true, AllowedSuffix: "company.com"})
	ctx := context.Background()

	_, err := env.authSvc.RequestLogin(ctx, "x@evilcompany.com")
	verr := validationErr(err)
	require.NotNil(t, verr)
	assert.Equal(t, "email", verr.Errors[0].Field)

	_, err = env.authSvc.RequestLogin(ctx, "staff@company.com")
	assert.NoError(t, err)
}

func TestAuthService_QueueFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = errors.New("queue closed")

	_, err := env.authSvc.RequestLogin(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Nil(t, validationErr(err))
	assert.ErrorIs(t, err, ErrMailUnavailable)
}

func TestAuthService_FullQueueDoesNotHang(t *testing.T) {
	env := newTestEnv(t)
	env.queue.full = true
	env.authSvc.enqueueTimeout = 20 * time.Millisecond

	start := time.Now()
	_, err := env.authSvc.RequestLogin(context.Background(), "a@x.com")
	require.ErrorIs(t, err, ErrMailUnavailable)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), time.Second)
}

func TestAuthService_ExpiredLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.RequestLogin(ctx, "a@x.com")
	require.NoError(t, err)
	value := tokenFromLink(env.queue.last(t).link)

	env.clock.Advance(LoginTokenTTL + time.Second)
	_, err = env.authSvc.CompleteLogin(ctx, value)
	assert.ErrorIs(t, err, ErrInvalidLoginLink)
}

func TestAuthService_AuthenticateRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.Authenticate(ctx, "garbage")
	assert.Error(t, err)

	user := env.mustUser(t, "gone@x.com")
	resp, err := env.authSvc.EstablishSession(user)
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(user).Error)

	_, err = env.authSvc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	env.authSvc.Logout(user)
	env.authSvc.Logout(nil)
}
