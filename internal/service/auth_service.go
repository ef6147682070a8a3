package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sefazor/conference-backend/internal/config"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	jwtPkg "github.com/sefazor/conference-backend/pkg/jwt"
	"github.com/sefazor/conference-backend/pkg/utils"
	"go.uber.org/zap"
)

const MagicLoginPath = "/api/auth/magic-login/"

// defaultEnqueueTimeout bounds how long a login request waits for room in the mail queue.
const defaultEnqueueTimeout = 2 * time.Second

// LoginLinkQueue hands a login link to the asynchronous mail path.
type LoginLinkQueue interface {
	EnqueueLoginLink(ctx context.Context, to, name, link string) error
}

type AuthService struct {
	users       *repository.UserRepository
	tokens      *TokenService
	queue       LoginLinkQueue
	sessions    *jwtPkg.Manager
	appURL      string
	restriction config.DomainRestriction
	log         *zap.Logger

	enqueueTimeout time.Duration
}

func NewAuthService(
	users *repository.UserRepository,
	tokens *TokenService,
	queue LoginLinkQueue,
	sessions *jwtPkg.Manager,
	appURL string,
	restriction config.DomainRestriction,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		queue:       queue,
		sessions:    sessions,
		appURL:      strings.TrimRight(appURL, "/"),
		restriction: restriction,
		log:         log,

		enqueueTimeout: defaultEnqueueTimeout,
	}
}

// RequestLogin finds or creates the user for email, issues a fresh login token
// and queues the link for delivery. It does not wait for the mail to go out.
func (s *AuthService) RequestLogin(ctx context.Context, email string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}

	user, created, err := s.users.FindOrCreateByEmail(ctx, email, models.User{
		Name: utils.NameFromEmail(email),
		Role: models.RoleAttendee,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}
	if created {
		s.log.Info("Created user on first login request", zap.Uint("user_id", user.ID))
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	enqueueCtx, cancel := context.WithTimeout(ctx, s.enqueueTimeout)
	defer cancel()
	if err := s.queue.EnqueueLoginLink(enqueueCtx, user.Email, user.Name, s.LoginLink(token.Token)); err != nil {
		s.log.Error("Failed to queue login link", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}

	s.log.Info("Queued login link", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *AuthService) checkEmail(email string) error {
	if email == "" {
		return newValidationError("email", "can't be blank")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") || at == len(email)-1 {
		return newValidationError("email", "is invalid")
	}

	if s.restriction.Enabled && !strings.HasSuffix(email, s.restriction.Suffix()) {
		return newValidationError("email", "must use an allowed company domain")
	}
	return nil
}

// LoginLink is the URL mailed to the user. Possession of it is the whole credential.
func (s *AuthService) LoginLink(token string) string {
	return s.appURL + MagicLoginPath + url.PathEscape(token)
}

// CompleteLogin redeems a login token and establishes a session for its owner.
func (s *AuthService) CompleteLogin(ctx context.Context, token string) (*models.AuthResponse, error) {
	user, err := s.tokens.ValidateAndConsume(ctx, token)
	if err != nil {
		return nil, err
	}
	s.log.Info("User logged in with magic link", zap.Uint("user_id", user.ID))
	return s.EstablishSession(user)
}

// EstablishSession signs a session principal for user.
func (s *AuthService) EstablishSession(user *models.User) (*models.AuthResponse, error) {
	signed, expiresAt, err := s.sessions.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Authenticate resolves a session token to the current user record.
func (s *AuthService) Authenticate(ctx context.Context, sessionToken string) (*models.User, error) {
	claims, err := s.sessions.Validate(sessionToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

// Logout ends the session of user. Sessions are stateless tokens, so this only
// records the event; the transport drops the credential.
func (s *AuthService) Logout(user *models.User) {
	if user == nil {
		return
	}
	s.log.Info("User logged out", zap.Uint("user_id", user.ID))
}
