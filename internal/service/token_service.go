package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sefazor/conference-backend/internal/metrics"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"github.com/sefazor/conference-backend/pkg/utils"
	"go.uber.org/zap"
)

const (
	LoginTokenTTL   = 15 * time.Minute
	loginTokenBytes = 32
)

// TokenService issues and redeems single use login tokens.
type TokenService struct {
	tokens *repository.LoginTokenRepository
	clock  Clock
	log    *zap.Logger
}

func NewTokenService(tokens *repository.LoginTokenRepository, clock Clock, log *zap.Logger) *TokenService {
	return &TokenService{
		tokens: tokens,
		clock:  clock,
		log:    log,
	}
}

// Issue replaces every token of the user with a fresh one that expires after LoginTokenTTL.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*models.LoginToken, error) {
	value, err := utils.GenerateToken(loginTokenBytes)
	if err != nil {
		return nil, err
	}

	token := &models.LoginToken{
		Token:     value,
		UserID:    user.ID,
		ExpiresAt: s.clock.Now().Add(LoginTokenTTL),
	}
	if err := s.tokens.ReplaceForUser(ctx, token); err != nil {
		return nil, fmt.Errorf("issue login token: %w", err)
	}

	metrics.RecordLoginLinkIssued()
	return token, nil
}

// ValidateAndConsume redeems the token at most once. Every rejection returns
// ErrInvalidLoginLink; the precise reason is only logged.
func (s *TokenService) ValidateAndConsume(ctx context.Context, value string) (*models.User, error) {
	if value == "" {
		s.reject("not_found", value)
		return nil, ErrInvalidLoginLink
	}

	now := s.clock.Now()
	token, ok, err := s.tokens.Consume(ctx, value, now)
	if err != nil {
		return nil, fmt.Errorf("consume login token: %w", err)
	}
	if ok {
		metrics.RecordLoginRedemption("success")
		return token.User, nil
	}

	s.reject(s.rejectionReason(ctx, value, now), value)
	return nil, ErrInvalidLoginLink
}

func (s *TokenService) rejectionReason(ctx context.Context, value string, now time.Time) string {
	token, err := s.tokens.GetByToken(ctx, value)
	switch {
	case err != nil:
		return "not_found"
	case token.Used:
		return "used"
	case !now.Before(token.ExpiresAt):
		return "expired"
	default:
		return "unknown"
	}
}

func (s *TokenService) reject(reason, value string) {
	metrics.RecordLoginRedemption(reason)
	prefix := value
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	s.log.Info("Rejected login link", zap.String("reason", reason), zap.String("token_prefix", prefix))
}
