package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sefazor/conference-backend/internal/config"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"github.com/sefazor/conference-backend/internal/testutil"
	jwtPkg "github.com/sefazor/conference-backend/pkg/jwt"
	"github.com/sefazor/conference-backend/pkg/utils"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const testAppURL = "http://conf.test"

type sentLink struct {
	to, name, link string
}

type fakeQueue struct {
	mu    sync.Mutex
	links []sentLink
	err   error
	full  bool
}

func (q *fakeQueue) EnqueueLoginLink(ctx context.Context, to, name, link string) error {
	if q.full {
		<-ctx.Done()
		return ctx.Err()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.links = append(q.links, sentLink{to: to, name: name, link: link})
	return nil
}

func (q *fakeQueue) last(t *testing.T) sentLink {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.links) == 0 {
		t.Fatal("no login link queued")
	}
	return q.links[len(q.links)-1]
}

func tokenFromLink(link string) string {
	return strings.TrimPrefix(link, testAppURL+MagicLoginPath)
}

type testEnv struct {
	db       *gorm.DB
	clock    *testutil.Clock
	queue    *fakeQueue
	users    *repository.UserRepository
	tokens   *repository.LoginTokenRepository
	sessions *repository.SessionRepository
	feedback *repository.FeedbackRepository
	reports  *repository.ReportRepository

	tokenSvc    *TokenService
	authSvc     *AuthService
	scheduleSvc *ScheduleService
	feedbackSvc *FeedbackService
	userSvc     *UserService
	reportSvc   *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRestriction(t, config.DomainRestriction{})
}

func newTestEnvWithRestriction(t *testing.T, restriction config.DomainRestriction) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	db := testutil.NewDB(t)
	clock := testutil.NewClock(testutil.Epoch)

	env := &testEnv{
		db:       db,
		clock:    clock,
		queue:    &fakeQueue{},
		users:    repository.NewUserRepository(db),
		tokens:   repository.NewLoginTokenRepository(db),
		sessions: repository.NewSessionRepository(db),
		feedback: repository.NewFeedbackRepository(db),
		reports:  repository.NewReportRepository(db),
	}

	jwtManager := jwtPkg.NewManager("test-secret", "conference-test", 24*time.Hour, clock.Now)
	env.tokenSvc = NewTokenService(env.tokens, clock, log)
	env.authSvc = NewAuthService(env.users, env.tokenSvc, env.queue, jwtManager, testAppURL, restriction, log)
	env.scheduleSvc = NewScheduleService(env.sessions, env.users, env.feedback, clock, log)
	env.feedbackSvc = NewFeedbackService(env.feedback, env.sessions, clock, log)
	env.userSvc = NewUserService(env.users, env.reports, log)
	env.reportSvc = NewReportService(env.reports, clock, log)
	return env
}

func validationErr(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}

func (env *testEnv) mustUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: utils.NameFromEmail(email), Role: models.RoleAttendee}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
