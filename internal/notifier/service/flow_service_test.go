package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/dto"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/telegram"
	"tickrflow/pkg/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users []entity.User
	err   error
	calls int
}

func (f *fakeUserRepo) FindAllForNewsEmail(context.Context) ([]entity.User, error) {
	f.calls++
	return f.users, f.err
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

type fakeRunRepo struct {
	mu      sync.Mutex
	created []*entity.WorkflowRun
	updated []*entity.WorkflowRun
}

func (f *fakeRunRepo) Create(_ context.Context, run *entity.WorkflowRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRepo) Update(_ context.Context, run *entity.WorkflowRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, run)
	return nil
}

func (f *fakeRunRepo) FindByRunID(context.Context, string) (*entity.WorkflowRun, error) {
	return nil, nil
}

func (f *fakeRunRepo) FindRecent(context.Context, int) ([]entity.WorkflowRun, error) {
	return nil, nil
}

type fakeAIRepo struct {
	mu       sync.Mutex
	response string
	failFor  map[string]bool // substring of prompt that triggers an error
	calls    int
}

func (f *fakeAIRepo) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for marker := range f.failFor {
		if strings.Contains(prompt, marker) {
			return "", fmt.Errorf("model unavailable")
		}
	}
	return f.response, nil
}

type fakeNewsSvc struct {
	articles []entity.FormattedArticle
	calls    int
}

func (f *fakeNewsSvc) GetNewsForUser(context.Context, []string) ([]entity.FormattedArticle, error) {
	f.calls++
	return f.articles, nil
}

type fakeWatchlistSvc struct {
	symbols map[string][]string
}

func (f *fakeWatchlistSvc) SymbolsByEmail(_ context.Context, email string) []string {
	return f.symbols[email]
}

type fakeMailer struct {
	mu       sync.Mutex
	welcome  []string
	summary  []string
	failFor  map[string]bool
	lastBody string
}

func (f *fakeMailer) SendWelcomeEmail(email, _, intro string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[email] {
		return fmt.Errorf("smtp refused")
	}
	f.welcome = append(f.welcome, email)
	f.lastBody = intro
	return nil
}

func (f *fakeMailer) SendSummaryEmail(email, _, newsContent string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[email] {
		return fmt.Errorf("smtp refused")
	}
	f.summary = append(f.summary, email)
	f.lastBody = newsContent
	return nil
}

type flowFixture struct {
	svc      FlowService
	store    *workflow.MemoryStore
	userRepo *fakeUserRepo
	runRepo  *fakeRunRepo
	aiRepo   *fakeAIRepo
	newsSvc  *fakeNewsSvc
	mailer   *fakeMailer
}

func newFlowFixture(t *testing.T, users []entity.User, articles []entity.FormattedArticle) *flowFixture {
	t.Helper()

	store := workflow.NewMemoryStore()
	engine := workflow.NewEngine(store, workflow.RetryPolicy{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		BackoffFactor:   2.0,
	}, logger.NewNop())

	f := &flowFixture{
		store:    store,
		userRepo: &fakeUserRepo{users: users},
		runRepo:  &fakeRunRepo{},
		aiRepo:   &fakeAIRepo{response: "AI generated content", failFor: map[string]bool{}},
		newsSvc:  &fakeNewsSvc{articles: articles},
		mailer:   &fakeMailer{failFor: map[string]bool{}},
	}
	f.svc = NewFlowService(
		engine,
		f.userRepo,
		f.runRepo,
		f.aiRepo,
		f.newsSvc,
		&fakeWatchlistSvc{symbols: map[string][]string{}},
		f.mailer,
		telegram.NopNotifier{},
		logger.NewNop(),
	)
	return f
}

func sampleArticles() []entity.FormattedArticle {
	return []entity.FormattedArticle{
		{Headline: "Markets rally", URL: "https://news.example.com/1", Summary: "up", Datetime: 100},
	}
}

func TestRunWelcomeFlowSendsEmail(t *testing.T) {
	f := newFlowFixture(t, nil, nil)
	event := dto.UserCreatedEvent{Email: "new@user.io", Name: "New User", Country: "US"}

	result, err := f.svc.RunWelcomeFlow(context.Background(), "welcome-1", event)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Welcome email sent successfully.", result.Message)
	assert.Equal(t, []string{"new@user.io"}, f.mailer.welcome)
	assert.Equal(t, "AI generated content", f.mailer.lastBody)
}

func TestRunWelcomeFlowDefaultsIntroOnEmptyResponse(t *testing.T) {
	f := newFlowFixture(t, nil, nil)
	f.aiRepo.response = "   "

	result, err := f.svc.RunWelcomeFlow(context.Background(), "welcome-2", dto.UserCreatedEvent{Email: "a@b.io", Name: "A"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, DefaultWelcomeIntro, f.mailer.lastBody)
}

func TestRunWelcomeFlowFailsWhenSendFails(t *testing.T) {
	f := newFlowFixture(t, nil, nil)
	f.mailer.failFor["a@b.io"] = true

	_, err := f.svc.RunWelcomeFlow(context.Background(), "welcome-3", dto.UserCreatedEvent{Email: "a@b.io", Name: "A"})

	require.Error(t, err)
	require.Len(t, f.runRepo.updated, 1)
	assert.Equal(t, entity.RunStatusFailed, f.runRepo.updated[0].Status)
}

func TestRunDailyDigestFlowNoUsers(t *testing.T) {
	f := newFlowFixture(t, nil, nil)

	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-1", dto.SendDailyNewsEvent{TriggeredBy: "cron"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "No users found", result.Message)
	assert.Zero(t, f.newsSvc.calls, "news must not be fetched when there are no users")
	assert.Zero(t, f.aiRepo.calls, "summarization must not run when there are no users")
	assert.Empty(t, f.mailer.summary)
}

func TestRunDailyDigestFlowSendsToAllUsers(t *testing.T) {
	users := []entity.User{
		{ID: 1, Email: "a@users.io", Name: "A"},
		{ID: 2, Email: "b@users.io", Name: "B"},
	}
	f := newFlowFixture(t, users, sampleArticles())

	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-2", dto.SendDailyNewsEvent{TriggeredBy: "api"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Daily News Summary emails sent successfully.", result.Message)
	assert.ElementsMatch(t, []string{"a@users.io", "b@users.io"}, f.mailer.summary)
	assert.Equal(t, 2, f.aiRepo.calls)

	require.Len(t, f.runRepo.updated, 1)
	record := f.runRepo.updated[0]
	assert.Equal(t, entity.RunStatusCompleted, record.Status)
	assert.ElementsMatch(t, []string{"a@users.io", "b@users.io"}, []string(record.Recipients))
}

func TestRunDailyDigestFlowIsolatesPerUserSummaryFailure(t *testing.T) {
	users := []entity.User{
		{ID: 1, Email: "a@users.io", Name: "A"},
		{ID: 2, Email: "b@users.io", Name: "B"},
		{ID: 3, Email: "c@users.io", Name: "C"},
	}
	f := newFlowFixture(t, users, sampleArticles())

	// users are summarized in order, so the second call belongs to B
	failing := &sequencedAIRepo{errOn: map[int]bool{2: true}}
	f.svc = rebuildFlowService(f, failing)

	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-3", dto.SendDailyNewsEvent{})

	require.NoError(t, err)
	assert.True(t, result.Success, "one user's failure must not fail the flow")
	assert.ElementsMatch(t, []string{"a@users.io", "c@users.io"}, f.mailer.summary)
}

func TestRunDailyDigestFlowSkipsUsersWithNoArticles(t *testing.T) {
	users := []entity.User{{ID: 1, Email: "a@users.io", Name: "A"}}
	f := newFlowFixture(t, users, nil)

	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-4", dto.SendDailyNewsEvent{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, f.aiRepo.calls, "empty article sets must not reach the model")
	assert.Empty(t, f.mailer.summary)
}

func TestRunDailyDigestFlowDefaultsContentOnEmptySummary(t *testing.T) {
	users := []entity.User{{ID: 1, Email: "a@users.io", Name: "A"}}
	f := newFlowFixture(t, users, sampleArticles())
	f.aiRepo.response = ""

	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-5", dto.SendDailyNewsEvent{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"a@users.io"}, f.mailer.summary)
	assert.Equal(t, DefaultNewsContent, f.mailer.lastBody)
}

func TestRunDailyDigestFlowReplayReusesCheckpoints(t *testing.T) {
	users := []entity.User{{ID: 1, Email: "a@users.io", Name: "A"}}
	f := newFlowFixture(t, users, sampleArticles())

	_, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-6", dto.SendDailyNewsEvent{})
	require.NoError(t, err)
	require.Equal(t, 1, f.aiRepo.calls)

	// same run id: every checkpointed step is restored, not re-executed
	result, err := f.svc.RunDailyDigestFlow(context.Background(), "digest-6", dto.SendDailyNewsEvent{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, f.userRepo.calls, "user lookup must come from the checkpoint on replay")
	assert.Equal(t, 1, f.aiRepo.calls, "summarization must come from the checkpoint on replay")
}

// sequencedAIRepo fails specific calls by 1-based invocation order.
type sequencedAIRepo struct {
	mu    sync.Mutex
	calls int
	errOn map[int]bool
}

func (f *sequencedAIRepo) GenerateText(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errOn[f.calls] {
		return "", fmt.Errorf("model unavailable")
	}
	return "AI generated content", nil
}

func rebuildFlowService(f *flowFixture, ai *sequencedAIRepo) FlowService {
	engine := workflow.NewEngine(f.store, workflow.RetryPolicy{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		BackoffFactor:   2.0,
	}, logger.NewNop())
	return NewFlowService(
		engine,
		f.userRepo,
		f.runRepo,
		ai,
		f.newsSvc,
		&fakeWatchlistSvc{symbols: map[string][]string{}},
		f.mailer,
		telegram.NopNotifier{},
		logger.NewNop(),
	)
}
