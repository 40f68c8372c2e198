package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/dto"
	"tickrflow/internal/notifier/repository"
	"tickrflow/pkg/common"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/mailer"
	"tickrflow/pkg/telegram"
	"tickrflow/pkg/utils"
	"tickrflow/pkg/workflow"
)

// DefaultWelcomeIntro is used when the AI response carries no usable text.
const DefaultWelcomeIntro = "Thanks for joining Tickrflow. You now have the tools to track markets and make smarter moves."

// DefaultNewsContent is used when summarization succeeds but yields nothing.
const DefaultNewsContent = "No market news"

// FlowService runs the two notifier flows as checkpointed workflow steps.
type FlowService interface {
	RunWelcomeFlow(ctx context.Context, runID string, event dto.UserCreatedEvent) (workflow.Result, error)
	RunDailyDigestFlow(ctx context.Context, runID string, event dto.SendDailyNewsEvent) (workflow.Result, error)
}

type flowService struct {
	engine       *workflow.Engine
	userRepo     repository.UserRepository
	runRepo      repository.WorkflowRunRepository
	aiRepo       repository.AIRepository
	newsSvc      NewsService
	watchlistSvc WatchlistService
	mailer       mailer.Mailer
	opsNotifier  telegram.Notifier
	logger       *logger.Logger
}

// NewFlowService creates a FlowService.
func NewFlowService(
	engine *workflow.Engine,
	userRepo repository.UserRepository,
	runRepo repository.WorkflowRunRepository,
	aiRepo repository.AIRepository,
	newsSvc NewsService,
	watchlistSvc WatchlistService,
	m mailer.Mailer,
	opsNotifier telegram.Notifier,
	log *logger.Logger,
) FlowService {
	return &flowService{
		engine:       engine,
		userRepo:     userRepo,
		runRepo:      runRepo,
		aiRepo:       aiRepo,
		newsSvc:      newsSvc,
		watchlistSvc: watchlistSvc,
		mailer:       m,
		opsNotifier:  opsNotifier,
		logger:       log,
	}
}

// RunWelcomeFlow generates a personalized intro and sends the welcome email.
// Once both steps complete the result is always success; only step failure
// after retries surfaces as an error.
func (s *flowService) RunWelcomeFlow(ctx context.Context, runID string, event dto.UserCreatedEvent) (workflow.Result, error) {
	record := s.startRun(ctx, runID, common.FlowWelcomeEmail, event)
	run := s.engine.NewRun(runID)

	intro, err := workflow.Step(ctx, run, "generate-welcome-intro", func(ctx context.Context) (string, error) {
		prompt := repository.BuildWelcomePrompt(event)
		text, err := s.aiRepo.GenerateText(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return DefaultWelcomeIntro, nil
		}
		return strings.TrimSpace(text), nil
	})
	if err != nil {
		s.failRun(ctx, record, err)
		return workflow.Result{}, err
	}

	_, err = workflow.Step(ctx, run, "send-welcome-email", func(ctx context.Context) (bool, error) {
		if err := s.mailer.SendWelcomeEmail(event.Email, event.Name, intro); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		s.failRun(ctx, record, err)
		return workflow.Result{}, err
	}

	result := workflow.Result{Success: true, Message: "Welcome email sent successfully."}
	s.completeRun(ctx, record, result, []string{event.Email})
	return result, nil
}

// RunDailyDigestFlow prepares, summarizes and sends the daily digest for
// every eligible user. Per-user failures degrade that user's digest without
// affecting the rest; only an empty user list short-circuits the flow.
func (s *flowService) RunDailyDigestFlow(ctx context.Context, runID string, event dto.SendDailyNewsEvent) (workflow.Result, error) {
	record := s.startRun(ctx, runID, common.FlowDailyNewsSummary, event)
	run := s.engine.NewRun(runID)

	users, err := workflow.Step(ctx, run, "get-all-users", func(ctx context.Context) ([]entity.User, error) {
		return s.userRepo.FindAllForNewsEmail(ctx)
	})
	if err != nil {
		s.failRun(ctx, record, err)
		return workflow.Result{}, err
	}

	if len(users) == 0 {
		result := workflow.Result{Success: false, Message: "No users found"}
		s.completeRun(ctx, record, result, nil)
		return result, nil
	}

	perUser, err := workflow.Step(ctx, run, "fetch-user-news", func(ctx context.Context) ([]dto.UserNews, error) {
		return s.fetchUserNews(ctx, users), nil
	})
	if err != nil {
		s.failRun(ctx, record, err)
		return workflow.Result{}, err
	}

	summaries := s.summarizePerUser(ctx, run, perUser)

	sent, err := workflow.Step(ctx, run, "send-news-emails", func(ctx context.Context) ([]string, error) {
		return s.sendSummaryEmails(summaries), nil
	})
	if err != nil {
		s.failRun(ctx, record, err)
		return workflow.Result{}, err
	}

	result := workflow.Result{Success: true, Message: "Daily News Summary emails sent successfully."}
	s.completeRun(ctx, record, result, sent)
	s.notifyOps(runID, len(users), len(sent))
	return result, nil
}

// fetchUserNews resolves each user's watchlist and prepares their article
// set. Errors for one user degrade to an empty article list.
func (s *flowService) fetchUserNews(ctx context.Context, users []entity.User) []dto.UserNews {
	perUser := make([]dto.UserNews, 0, len(users))
	for _, user := range users {
		symbols := s.watchlistSvc.SymbolsByEmail(ctx, user.Email)
		articles, err := s.newsSvc.GetNewsForUser(ctx, symbols)
		if err != nil {
			s.logger.Error("Failed to prepare user news",
				logger.ErrorField(err),
				logger.StringField("email", user.Email),
			)
			articles = nil
		}
		perUser = append(perUser, dto.UserNews{User: user, Articles: articles})
	}
	return perUser
}

// summarizePerUser runs one checkpointed summarization step per user so a
// resumed run does not re-bill completed users. A user whose step fails
// after retries gets a nil summary and is skipped at send time.
func (s *flowService) summarizePerUser(ctx context.Context, run *workflow.Run, perUser []dto.UserNews) []dto.UserSummary {
	summaries := make([]dto.UserSummary, 0, len(perUser))
	for _, un := range perUser {
		un := un
		stepName := "summarize-news-" + un.User.Email

		newsContent, err := workflow.Step(ctx, run, stepName, func(ctx context.Context) (*string, error) {
			if len(un.Articles) == 0 {
				// Nothing to summarize: skip the AI call, skip the email.
				return nil, nil
			}
			prompt := repository.BuildNewsSummaryPrompt(un.Articles)
			text, err := s.aiRepo.GenerateText(ctx, prompt)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) == "" {
				text = DefaultNewsContent
			}
			return &text, nil
		})
		if err != nil {
			s.logger.Error("Failed to summarize news for user",
				logger.ErrorField(err),
				logger.StringField("email", un.User.Email),
			)
			newsContent = nil
		}

		summaries = append(summaries, dto.UserSummary{User: un.User, NewsContent: newsContent})
	}
	return summaries
}

// sendSummaryEmails dispatches all digest emails concurrently. Users without
// a summary are skipped; per-recipient failures are logged, not propagated.
func (s *flowService) sendSummaryEmails(summaries []dto.UserSummary) []string {
	dateLabel := utils.FormatDateToday()
	sent := make([]string, 0, len(summaries))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, us := range summaries {
		if us.NewsContent == nil {
			continue
		}
		us := us
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			if err := s.mailer.SendSummaryEmail(us.User.Email, dateLabel, *us.NewsContent); err != nil {
				s.logger.Error("Failed to send summary email",
					logger.ErrorField(err),
					logger.StringField("email", us.User.Email),
				)
				return
			}
			mu.Lock()
			sent = append(sent, us.User.Email)
			mu.Unlock()
		})
	}
	wg.Wait()

	return sent
}

func (s *flowService) notifyOps(runID string, total, sent int) {
	msg := fmt.Sprintf("*Daily digest* `%s`\nusers: %d\nemails sent: %d\nskipped: %d", runID, total, sent, total-sent)
	if err := s.opsNotifier.SendMessage(msg); err != nil {
		s.logger.Error("Failed to send ops notification", logger.ErrorField(err))
	}
}

func (s *flowService) startRun(ctx context.Context, runID, flow string, payload interface{}) *entity.WorkflowRun {
	encoded, err := json.Marshal(payload)
	if err != nil {
		encoded = []byte("{}")
	}

	record := &entity.WorkflowRun{
		RunID:     runID,
		Flow:      flow,
		Status:    entity.RunStatusRunning,
		Payload:   encoded,
		StartedAt: time.Now(),
	}
	if err := s.runRepo.Create(ctx, record); err != nil {
		// A replayed run id already has a row; keep going and update it.
		s.logger.Warn("Failed to create workflow run record",
			logger.ErrorField(err),
			logger.StringField("run_id", runID),
		)
		if existing, findErr := s.runRepo.FindByRunID(ctx, runID); findErr == nil && existing != nil {
			return existing
		}
	}
	return record
}

func (s *flowService) completeRun(ctx context.Context, record *entity.WorkflowRun, result workflow.Result, recipients []string) {
	output, _ := json.Marshal(result)
	record.Status = entity.RunStatusCompleted
	record.Output = sql.NullString{String: string(output), Valid: true}
	record.Recipients = recipients
	record.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}

	if err := s.runRepo.Update(ctx, record); err != nil {
		s.logger.Error("Failed to update workflow run record",
			logger.ErrorField(err),
			logger.StringField("run_id", record.RunID),
		)
	}
}

func (s *flowService) failRun(ctx context.Context, record *entity.WorkflowRun, runErr error) {
	record.Status = entity.RunStatusFailed
	record.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	record.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}

	if err := s.runRepo.Update(ctx, record); err != nil {
		s.logger.Error("Failed to update workflow run record",
			logger.ErrorField(err),
			logger.StringField("run_id", record.RunID),
		)
	}
}
