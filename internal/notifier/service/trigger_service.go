package service

import (
	"context"
	"encoding/json"
	"fmt"

	"tickrflow/internal/notifier/config"
	"tickrflow/internal/notifier/dto"
	"tickrflow/pkg/common"
	"tickrflow/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// TriggerService publishes flow trigger events onto their streams. The cron
// schedule and the HTTP API share this path so both kinds of trigger behave
// identically downstream.
type TriggerService interface {
	PublishUserCreated(ctx context.Context, event dto.UserCreatedEvent) (string, error)
	PublishDailyNews(ctx context.Context, event dto.SendDailyNewsEvent) (string, error)
}

type triggerService struct {
	cfg         *config.Config
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewTriggerService creates a TriggerService.
func NewTriggerService(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) TriggerService {
	return &triggerService{
		cfg:         cfg,
		redisClient: redisClient,
		logger:      log,
	}
}

// PublishUserCreated emits an app/user.created event and returns the stream
// message id.
func (s *triggerService) PublishUserCreated(ctx context.Context, event dto.UserCreatedEvent) (string, error) {
	return s.publish(ctx, common.RedisStreamUserCreated, event)
}

// PublishDailyNews emits an app/send.daily.news event and returns the stream
// message id.
func (s *triggerService) PublishDailyNews(ctx context.Context, event dto.SendDailyNewsEvent) (string, error) {
	return s.publish(ctx, common.RedisStreamSendDailyNews, event)
}

func (s *triggerService) publish(ctx context.Context, stream string, event interface{}) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	id, err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish event to %s: %w", stream, err)
	}

	s.logger.Info("Event published",
		logger.StringField("stream", stream),
		logger.StringField("message_id", id),
	)
	return id, nil
}
