package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"tickrflow/internal/notifier/config"
	"tickrflow/internal/notifier/dto"
	"tickrflow/internal/notifier/service"
	"tickrflow/pkg/common"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer consumes trigger events from Redis streams and hands them to
// the flow service.
type RedisConsumer struct {
	cfg         *config.Config
	redisClient *redis.Client
	flowSvc     service.FlowService
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, redisClient *redis.Client, flowSvc service.FlowService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		redisClient: redisClient,
		flowSvc:     flowSvc,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer's event processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.registerStreamHandler(ctx, common.RedisStreamUserCreated, c.processUserCreated)
	c.registerStreamHandler(ctx, common.RedisStreamSendDailyNews, c.processSendDailyNews)
}

func (c *RedisConsumer) registerStreamHandler(ctx context.Context, streamName string, fn func(ctx context.Context, msg redis.XMessage)) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stream handler stopping due to context cancellation", logger.StringField("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Stream handler stopping", logger.StringField("stream", streamName))
				return
			default:
				c.readOne(ctx, streamName, fn)
			}
		}
	})
}

func (c *RedisConsumer) readOne(ctx context.Context, streamName string, fn func(ctx context.Context, msg redis.XMessage)) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{streamName, ">"},
		Count:    1,
		Block:    2 * time.Second, // allow graceful shutdown
		NoAck:    true,
	}).Result()

	if err != nil {
		if isExpectedReadError(err) {
			return
		}
		c.logger.Error("Failed to read from stream",
			logger.ErrorField(err),
			logger.StringField("stream", streamName),
		)
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	timeout := c.cfg.Notifier.StreamReadTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	handleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fn(handleCtx, streams[0].Messages[0])
}

func (c *RedisConsumer) processUserCreated(ctx context.Context, msg redis.XMessage) {
	var event dto.UserCreatedEvent
	if !c.decodePayload(msg, common.RedisStreamUserCreated, &event) {
		return
	}

	runID := "welcome-" + msg.ID
	c.logger.Info("Processing user created event",
		logger.StringField("run_id", runID),
		logger.StringField("email", event.Email),
	)

	result, err := c.flowSvc.RunWelcomeFlow(ctx, runID, event)
	if err != nil {
		c.logger.Error("Welcome flow failed",
			logger.ErrorField(err),
			logger.StringField("run_id", runID),
		)
		return
	}
	c.logger.Info("Welcome flow completed",
		logger.StringField("run_id", runID),
		logger.Field("success", result.Success),
	)
}

func (c *RedisConsumer) processSendDailyNews(ctx context.Context, msg redis.XMessage) {
	var event dto.SendDailyNewsEvent
	if !c.decodePayload(msg, common.RedisStreamSendDailyNews, &event) {
		return
	}

	runID := "digest-" + msg.ID
	c.logger.Info("Processing daily news event",
		logger.StringField("run_id", runID),
		logger.StringField("triggered_by", event.TriggeredBy),
	)

	result, err := c.flowSvc.RunDailyDigestFlow(ctx, runID, event)
	if err != nil {
		c.logger.Error("Daily digest flow failed",
			logger.ErrorField(err),
			logger.StringField("run_id", runID),
		)
		return
	}
	c.logger.Info("Daily digest flow completed",
		logger.StringField("run_id", runID),
		logger.Field("success", result.Success),
		logger.StringField("message", result.Message),
	)
}

func (c *RedisConsumer) decodePayload(msg redis.XMessage, streamName string, out interface{}) bool {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error("field 'payload' not found or not a string in stream message",
			logger.StringField("stream", streamName),
			logger.StringField("message_id", msg.ID),
		)
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		c.logger.Error("Failed to unmarshal event payload",
			logger.ErrorField(err),
			logger.StringField("stream", streamName),
			logger.StringField("message_id", msg.ID),
		)
		return false
	}
	return true
}

// isExpectedReadError reports whether a blocking stream read failed for a
// reason that is part of normal operation: no message arrived before the
// block timeout, or the context ended during shutdown.
func isExpectedReadError(err error) bool {
	return errors.Is(err, redis.Nil) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
