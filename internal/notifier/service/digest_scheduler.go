package service

import (
	"context"

	"tickrflow/internal/notifier/dto"
	"tickrflow/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultDigestCron fires the daily digest at noon.
const DefaultDigestCron = "0 12 * * *"

// DigestScheduler publishes the daily digest event on a cron schedule. The
// consumer picks the event up exactly like a manually published one.
type DigestScheduler struct {
	cron    *cron.Cron
	trigger TriggerService
	logger  *logger.Logger
}

// NewDigestScheduler creates the scheduler with the given cron expression
// (standard 5-field syntax); empty means the default noon schedule.
func NewDigestScheduler(spec string, trigger TriggerService, log *logger.Logger) (*DigestScheduler, error) {
	if spec == "" {
		spec = DefaultDigestCron
	}

	s := &DigestScheduler{
		cron:    cron.New(),
		trigger: trigger,
		logger:  log,
	}

	_, err := s.cron.AddFunc(spec, func() {
		id, err := s.trigger.PublishDailyNews(context.Background(), dto.SendDailyNewsEvent{TriggeredBy: "cron"})
		if err != nil {
			s.logger.Error("Failed to publish scheduled digest event", logger.ErrorField(err))
			return
		}
		s.logger.Info("Scheduled digest event published", logger.StringField("message_id", id))
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the cron loop.
func (s *DigestScheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop, waiting for a running publish to finish.
func (s *DigestScheduler) Stop() {
	<-s.cron.Stop().Done()
}
