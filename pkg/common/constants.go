package common

const (
	// Event streams consumed by the notifier service.
	RedisStreamUserCreated   = "app/user.created"
	RedisStreamSendDailyNews = "app/send.daily.news"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"
)

// Flow names recorded against workflow runs.
const (
	FlowWelcomeEmail     = "welcome-email"
	FlowDailyNewsSummary = "daily-news-summary"
)
