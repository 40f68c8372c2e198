package dto

import "tickrflow/internal/entity"

// UserCreatedEvent is the payload of the app/user.created event published by
// the auth layer when a new account is registered.
type UserCreatedEvent struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investmentGoals"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredIndustry string `json:"preferredIndustry"`
}

// SendDailyNewsEvent is the payload of the app/send.daily.news event. The
// cron trigger and the manual API trigger both publish it.
type SendDailyNewsEvent struct {
	TriggeredBy string `json:"triggered_by"` // "cron" or "api"
}

// UserNews pairs a user with the articles prepared for their digest.
// Possibly empty when every fetch for that user failed or returned nothing.
type UserNews struct {
	User     entity.User              `json:"user"`
	Articles []entity.FormattedArticle `json:"articles"`
}

// UserSummary pairs a user with their AI-generated digest text. NewsContent
// is nil when summarization failed for that user; the send step skips them.
type UserSummary struct {
	User        entity.User `json:"user"`
	NewsContent *string     `json:"newsContent"`
}
