package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/dto"
)

const welcomeEmailPromptTemplate = `You are writing a short, personalized welcome paragraph for a new user of Tickrflow, a stock market tracking app.

User profile:
{{userProfile}}

Write 2-3 warm, concise sentences welcoming them and pointing out how Tickrflow fits their profile. Plain text only, no headings, no markdown, no emojis.`

const newsSummaryEmailPromptTemplate = `You are writing the body of a daily market news email for one Tickrflow user.

Here are today's articles as JSON:
{{newsData}}

Summarize the key developments in simple HTML suitable for an email body: short paragraphs, <strong> for tickers, <a> links to the source articles. Keep it under 300 words. Do not invent news that is not in the data. No <html> or <body> tags.`

// BuildWelcomePrompt fills the welcome template with the user's profile from
// the sign-up event.
func BuildWelcomePrompt(event dto.UserCreatedEvent) string {
	profile := fmt.Sprintf(
		"- Name: %s\n- Country: %s\n- Investment goals: %s\n- Risk tolerance: %s\n- Preferred industry: %s",
		event.Name, event.Country, event.InvestmentGoals, event.RiskTolerance, event.PreferredIndustry,
	)
	return strings.ReplaceAll(welcomeEmailPromptTemplate, "{{userProfile}}", profile)
}

// BuildNewsSummaryPrompt fills the digest template with the user's prepared
// articles serialized as indented JSON.
func BuildNewsSummaryPrompt(articles []entity.FormattedArticle) string {
	newsData, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		newsData = []byte("[]")
	}
	return strings.ReplaceAll(newsSummaryEmailPromptTemplate, "{{newsData}}", string(newsData))
}
