package entity

import (
	"fmt"
	"strings"
)

// Article is a raw news article as returned by the market news API.
type Article struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // epoch seconds
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Valid reports whether the article has the minimum shape required to be
// shown to a user: non-empty headline, URL and summary after trimming.
func (a Article) Valid() bool {
	return strings.TrimSpace(a.Headline) != "" &&
		strings.TrimSpace(a.URL) != "" &&
		strings.TrimSpace(a.Summary) != ""
}

// DedupKey is the composite identity used to deduplicate general-feed
// articles.
func (a Article) DedupKey() string {
	return fmt.Sprintf("%d-%s-%s", a.ID, strings.TrimSpace(a.URL), strings.TrimSpace(a.Headline))
}

// FormattedArticle is the display-ready projection of an Article, tagged
// with where it came from in the merge. Immutable once produced.
type FormattedArticle struct {
	Headline      string `json:"headline"`
	Source        string `json:"source"`
	URL           string `json:"url"`
	Summary       string `json:"summary"`
	Datetime      int64  `json:"datetime"`
	RelativeTime  string `json:"relativeTime"`
	IsCompanyNews bool   `json:"isCompanyNews"`
	Symbol        string `json:"symbol,omitempty"`
	Position      int    `json:"position"` // round of draw, or general-feed index
}
