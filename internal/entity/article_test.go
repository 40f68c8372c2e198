package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticleValid(t *testing.T) {
	base := Article{
		ID:       1,
		Headline: "Fed holds rates",
		URL:      "https://news.example.com/fed",
		Summary:  "Rates unchanged.",
	}

	tests := []struct {
		name   string
		mutate func(*Article)
		want   bool
	}{
		{"complete", func(*Article) {}, true},
		{"missing headline", func(a *Article) { a.Headline = "" }, false},
		{"whitespace headline", func(a *Article) { a.Headline = "   " }, false},
		{"missing url", func(a *Article) { a.URL = "" }, false},
		{"missing summary", func(a *Article) { a.Summary = "\t\n" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			assert.Equal(t, tt.want, a.Valid())
		})
	}
}

func TestArticleDedupKey(t *testing.T) {
	a := Article{ID: 7, URL: " https://x.io/a ", Headline: " Big move "}
	b := Article{ID: 7, URL: "https://x.io/a", Headline: "Big move"}
	c := Article{ID: 8, URL: "https://x.io/a", Headline: "Big move"}

	assert.Equal(t, "7-https://x.io/a-Big move", a.DedupKey())
	assert.Equal(t, a.DedupKey(), b.DedupKey(), "trimming must not change identity")
	assert.NotEqual(t, a.DedupKey(), c.DedupKey(), "different ids are different articles")
}
