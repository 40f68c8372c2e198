package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeminiAPIResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp GeminiAPIResponse
		want string
	}{
		{"no candidates", GeminiAPIResponse{}, ""},
		{"candidate without parts", GeminiAPIResponse{Candidates: []Candidate{{}}}, ""},
		{
			"first part of first candidate",
			GeminiAPIResponse{Candidates: []Candidate{
				{Content: Content{Parts: []Part{{Text: "summary"}, {Text: "ignored"}}}},
				{Content: Content{Parts: []Part{{Text: "also ignored"}}}},
			}},
			"summary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Text())
		})
	}
}
