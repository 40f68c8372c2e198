package repository

import (
	"testing"

	"tickrflow/internal/notifier/config"
	"tickrflow/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiAIRepositoryDefaultsRequestLimit(t *testing.T) {
	// a zero-value rate config must fall back to a sane limit, not panic
	repo, err := NewGeminiAIRepository(&config.Config{}, logger.NewNop(), nil)

	require.NoError(t, err)
	assert.NotNil(t, repo)
}
