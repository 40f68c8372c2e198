package consumer

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsExpectedReadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil reply on block timeout", redis.Nil, true},
		{"context canceled", context.Canceled, true},
		{"wrapped context canceled", fmt.Errorf("read failed: %w", context.Canceled), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline exceeded", fmt.Errorf("read failed: %w", context.DeadlineExceeded), true},
		{"connection failure", fmt.Errorf("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isExpectedReadError(tt.err))
		})
	}
}
