package node

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableLLMError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", errors.New("request failed: 429 Too Many Requests"), true},
		{"server error", errors.New("unexpected status 503 service unavailable"), true},
		{"gateway timeout", errors.New("504 gateway timeout"), true},
		{"connection reset", fmt.Errorf("post failed: %w", errors.New("read tcp: connection reset by peer")), true},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"bad request", errors.New("400 bad request: invalid model name"), false},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"content policy", errors.New("content filtered by provider policy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableLLMError(tt.err))
		})
	}
}
