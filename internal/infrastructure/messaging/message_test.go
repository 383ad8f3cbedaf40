package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	type payload struct {
		JobID string `json:"job_id"`
	}

	msg, err := NewMessage("m1", MessageTypeComposeJob, "job-1", payload{JobID: "job-1"})
	require.NoError(t, err)

	msg.SetMetadata("retry", "0")
	assert.Equal(t, "0", msg.GetMetadata("retry"))
	assert.Equal(t, "", msg.GetMetadata("missing"))

	var got payload
	require.NoError(t, msg.UnmarshalPayload(&got))
	assert.Equal(t, "job-1", got.JobID)
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:stream:lecture:compose", StreamCompose.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        10 * time.Second,
		Multiplier: 2,
	}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	// capped at Max
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(10))
}
