package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// ComposeJobMessage 合成任务消息
type ComposeJobMessage struct {
	JobID          string          `json:"job_id"`
	Request        json.RawMessage `json:"request"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// PublishComposeJob 发布课件合成任务
func (p *Producer) PublishComposeJob(ctx context.Context, job *ComposeJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, MessageTypeComposeJob, job.JobID, job)
	if err != nil {
		return "", err
	}
	if job.IdempotencyKey != "" {
		msg.SetMetadata("idempotency_key", job.IdempotencyKey)
	}
	return p.Publish(ctx, StreamCompose, msg)
}

// QueueDepth 获取流当前长度，供指标上报
func (p *Producer) QueueDepth(ctx context.Context, stream Stream) (int64, error) {
	return p.client.XLen(ctx, string(stream)).Result()
}
