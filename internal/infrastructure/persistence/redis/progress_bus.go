package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/pkg/logger"
)

// ProgressBus 基于 Redis Pub/Sub 广播合成进度。
// worker 发布，api-gateway 订阅后经 SSE 透传给前端。
type ProgressBus struct {
	client *Client
}

func NewProgressBus(client *Client) *ProgressBus {
	return &ProgressBus{client: client}
}

func progressChannel(jobID string) string {
	return fmt.Sprintf("job:progress:%s", jobID)
}

// Publish 发布进度事件；发布失败只记日志，不阻断管线
func (b *ProgressBus) Publish(ctx context.Context, jobID string, ev entity.ProgressEvent) {
	ctx, span := tracer.Start(ctx, "progress_bus.Publish",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("progress.stage", string(ev.Stage)),
		))
	defer span.End()

	payload, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "failed to marshal progress event", "error", err, "job_id", jobID)
		return
	}
	if err := b.client.rdb.Publish(ctx, progressChannel(jobID), payload).Err(); err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "failed to publish progress event", "error", err, "job_id", jobID)
	}
}

// Subscribe 订阅指定任务的进度流。
// 返回的通道在 ctx 取消后关闭；调用方无需手动退订。
func (b *ProgressBus) Subscribe(ctx context.Context, jobID string) <-chan entity.ProgressEvent {
	sub := b.client.rdb.Subscribe(ctx, progressChannel(jobID))
	out := make(chan entity.ProgressEvent, 16)

	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev entity.ProgressEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Warn(ctx, "dropping malformed progress event", "error", err, "job_id", jobID)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
