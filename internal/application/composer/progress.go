package composer

import (
	"context"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/pkg/logger"
)

// ProgressReporter 接收管线进度事件。
// 实现方不得阻塞；管线不会因为上报失败而中断。
type ProgressReporter interface {
	Report(ctx context.Context, ev entity.ProgressEvent)
}

// ProgressFunc 函数式 ProgressReporter
type ProgressFunc func(ctx context.Context, ev entity.ProgressEvent)

func (f ProgressFunc) Report(ctx context.Context, ev entity.ProgressEvent) { f(ctx, ev) }

// NopReporter 丢弃所有进度事件
type NopReporter struct{}

func (NopReporter) Report(context.Context, entity.ProgressEvent) {}

// safeReport 上报进度并吞掉实现方的 panic，保证观测侧故障不影响生成
func safeReport(ctx context.Context, r ProgressReporter, ev entity.ProgressEvent) {
	if r == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn(ctx, "progress reporter panicked", "panic", rec, "stage", string(ev.Stage))
		}
	}()
	r.Report(ctx, ev)
}
