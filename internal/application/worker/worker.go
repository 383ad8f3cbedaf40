// Package worker 承载异步合成任务的执行逻辑
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"z-lecture-ai-api/internal/application/composer"
	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
	"z-lecture-ai-api/internal/infrastructure/messaging"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/metrics"
)

// ProgressPublisher 向订阅方广播进度事件
type ProgressPublisher interface {
	Publish(ctx context.Context, jobID string, ev entity.ProgressEvent)
}

// Worker 消费合成任务消息并驱动整条管线
type Worker struct {
	jobRepo     repository.JobRepository
	deckRepo    repository.DeckRepository
	svc         *composer.Service
	progressBus ProgressPublisher
}

// NewWorker 创建任务执行器
func NewWorker(
	jobRepo repository.JobRepository,
	deckRepo repository.DeckRepository,
	svc *composer.Service,
	progressBus ProgressPublisher,
) *Worker {
	return &Worker{
		jobRepo:     jobRepo,
		deckRepo:    deckRepo,
		svc:         svc,
		progressBus: progressBus,
	}
}

// HandleComposeJob 处理一条合成任务消息。
// 管线失败属于确定性结果：记录失败后正常 ack，不触发重投。
// 返回错误仅用于存储层故障等值得重投的场景。
func (w *Worker) HandleComposeJob(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.ComposeJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode compose job payload: %w", err)
	}
	ctx = logger.WithContext(ctx, logger.JobIDKey, payload.JobID)

	job, err := w.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Terminal() || job.Status == entity.JobStatusCancelled {
		logger.Info(ctx, "skipping job in terminal state", "status", string(job.Status))
		return nil
	}

	var req composer.ComposeRequest
	if err := json.Unmarshal(job.Request, &req); err != nil {
		w.finishFailed(ctx, job.ID, fmt.Sprintf("invalid job request: %v", err))
		return nil
	}

	if err := w.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		return err
	}

	deck, composeErr := w.svc.Compose(ctx, job.ID, &req, w.reporter(job.ID))
	if composeErr != nil {
		w.finishFailed(ctx, job.ID, composeErr.Error())
		return nil
	}

	if err := w.deckRepo.Create(ctx, deck); err != nil {
		// 存储层故障交给重投机制，课件可以重新生成
		logger.Error(ctx, "failed to persist deck", err, "deck_id", deck.ID)
		return err
	}
	if err := w.jobRepo.SetResult(ctx, job.ID, deck.ID, ""); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("success").Inc()
	logger.Info(ctx, "composition job completed", "deck_id", deck.ID, "slides", deck.SlideCount())
	return nil
}

// reporter 构造进度上报器：每条事件广播到进度总线，
// 阶段内百分比换算为整体进度后落库，落库序列只增不减
func (w *Worker) reporter(jobID string) composer.ProgressReporter {
	var persisted atomic.Int64
	persisted.Store(-1)
	return composer.ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		w.progressBus.Publish(ctx, jobID, ev)

		overall, ok := overallPercent(ev)
		if !ok {
			return
		}
		// 并发生成的事件到达顺序不定，整体进度回退的事件直接丢弃
		for {
			prev := persisted.Load()
			if int64(overall) <= prev {
				return
			}
			if persisted.CompareAndSwap(prev, int64(overall)) {
				break
			}
		}
		if err := w.jobRepo.UpdateProgress(ctx, jobID, overall); err != nil {
			logger.Warn(ctx, "failed to persist job progress", "error", err)
		}
	})
}

// overallPercent 把阶段内百分比映射到任务整体的 0-100 区间：
// 规划占 0-10，生成占 10-90，装配占 90-100。
// 终态进度由 SetResult 负责，不在此处落库。
func overallPercent(ev entity.ProgressEvent) (int, bool) {
	switch ev.Stage {
	case entity.StagePlanning:
		return ev.Percent / 10, true
	case entity.StageGenerating:
		return 10 + ev.Percent*80/100, true
	case entity.StageAssembling:
		return 90 + ev.Percent/10, true
	default:
		return 0, false
	}
}

func (w *Worker) finishFailed(ctx context.Context, jobID, reason string) {
	if err := w.jobRepo.SetResult(ctx, jobID, "", reason); err != nil {
		logger.Error(ctx, "failed to record job failure", err)
	}
	metrics.JobsProcessedTotal.WithLabelValues("failure").Inc()
}
