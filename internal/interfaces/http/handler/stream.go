// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
	redisinfra "z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/internal/interfaces/http/dto"
	"z-lecture-ai-api/pkg/logger"
)

// 心跳间隔，防止中间代理掐断空闲连接
const sseHeartbeatInterval = 15 * time.Second

// StreamHandler 进度事件流处理器
type StreamHandler struct {
	jobRepo     repository.JobRepository
	progressBus *redisinfra.ProgressBus
}

// NewStreamHandler 创建进度事件流处理器
func NewStreamHandler(jobRepo repository.JobRepository, progressBus *redisinfra.ProgressBus) *StreamHandler {
	return &StreamHandler{
		jobRepo:     jobRepo,
		progressBus: progressBus,
	}
}

// StreamJobEvents 订阅任务进度事件
// @Summary 订阅任务进度事件
// @Description 通过 SSE 推送合成任务的进度事件，任务进入终态后关闭连接
// @Tags Jobs
// @Produce text/event-stream
// @Param jid path string true "任务 ID"
// @Success 200 "SSE stream"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid}/events [get]
func (h *StreamHandler) StreamJobEvents(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		logger.Error(ctx, "failed to get job", err, "job_id", jobID)
		dto.InternalError(c, "failed to get job")
		return
	}
	if job == nil {
		dto.NotFound(c, "job not found")
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 终态任务只推一条快照事件
	if job.Terminal() {
		c.SSEvent("progress", snapshotEvent(job))
		c.Writer.Flush()
		return
	}

	events := h.progressBus.Subscribe(ctx, jobID)
	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("progress", ev)
			if ev.Stage == entity.StageCompleted || ev.Stage == entity.StageFailed {
				return false
			}
			return true

		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().Unix()})
			return true

		case <-ctx.Done():
			// 客户端断开
			return false
		}
	})
}

// snapshotEvent 根据任务终态构造单条进度事件
func snapshotEvent(job *entity.CompositionJob) entity.ProgressEvent {
	ev := entity.ProgressEvent{
		Stage:   entity.StageCompleted,
		Percent: 100,
	}
	if job.Status == entity.JobStatusFailed {
		ev.Stage = entity.StageFailed
		ev.Percent = job.Progress
		ev.Message = job.ErrorMessage
	}
	if job.Status == entity.JobStatusCancelled {
		ev.Stage = entity.StageFailed
		ev.Percent = job.Progress
		ev.Message = "job cancelled"
	}
	return ev
}
