// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
	"z-lecture-ai-api/internal/interfaces/http/dto"
	"z-lecture-ai-api/pkg/logger"
)

// JobHandler 合成任务处理器
type JobHandler struct {
	jobRepo repository.JobRepository
}

// NewJobHandler 创建合成任务处理器
func NewJobHandler(jobRepo repository.JobRepository) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
	}
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Description 获取指定合成任务的状态与进度
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
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

	dto.Success(c, dto.ToJobResponse(job))
}

// CancelJob 取消任务
// @Summary 取消任务
// @Description 取消尚未完成的合成任务。已在 worker 中执行的任务不会被中断，但结果不再写回。
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.CancelJobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "任务已结束"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [delete]
func (h *JobHandler) CancelJob(c *gin.Context) {
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

	if job.Status == entity.JobStatusCompleted || job.Status == entity.JobStatusFailed {
		dto.Conflict(c, "job already finished")
		return
	}

	if job.Status == entity.JobStatusCancelled {
		dto.Success(c, &dto.CancelJobResponse{
			ID:        jobID,
			Cancelled: true,
		})
		return
	}

	if err := h.jobRepo.UpdateStatus(ctx, jobID, entity.JobStatusCancelled); err != nil {
		logger.Error(ctx, "failed to cancel job", err, "job_id", jobID)
		dto.InternalError(c, "failed to cancel job")
		return
	}

	dto.Success(c, &dto.CancelJobResponse{
		ID:        jobID,
		Cancelled: true,
	})
}

// ListJobs 按状态列出任务
// @Summary 任务列表
// @Description 分页列出合成任务，可按状态过滤
// @Tags Jobs
// @Accept json
// @Produce json
// @Param status query string false "任务状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)
	status := entity.JobStatus(c.Query("status"))

	result, err := h.jobRepo.List(ctx, status, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list jobs", err)
		dto.InternalError(c, "failed to list jobs")
		return
	}

	resp := dto.ToJobListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}
