// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"z-lecture-ai-api/internal/application/composer"
	"z-lecture-ai-api/internal/config"
	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
	"z-lecture-ai-api/internal/infrastructure/messaging"
	redisinfra "z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/internal/interfaces/http/dto"
	"z-lecture-ai-api/pkg/errors"
	"z-lecture-ai-api/pkg/logger"
)

// IdempotencyKeyHeader 幂等键请求头
const IdempotencyKeyHeader = "Idempotency-Key"

// CompositionHandler 课件合成处理器
type CompositionHandler struct {
	cfg         *config.Config
	jobRepo     repository.JobRepository
	deckRepo    repository.DeckRepository
	producer    *messaging.Producer
	svc         *composer.Service
	progressBus *redisinfra.ProgressBus
}

// NewCompositionHandler 创建课件合成处理器
func NewCompositionHandler(
	cfg *config.Config,
	jobRepo repository.JobRepository,
	deckRepo repository.DeckRepository,
	producer *messaging.Producer,
	svc *composer.Service,
	progressBus *redisinfra.ProgressBus,
) *CompositionHandler {
	return &CompositionHandler{
		cfg:         cfg,
		jobRepo:     jobRepo,
		deckRepo:    deckRepo,
		producer:    producer,
		svc:         svc,
		progressBus: progressBus,
	}
}

// CreateComposition 提交异步合成任务
// @Summary 提交课件合成任务
// @Description 创建异步合成任务并入队，返回任务 ID。携带幂等键时重复提交返回已有任务。
// @Tags Compositions
// @Accept json
// @Produce json
// @Param request body dto.ComposeDeckRequest true "合成请求"
// @Success 202 {object} dto.Response[dto.SubmitJobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/compositions [post]
func (h *CompositionHandler) CreateComposition(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ComposeDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	idemKey := c.GetHeader(IdempotencyKeyHeader)
	if idemKey == "" {
		idemKey = req.IdempotencyKey
	}

	// 幂等键命中时直接返回已有任务
	if idemKey != "" {
		existing, err := h.jobRepo.GetByIdempotencyKey(ctx, idemKey)
		if err != nil {
			logger.Error(ctx, "failed to look up idempotency key", err)
			dto.InternalError(c, "failed to create composition job")
			return
		}
		if existing != nil {
			dto.Success(c, &dto.SubmitJobResponse{
				JobID:     existing.ID,
				Status:    string(existing.Status),
				DeckID:    existing.DeckID,
				Duplicate: true,
			})
			return
		}
	}

	composeReq := req.ToComposeRequest()
	provider, model, err := resolveProviderModel(h.cfg, composeReq.Provider, composeReq.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	composeReq.Provider = provider
	composeReq.Model = model

	if err := composeReq.Validate(); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	raw, err := json.Marshal(composeReq)
	if err != nil {
		dto.BadRequest(c, "failed to encode request: "+err.Error())
		return
	}

	job := entity.NewCompositionJob(uuid.NewString(), raw)
	job.IdempotencyKey = idemKey
	job.LLMProvider = provider
	job.LLMModel = model

	if err := h.jobRepo.Create(ctx, job); err != nil {
		// 幂等键并发冲突：返回先到者创建的任务
		if stderrors.Is(err, errors.ErrJobAlreadyExists) && idemKey != "" {
			existing, lookupErr := h.jobRepo.GetByIdempotencyKey(ctx, idemKey)
			if lookupErr == nil && existing != nil {
				dto.Success(c, &dto.SubmitJobResponse{
					JobID:     existing.ID,
					Status:    string(existing.Status),
					DeckID:    existing.DeckID,
					Duplicate: true,
				})
				return
			}
		}
		logger.Error(ctx, "failed to create composition job", err)
		dto.InternalError(c, "failed to create composition job")
		return
	}

	if _, err := h.producer.PublishComposeJob(ctx, &messaging.ComposeJobMessage{
		JobID:          job.ID,
		Request:        raw,
		IdempotencyKey: idemKey,
	}); err != nil {
		logger.Error(ctx, "failed to enqueue composition job", err, "job_id", job.ID)
		if setErr := h.jobRepo.SetResult(ctx, job.ID, "", "failed to enqueue job"); setErr != nil {
			logger.Error(ctx, "failed to mark job failed", setErr, "job_id", job.ID)
		}
		dto.InternalError(c, "failed to enqueue composition job")
		return
	}

	dto.Accepted(c, &dto.SubmitJobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// ComposeSync 同步合成课件
// @Summary 同步合成课件
// @Description 在请求内完成整条合成管线并返回课件详情，适用于小规模请求与调试
// @Tags Compositions
// @Accept json
// @Produce json
// @Param request body dto.ComposeDeckRequest true "合成请求"
// @Success 201 {object} dto.Response[dto.DeckDetailResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/compositions/sync [post]
func (h *CompositionHandler) ComposeSync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ComposeDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	composeReq := req.ToComposeRequest()
	provider, model, err := resolveProviderModel(h.cfg, composeReq.Provider, composeReq.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	composeReq.Provider = provider
	composeReq.Model = model

	if err := composeReq.Validate(); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	raw, err := json.Marshal(composeReq)
	if err != nil {
		dto.BadRequest(c, "failed to encode request: "+err.Error())
		return
	}

	job := entity.NewCompositionJob(uuid.NewString(), raw)
	job.LLMProvider = provider
	job.LLMModel = model
	if err := h.jobRepo.Create(ctx, job); err != nil {
		logger.Error(ctx, "failed to create composition job", err)
		dto.InternalError(c, "failed to create composition job")
		return
	}
	if err := h.jobRepo.MarkRunning(ctx, job.ID); err != nil {
		logger.Error(ctx, "failed to mark job running", err, "job_id", job.ID)
	}

	reporter := composer.ProgressFunc(func(evCtx context.Context, ev entity.ProgressEvent) {
		h.progressBus.Publish(evCtx, job.ID, ev)
	})

	deck, composeErr := h.svc.Compose(ctx, job.ID, composeReq, reporter)
	if composeErr != nil {
		if setErr := h.jobRepo.SetResult(ctx, job.ID, "", composeErr.Error()); setErr != nil {
			logger.Error(ctx, "failed to record job failure", setErr, "job_id", job.ID)
		}
		dto.AppError(c, composeErrToApp(composeErr))
		return
	}

	if err := h.deckRepo.Create(ctx, deck); err != nil {
		logger.Error(ctx, "failed to persist deck", err, "job_id", job.ID)
		dto.InternalError(c, "failed to persist deck")
		return
	}
	if err := h.jobRepo.SetResult(ctx, job.ID, deck.ID, ""); err != nil {
		logger.Error(ctx, "failed to record job result", err, "job_id", job.ID)
	}

	dto.Created(c, dto.ToDeckDetailResponse(deck))
}

// composeErrToApp 将管线错误映射为对外的 AppError
func composeErrToApp(err error) error {
	var planErr *composer.PlanningError
	if stderrors.As(err, &planErr) {
		return errors.Wrap(err, errors.CodePlanningFailed, "lecture outline planning failed")
	}
	var pipeErr *composer.PipelineError
	if stderrors.As(err, &pipeErr) {
		return errors.Wrap(err, errors.CodePipelineFailed, "composition pipeline failed")
	}
	var asmErr *composer.AssemblyError
	if stderrors.As(err, &asmErr) {
		return errors.Wrap(err, errors.CodeAssemblyFailed, "deck assembly failed")
	}
	return errors.Wrap(err, errors.CodeInternalError, "composition failed")
}
