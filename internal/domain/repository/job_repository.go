package repository

import (
	"context"

	"z-lecture-ai-api/internal/domain/entity"
)

// JobRepository 合成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.CompositionJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.CompositionJob, error)

	// GetByIdempotencyKey 根据幂等键获取任务
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.CompositionJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.CompositionJob) error

	// UpdateStatus 更新任务状态
	UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error

	// UpdateProgress 更新任务进度（0-100）
	UpdateProgress(ctx context.Context, id string, progress int) error

	// MarkRunning 将任务置为运行中
	MarkRunning(ctx context.Context, id string) error

	// SetResult 记录任务结果：成功时写入 deck_id，失败时写入错误信息
	SetResult(ctx context.Context, id string, deckID string, errMsg string) error

	// List 按状态列出任务
	List(ctx context.Context, status entity.JobStatus, pagination Pagination) (*PagedResult[*entity.CompositionJob], error)
}
