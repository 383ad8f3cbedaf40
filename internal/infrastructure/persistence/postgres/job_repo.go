package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "z-lecture-ai-api/pkg/errors"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
)

// JobRepository 合成任务仓储实现
type JobRepository struct {
	client *Client
}

func NewJobRepository(client *Client) *JobRepository {
	return &JobRepository{client: client}
}

var _ repository.JobRepository = (*JobRepository)(nil)

// Create 创建任务；幂等键冲突时返回已有任务可感知的错误
func (r *JobRepository) Create(ctx context.Context, job *entity.CompositionJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Create")
	defer span.End()

	m := jobToModel(job)
	if err := r.client.db.WithContext(ctx).Create(m).Error; err != nil {
		if IsUniqueViolation(err) {
			return apperrors.ErrJobAlreadyExists.WithError(err)
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取任务
func (r *JobRepository) GetByID(ctx context.Context, id string) (*entity.CompositionJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByID")
	defer span.End()

	var m jobModel
	if err := r.client.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return jobToEntity(&m), nil
}

// GetByIdempotencyKey 根据幂等键获取任务
func (r *JobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.CompositionJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByIdempotencyKey")
	defer span.End()

	var m jobModel
	if err := r.client.db.WithContext(ctx).First(&m, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job by idempotency key: %w", err)
	}
	return jobToEntity(&m), nil
}

// Update 更新任务
func (r *JobRepository) Update(ctx context.Context, job *entity.CompositionJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Update")
	defer span.End()

	job.UpdatedAt = time.Now()
	if err := r.client.db.WithContext(ctx).Save(jobToModel(job)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// UpdateStatus 更新任务状态
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.UpdateStatus")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// UpdateProgress 更新任务进度
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.UpdateProgress")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now(),
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	return nil
}

// MarkRunning 标记任务为运行中
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.MarkRunning")
	defer span.End()

	now := time.Now()
	if err := r.client.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     entity.JobStatusRunning,
		"started_at": now,
		"updated_at": now,
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return nil
}

// SetResult 记录任务终态：deckID 非空视为成功，否则按失败处理
func (r *JobRepository) SetResult(ctx context.Context, id string, deckID string, errMsg string) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.SetResult")
	defer span.End()

	now := time.Now()
	updates := map[string]interface{}{
		"completed_at": now,
		"updated_at":   now,
	}
	if deckID != "" {
		updates["deck_id"] = deckID
		updates["status"] = entity.JobStatusCompleted
		updates["progress"] = 100
	} else {
		updates["error_message"] = errMsg
		updates["status"] = entity.JobStatusFailed
	}

	if err := r.client.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set job result: %w", err)
	}
	return nil
}

// List 按状态列出任务；status 为空列出全部
func (r *JobRepository) List(ctx context.Context, status entity.JobStatus, pagination repository.Pagination) (*repository.PagedResult[*entity.CompositionJob], error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.List")
	defer span.End()

	query := r.client.db.WithContext(ctx).Model(&jobModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	var models []*jobModel
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&models).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*entity.CompositionJob, 0, len(models))
	for _, m := range models {
		jobs = append(jobs, jobToEntity(m))
	}
	return repository.NewPagedResult(jobs, total, pagination), nil
}
