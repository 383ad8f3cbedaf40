// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"z-lecture-ai-api/internal/domain/entity"
)

// JobResponse 合成任务响应
type JobResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	DeckID         string    `json:"deck_id,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	LLMProvider    string    `json:"llm_provider,omitempty"`
	LLMModel       string    `json:"llm_model,omitempty"`
	SectionCount   int       `json:"section_count,omitempty"`
	DurationMs     int       `json:"duration_ms,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	CompletedAt    time.Time `json:"completed_at,omitempty"`
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs []*JobResponse `json:"jobs"`
}

// SubmitJobResponse 任务提交响应
type SubmitJobResponse struct {
	JobID string `json:"job_id"`
	// Status 任务当前状态；命中幂等键时返回已有任务的状态
	Status string `json:"status"`
	DeckID string `json:"deck_id,omitempty"`
	// Duplicate 为 true 表示命中幂等键，未创建新任务
	Duplicate bool `json:"duplicate,omitempty"`
}

// CancelJobResponse 取消任务响应
type CancelJobResponse struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.CompositionJob) *JobResponse {
	if j == nil {
		return nil
	}

	resp := &JobResponse{
		ID:             j.ID,
		Status:         string(j.Status),
		Progress:       j.Progress,
		DeckID:         j.DeckID,
		ErrorMessage:   j.ErrorMessage,
		LLMProvider:    j.LLMProvider,
		LLMModel:       j.LLMModel,
		SectionCount:   j.SectionCount,
		DurationMs:     j.DurationMs,
		IdempotencyKey: j.IdempotencyKey,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}

	if j.StartedAt != nil {
		resp.StartedAt = *j.StartedAt
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = *j.CompletedAt
	}

	return resp
}

// ToJobListResponse 将领域实体列表转换为响应 DTO
func ToJobListResponse(jobs []*entity.CompositionJob) *JobListResponse {
	resp := &JobListResponse{
		Jobs: make([]*JobResponse, 0, len(jobs)),
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, ToJobResponse(j))
	}
	return resp
}
