package entity

import (
	"encoding/json"
	"time"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// CompositionJob 一次课件合成任务
type CompositionJob struct {
	ID             string          `json:"id"`
	DeckID         string          `json:"deck_id,omitempty"`
	Status         JobStatus       `json:"status"`
	Request        json.RawMessage `json:"request"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	LLMProvider    string          `json:"llm_provider,omitempty"`
	LLMModel       string          `json:"llm_model,omitempty"`
	TokensPrompt   int             `json:"tokens_prompt,omitempty"`
	TokensComplete int             `json:"tokens_completion,omitempty"`
	SectionCount   int             `json:"section_count,omitempty"`
	DurationMs     int             `json:"duration_ms,omitempty"`
	Progress       int             `json:"progress"` // 任务进度 (0-100)
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// NewCompositionJob 创建新任务
func NewCompositionJob(id string, request json.RawMessage) *CompositionJob {
	return &CompositionJob{
		ID:        id,
		Status:    JobStatusPending,
		Request:   request,
		CreatedAt: time.Now(),
	}
}

// Start 开始执行任务
func (j *CompositionJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete 完成任务
func (j *CompositionJob) Complete(deckID string) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.DeckID = deckID
	j.Progress = 100
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *CompositionJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// UpdateProgress 更新任务进度
func (j *CompositionJob) UpdateProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
}

// Terminal 任务是否已进入终态
func (j *CompositionJob) Terminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}
