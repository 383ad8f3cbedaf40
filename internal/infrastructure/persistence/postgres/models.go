package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"z-lecture-ai-api/internal/domain/entity"
)

// jobModel composition_jobs 表的持久化模型
type jobModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	DeckID         string    `gorm:"column:deck_id"`
	Status         string    `gorm:"column:status;index"`
	Request        []byte    `gorm:"column:request;type:jsonb"`
	ErrorMessage   string    `gorm:"column:error_message"`
	LLMProvider    string    `gorm:"column:llm_provider"`
	LLMModel       string    `gorm:"column:llm_model"`
	TokensPrompt   int       `gorm:"column:tokens_prompt"`
	TokensComplete int       `gorm:"column:tokens_completion"`
	SectionCount   int       `gorm:"column:section_count"`
	DurationMs     int       `gorm:"column:duration_ms"`
	Progress       int       `gorm:"column:progress"`
	IdempotencyKey *string   `gorm:"column:idempotency_key;uniqueIndex"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (jobModel) TableName() string { return "composition_jobs" }

func jobToModel(j *entity.CompositionJob) *jobModel {
	m := &jobModel{
		ID:             j.ID,
		DeckID:         j.DeckID,
		Status:         string(j.Status),
		Request:        []byte(j.Request),
		ErrorMessage:   j.ErrorMessage,
		LLMProvider:    j.LLMProvider,
		LLMModel:       j.LLMModel,
		TokensPrompt:   j.TokensPrompt,
		TokensComplete: j.TokensComplete,
		SectionCount:   j.SectionCount,
		DurationMs:     j.DurationMs,
		Progress:       j.Progress,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
	// 空幂等键存 NULL，避免撞唯一索引
	if j.IdempotencyKey != "" {
		key := j.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m
}

func jobToEntity(m *jobModel) *entity.CompositionJob {
	j := &entity.CompositionJob{
		ID:             m.ID,
		DeckID:         m.DeckID,
		Status:         entity.JobStatus(m.Status),
		Request:        json.RawMessage(m.Request),
		ErrorMessage:   m.ErrorMessage,
		LLMProvider:    m.LLMProvider,
		LLMModel:       m.LLMModel,
		TokensPrompt:   m.TokensPrompt,
		TokensComplete: m.TokensComplete,
		SectionCount:   m.SectionCount,
		DurationMs:     m.DurationMs,
		Progress:       m.Progress,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
	if m.IdempotencyKey != nil {
		j.IdempotencyKey = *m.IdempotencyKey
	}
	return j
}

// deckModel decks 表的持久化模型；幻灯片和导航索引整体存 jsonb
type deckModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	JobID       string    `gorm:"column:job_id;index"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Slides      []byte    `gorm:"column:slides;type:jsonb"`
	Nav         []byte    `gorm:"column:nav;type:jsonb"`
	HTML        string    `gorm:"column:html"`
	Theme       string    `gorm:"column:theme"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (deckModel) TableName() string { return "decks" }

func deckToModel(d *entity.Deck) (*deckModel, error) {
	slides, err := json.Marshal(d.Slides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slides: %w", err)
	}
	nav, err := json.Marshal(d.Nav)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nav: %w", err)
	}
	return &deckModel{
		ID:          d.ID,
		JobID:       d.JobID,
		Title:       d.Title,
		Description: d.Description,
		Slides:      slides,
		Nav:         nav,
		HTML:        d.HTML,
		Theme:       d.Theme,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func deckToEntity(m *deckModel) (*entity.Deck, error) {
	d := &entity.Deck{
		ID:          m.ID,
		JobID:       m.JobID,
		Title:       m.Title,
		Description: m.Description,
		HTML:        m.HTML,
		Theme:       m.Theme,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Slides) > 0 {
		if err := json.Unmarshal(m.Slides, &d.Slides); err != nil {
			return nil, fmt.Errorf("failed to unmarshal slides: %w", err)
		}
	}
	if len(m.Nav) > 0 {
		if err := json.Unmarshal(m.Nav, &d.Nav); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nav: %w", err)
		}
	}
	return d, nil
}

// IsUniqueViolation 判断是否为唯一约束冲突（幂等键重复提交）
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
