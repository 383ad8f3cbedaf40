// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-lecture-ai-api/internal/application/composer"
	"z-lecture-ai-api/internal/domain/entity"
	wfmodel "z-lecture-ai-api/internal/workflow/model"
)

// TextAttachmentRequest 文本参考附件
type TextAttachmentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
}

// AudienceRequest 听众画像
type AudienceRequest struct {
	Level     string `json:"level,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Language  string `json:"language,omitempty"`
}

// ComposeDeckRequest 课件合成请求
type ComposeDeckRequest struct {
	Topic       string                  `json:"topic" binding:"required"`
	Audience    AudienceRequest         `json:"audience,omitempty"`
	Attachments []TextAttachmentRequest `json:"attachments,omitempty"`
	Theme       string                  `json:"theme,omitempty"`

	UseReferenceSearch   bool     `json:"use_reference_search,omitempty"`
	ReferenceDocumentIDs []string `json:"reference_document_ids,omitempty"`

	MaxSections int `json:"max_sections,omitempty"`

	// IdempotencyKey 幂等键，也可通过 Idempotency-Key 请求头传递
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// ToComposeRequest 转换为应用层合成请求
func (r *ComposeDeckRequest) ToComposeRequest() *composer.ComposeRequest {
	if r == nil {
		return nil
	}
	attachments := make([]wfmodel.TextAttachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		attachments = append(attachments, wfmodel.TextAttachment{
			Name:    a.Name,
			Content: a.Content,
		})
	}
	return &composer.ComposeRequest{
		Topic: r.Topic,
		Audience: entity.AudienceProfile{
			Level:     r.Audience.Level,
			Specialty: r.Audience.Specialty,
			Language:  r.Audience.Language,
		},
		Attachments:          attachments,
		Theme:                r.Theme,
		UseReferenceSearch:   r.UseReferenceSearch,
		ReferenceDocumentIDs: r.ReferenceDocumentIDs,
		MaxSections:          r.MaxSections,
		Provider:             r.Provider,
		Model:                r.Model,
		Temperature:          r.Temperature,
		MaxTokens:            r.MaxTokens,
	}
}
