package composer

import (
	"fmt"
	"strings"

	"z-lecture-ai-api/internal/domain/entity"
	wfmodel "z-lecture-ai-api/internal/workflow/model"
)

// ComposeRequest 一次课件合成请求
type ComposeRequest struct {
	// Topic 讲座主题，必填
	Topic string `json:"topic"`
	// Audience 听众画像，缺省时由提示词模板兜底
	Audience entity.AudienceProfile `json:"audience,omitempty"`
	// Attachments 随请求附带的参考文本
	Attachments []wfmodel.TextAttachment `json:"attachments,omitempty"`
	// Theme 课件主题样式名，装配时写入文档
	Theme string `json:"theme,omitempty"`

	// UseReferenceSearch 是否启用向量库参考资料检索
	UseReferenceSearch bool `json:"use_reference_search,omitempty"`
	// ReferenceDocumentIDs 限定检索的文档范围，空表示全部
	ReferenceDocumentIDs []string `json:"reference_document_ids,omitempty"`

	// MaxSections 覆盖配置中的节数上限，0 表示使用配置值
	MaxSections int `json:"max_sections,omitempty"`

	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Validate 校验请求必填项
func (r *ComposeRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if r.MaxSections < 0 {
		return fmt.Errorf("max_sections must not be negative")
	}
	return nil
}
