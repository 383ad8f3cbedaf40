package model

import "time"

// TextAttachment 文本参考附件，管线只透传不解释
type TextAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// LLMUsageMeta LLM 调用的用量元数据
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}
