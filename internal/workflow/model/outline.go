package model

// OutlinePlanInput 大纲规划链输入
type OutlinePlanInput struct {
	Request     string
	Attachments []TextAttachment
	// AudienceLevel / AudienceSpecialty 听众画像，空值由模板兜底
	AudienceLevel     string
	AudienceSpecialty string
	// RetrievedContext 参考资料检索结果，可为空
	RetrievedContext string
	// MaxSections 提示模型的节数上限
	MaxSections int

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// OutlinePlan 模型输出的大纲计划（解析自自由文本中的 JSON 片段）
type OutlinePlan struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Audience    *OutlinePlanAudience `json:"audience"`
	Sections    []OutlinePlanSection `json:"sections"`
}

// OutlinePlanAudience 模型输出中的听众画像
type OutlinePlanAudience struct {
	Level     string `json:"level"`
	Specialty string `json:"specialty"`
	Language  string `json:"language"`
}

// OutlinePlanSection 模型输出中的单节计划
type OutlinePlanSection struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Kind        string   `json:"kind"`
}
