package model

// SlideGenerateInput 幻灯片生成链输入
type SlideGenerateInput struct {
	LectureTitle       string
	LectureDescription string
	AudienceLevel      string
	AudienceSpecialty  string

	SectionID          int
	SectionTitle       string
	SectionDescription string
	SectionTags        []string
	SectionKind        string

	Attachments []TextAttachment
	// RetrievedContext 针对本节检索到的参考资料，可为空
	RetrievedContext string

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// SlideGenerateOutput 幻灯片生成链输出
type SlideGenerateOutput struct {
	// Content 模型原始输出（未经修复阶梯处理）
	Content string
	Meta    LLMUsageMeta
}
