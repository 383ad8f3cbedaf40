package entity

// ProgressStage 进度事件所处的管线阶段
type ProgressStage string

const (
	StagePlanning   ProgressStage = "planning"
	StageGenerating ProgressStage = "generating"
	StageAssembling ProgressStage = "assembling"
	StageCompleted  ProgressStage = "completed"
	StageFailed     ProgressStage = "failed"
)

// ProgressEvent 管线进度事件。
// SectionID 为 0 表示管线级事件；非 0 表示来自对应节的 builder。
// Percent 仅对同一生产者单调递增，不同生产者之间无顺序保证。
type ProgressEvent struct {
	Stage     ProgressStage `json:"stage"`
	SectionID int           `json:"section_id,omitempty"`
	Percent   int           `json:"percent"`
	Message   string        `json:"message,omitempty"`
}
