// Package composer 实现课件合成管线：规划、并发生成、修复与确定性装配
package composer

import "fmt"

// PlanningError 大纲规划失败
type PlanningError struct {
	Reason string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("outline planning failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("outline planning failed: %s", e.Reason)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// SlideGenerationError 单节幻灯片生成失败
type SlideGenerationError struct {
	SectionID int
	Title     string
	Reason    string
	Err       error
}

func (e *SlideGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slide generation failed for section %d (%s): %s: %v", e.SectionID, e.Title, e.Reason, e.Err)
	}
	return fmt.Sprintf("slide generation failed for section %d (%s): %s", e.SectionID, e.Title, e.Reason)
}

func (e *SlideGenerationError) Unwrap() error { return e.Err }

// PipelineError 管线整体失败，携带首个触发失败的节错误
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("composition pipeline failed: %v", e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// AssemblyError 装配产物未通过校验
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("deck assembly failed: %s", e.Reason)
}
