// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// SectionKind 大纲节类型（未知类型一律回退为 content，绝不拒绝）
type SectionKind string

const (
	SectionKindContent      SectionKind = "content"
	SectionKindQuiz         SectionKind = "quiz"
	SectionKindCaseStudy    SectionKind = "case_study"
	SectionKindDiagram      SectionKind = "diagram"
	SectionKindDecisionFlow SectionKind = "decision_flow"
)

// ParseSectionKind 解析节类型，未知值回退为 SectionKindContent
func ParseSectionKind(s string) SectionKind {
	switch SectionKind(strings.ToLower(strings.TrimSpace(s))) {
	case SectionKindQuiz:
		return SectionKindQuiz
	case SectionKindCaseStudy:
		return SectionKindCaseStudy
	case SectionKindDiagram:
		return SectionKindDiagram
	case SectionKindDecisionFlow:
		return SectionKindDecisionFlow
	default:
		return SectionKindContent
	}
}

// AudienceProfile 听众画像
type AudienceProfile struct {
	Level     string `json:"level"`
	Specialty string `json:"specialty,omitempty"`
	Language  string `json:"language,omitempty"`
}

// OutlineSection 大纲中的一节，对应最终产物中的一张幻灯片
type OutlineSection struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Kind        SectionKind `json:"kind"`
}

// LectureOutline 课件大纲。创建后不可变，由管线协调器消费。
type LectureOutline struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Audience    AudienceProfile  `json:"audience"`
	Sections    []OutlineSection `json:"sections"`
}

// Validate 校验大纲不变量：至少一节，节 ID 唯一、从 1 开始且连续
func (o *LectureOutline) Validate() error {
	if o == nil {
		return fmt.Errorf("outline is nil")
	}
	if len(o.Sections) == 0 {
		return fmt.Errorf("outline has no sections")
	}
	seen := make(map[int]struct{}, len(o.Sections))
	for i := range o.Sections {
		s := &o.Sections[i]
		if s.ID != i+1 {
			return fmt.Errorf("section ids must be contiguous starting at 1, got %d at index %d", s.ID, i)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate section id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// SectionByID 按 ID 查找大纲节
func (o *LectureOutline) SectionByID(id int) (*OutlineSection, bool) {
	for i := range o.Sections {
		if o.Sections[i].ID == id {
			return &o.Sections[i], true
		}
	}
	return nil, false
}
