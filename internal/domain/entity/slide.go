package entity

import "strings"

// Slide 一张已生成的幻灯片，对应一节大纲。
// 由且仅由一个 builder 创建，在交付 assembler 之前归管线协调器所有。
type Slide struct {
	SectionID int         `json:"section_id"`
	Title     string      `json:"title"`
	Kind      SectionKind `json:"kind"`
	// HTML 自包含的 <section> 内容块
	HTML string `json:"html"`
	// Repaired 内容经过修复阶梯的防御性包装
	Repaired bool `json:"repaired,omitempty"`
}

// ContentChars 返回去除首尾空白后的内容长度
func (s *Slide) ContentChars() int {
	return len(strings.TrimSpace(s.HTML))
}
