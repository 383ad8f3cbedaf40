package entity

import "time"

// NavEntry 导航索引项：节 ID 到幻灯片位置的稳定映射
type NavEntry struct {
	SectionID int    `json:"section_id"`
	Position  int    `json:"position"`
	Label     string `json:"label"`
}

// Deck 最终合成的课件文档。由 assembler 一次性创建，终态不可变。
type Deck struct {
	ID          string     `json:"id"`
	JobID       string     `json:"job_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	// Slides 按节 ID 升序排列
	Slides []Slide `json:"slides"`
	// Nav 导航索引，与 Slides 顺序一致
	Nav []NavEntry `json:"nav"`
	// HTML 完整的自包含 HTML 文档
	HTML      string    `json:"html"`
	Theme     string    `json:"theme,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SlideCount 幻灯片数量
func (d *Deck) SlideCount() int {
	return len(d.Slides)
}

// PositionOf 返回节 ID 对应的幻灯片位置，不存在时返回 -1
func (d *Deck) PositionOf(sectionID int) int {
	for _, n := range d.Nav {
		if n.SectionID == sectionID {
			return n.Position
		}
	}
	return -1
}
