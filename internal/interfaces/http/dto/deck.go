// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"z-lecture-ai-api/internal/domain/entity"
)

// NavEntryResponse 导航索引项
type NavEntryResponse struct {
	SectionID int    `json:"section_id"`
	Position  int    `json:"position"`
	Label     string `json:"label"`
}

// SlideResponse 单张幻灯片响应
type SlideResponse struct {
	SectionID int    `json:"section_id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	HTML      string `json:"html"`
	Repaired  bool   `json:"repaired,omitempty"`
}

// DeckResponse 课件元信息响应，不含 HTML 正文
type DeckResponse struct {
	ID          string             `json:"id"`
	JobID       string             `json:"job_id,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Theme       string             `json:"theme,omitempty"`
	SlideCount  int                `json:"slide_count"`
	Nav         []NavEntryResponse `json:"nav,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// DeckDetailResponse 课件详情响应，含全部幻灯片
type DeckDetailResponse struct {
	DeckResponse
	Slides []SlideResponse `json:"slides"`
}

// DeckListResponse 课件列表响应
type DeckListResponse struct {
	Decks []*DeckResponse `json:"decks"`
}

// ToDeckResponse 将领域实体转换为元信息响应
func ToDeckResponse(d *entity.Deck) *DeckResponse {
	if d == nil {
		return nil
	}
	nav := make([]NavEntryResponse, 0, len(d.Nav))
	for _, n := range d.Nav {
		nav = append(nav, NavEntryResponse{
			SectionID: n.SectionID,
			Position:  n.Position,
			Label:     n.Label,
		})
	}
	return &DeckResponse{
		ID:          d.ID,
		JobID:       d.JobID,
		Title:       d.Title,
		Description: d.Description,
		Theme:       d.Theme,
		SlideCount:  d.SlideCount(),
		Nav:         nav,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDeckDetailResponse 将领域实体转换为详情响应
func ToDeckDetailResponse(d *entity.Deck) *DeckDetailResponse {
	if d == nil {
		return nil
	}
	slides := make([]SlideResponse, 0, len(d.Slides))
	for _, s := range d.Slides {
		slides = append(slides, SlideResponse{
			SectionID: s.SectionID,
			Title:     s.Title,
			Kind:      string(s.Kind),
			HTML:      s.HTML,
			Repaired:  s.Repaired,
		})
	}
	return &DeckDetailResponse{
		DeckResponse: *ToDeckResponse(d),
		Slides:       slides,
	}
}

// ToDeckListResponse 将领域实体列表转换为响应 DTO
func ToDeckListResponse(decks []*entity.Deck) *DeckListResponse {
	resp := &DeckListResponse{
		Decks: make([]*DeckResponse, 0, len(decks)),
	}
	for _, d := range decks {
		resp.Decks = append(resp.Decks, ToDeckResponse(d))
	}
	return resp
}
