// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-lecture-ai-api/internal/application/reference"
)

// IndexDocumentRequest 参考文档索引请求
type IndexDocumentRequest struct {
	// ID 文档 ID，缺省时自动生成；重复索引同一 ID 会覆盖旧分块
	ID      string `json:"id,omitempty"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// IndexDocumentResponse 参考文档索引响应
type IndexDocumentResponse struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

// SearchReferencesRequest 参考资料检索请求
type SearchReferencesRequest struct {
	Query       string   `json:"query" binding:"required"`
	TopK        int      `json:"top_k,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// ReferenceChunkResponse 检索命中的分块
type ReferenceChunkResponse struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Score         float64 `json:"score"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title,omitempty"`
}

// SearchReferencesResponse 参考资料检索响应
type SearchReferencesResponse struct {
	Chunks         []ReferenceChunkResponse `json:"chunks"`
	DisabledReason string                   `json:"disabled_reason,omitempty"`
}

// ToSearchReferencesResponse 将检索输出转换为响应 DTO
func ToSearchReferencesResponse(out *reference.SearchOutput) *SearchReferencesResponse {
	resp := &SearchReferencesResponse{
		Chunks: make([]ReferenceChunkResponse, 0),
	}
	if out == nil {
		return resp
	}
	resp.DisabledReason = out.DisabledReason
	for _, c := range out.Chunks {
		resp.Chunks = append(resp.Chunks, ReferenceChunkResponse{
			ID:            c.ID,
			Text:          c.Text,
			Score:         c.Score,
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
		})
	}
	return resp
}
