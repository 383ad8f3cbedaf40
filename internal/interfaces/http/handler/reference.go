// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"z-lecture-ai-api/internal/application/reference"
	"z-lecture-ai-api/internal/interfaces/http/dto"
	"z-lecture-ai-api/pkg/logger"
)

// ReferenceHandler 参考资料处理器
type ReferenceHandler struct {
	engine *reference.Engine
}

// NewReferenceHandler 创建参考资料处理器
func NewReferenceHandler(engine *reference.Engine) *ReferenceHandler {
	return &ReferenceHandler{
		engine: engine,
	}
}

// IndexDocument 索引参考文档
// @Summary 索引参考文档
// @Description 切分、向量化并写入一份参考文档，供合成时检索
// @Tags References
// @Accept json
// @Produce json
// @Param request body dto.IndexDocumentRequest true "文档内容"
// @Success 201 {object} dto.Response[dto.IndexDocumentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "向量库未启用"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/references [post]
func (h *ReferenceHandler) IndexDocument(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IndexDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	doc := reference.Document{
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	chunkCount, err := h.engine.Index(ctx, doc)
	if err != nil {
		if stderrors.Is(err, reference.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "reference search is disabled")
			return
		}
		logger.Error(ctx, "failed to index reference document", err, "document_id", doc.ID)
		dto.InternalError(c, "failed to index document")
		return
	}

	dto.Created(c, &dto.IndexDocumentResponse{
		DocumentID: doc.ID,
		ChunkCount: chunkCount,
	})
}

// SearchReferences 检索参考资料
// @Summary 检索参考资料
// @Description 对已索引的参考文档做语义检索。向量库不可用时返回空结果与原因。
// @Tags References
// @Accept json
// @Produce json
// @Param request body dto.SearchReferencesRequest true "检索条件"
// @Success 200 {object} dto.Response[dto.SearchReferencesResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/references/search [post]
func (h *ReferenceHandler) SearchReferences(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchReferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.engine.Search(ctx, reference.SearchInput{
		Query:       req.Query,
		TopK:        req.TopK,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	dto.Success(c, dto.ToSearchReferencesResponse(out))
}

// DeleteDocument 删除参考文档
// @Summary 删除参考文档
// @Description 删除一份参考文档的全部向量分块
// @Tags References
// @Produce json
// @Param rid path string true "文档 ID"
// @Success 204 "no content"
// @Failure 503 {object} dto.ErrorResponse "向量库未启用"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/references/{rid} [delete]
func (h *ReferenceHandler) DeleteDocument(c *gin.Context) {
	ctx := c.Request.Context()
	docID := dto.BindDocumentID(c)

	if err := h.engine.Remove(ctx, docID); err != nil {
		if stderrors.Is(err, reference.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "reference search is disabled")
			return
		}
		logger.Error(ctx, "failed to delete reference document", err, "document_id", docID)
		dto.InternalError(c, "failed to delete document")
		return
	}

	dto.NoContent(c)
}
