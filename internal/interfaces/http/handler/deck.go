// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"z-lecture-ai-api/internal/domain/repository"
	"z-lecture-ai-api/internal/interfaces/http/dto"
	"z-lecture-ai-api/pkg/logger"
)

// DeckHandler 课件处理器
type DeckHandler struct {
	deckRepo repository.DeckRepository
}

// NewDeckHandler 创建课件处理器
func NewDeckHandler(deckRepo repository.DeckRepository) *DeckHandler {
	return &DeckHandler{
		deckRepo: deckRepo,
	}
}

// GetDeck 获取课件详情
// @Summary 获取课件详情
// @Description 获取课件元信息、导航索引与全部幻灯片
// @Tags Decks
// @Accept json
// @Produce json
// @Param did path string true "课件 ID"
// @Success 200 {object} dto.Response[dto.DeckDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/decks/{did} [get]
func (h *DeckHandler) GetDeck(c *gin.Context) {
	ctx := c.Request.Context()
	deckID := dto.BindDeckID(c)

	deck, err := h.deckRepo.GetByID(ctx, deckID)
	if err != nil {
		logger.Error(ctx, "failed to get deck", err, "deck_id", deckID)
		dto.InternalError(c, "failed to get deck")
		return
	}
	if deck == nil {
		dto.NotFound(c, "deck not found")
		return
	}

	dto.Success(c, dto.ToDeckDetailResponse(deck))
}

// GetDeckHTML 获取课件 HTML 文档
// @Summary 获取课件 HTML 文档
// @Description 返回自包含的 HTML 课件文档，可直接在浏览器中打开
// @Tags Decks
// @Produce html
// @Param did path string true "课件 ID"
// @Success 200 {string} string "HTML document"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/decks/{did}/html [get]
func (h *DeckHandler) GetDeckHTML(c *gin.Context) {
	ctx := c.Request.Context()
	deckID := dto.BindDeckID(c)

	html, err := h.deckRepo.GetHTML(ctx, deckID)
	if err != nil {
		logger.Error(ctx, "failed to get deck html", err, "deck_id", deckID)
		dto.InternalError(c, "failed to get deck html")
		return
	}
	if html == "" {
		dto.NotFound(c, "deck not found")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// ListDecks 课件列表
// @Summary 课件列表
// @Description 按创建时间倒序分页列出课件
// @Tags Decks
// @Accept json
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.DeckListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/decks [get]
func (h *DeckHandler) ListDecks(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.deckRepo.List(ctx, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list decks", err)
		dto.InternalError(c, "failed to list decks")
		return
	}

	resp := dto.ToDeckListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// DeleteDeck 删除课件
// @Summary 删除课件
// @Description 删除指定课件
// @Tags Decks
// @Produce json
// @Param did path string true "课件 ID"
// @Success 204 "no content"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/decks/{did} [delete]
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	ctx := c.Request.Context()
	deckID := dto.BindDeckID(c)

	if err := h.deckRepo.Delete(ctx, deckID); err != nil {
		logger.Error(ctx, "failed to delete deck", err, "deck_id", deckID)
		dto.InternalError(c, "failed to delete deck")
		return
	}

	dto.NoContent(c)
}
