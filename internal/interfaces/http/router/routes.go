// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 课件合成
	compositions := v1.Group("/compositions")
	{
		compositions.POST("", h.Composition.CreateComposition)
		compositions.POST("/sync", h.Composition.ComposeSync)
	}

	// 任务管理
	jobs := v1.Group("/jobs")
	{
		jobs.GET("", h.Job.ListJobs)
		jobs.GET("/:jid", h.Job.GetJob)
		jobs.DELETE("/:jid", h.Job.CancelJob)
		jobs.GET("/:jid/events", h.Stream.StreamJobEvents) // SSE
	}

	// 课件管理
	decks := v1.Group("/decks")
	{
		decks.GET("", h.Deck.ListDecks)
		decks.GET("/:did", h.Deck.GetDeck)
		decks.GET("/:did/html", h.Deck.GetDeckHTML)
		decks.DELETE("/:did", h.Deck.DeleteDeck)
	}

	// 参考资料
	references := v1.Group("/references")
	{
		references.POST("", h.Reference.IndexDocument)
		references.POST("/search", h.Reference.SearchReferences)
		references.DELETE("/:rid", h.Reference.DeleteDocument)
	}
}
