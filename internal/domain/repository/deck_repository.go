package repository

import (
	"context"

	"z-lecture-ai-api/internal/domain/entity"
)

// DeckRepository 课件仓储接口
type DeckRepository interface {
	// Create 保存合成完成的课件
	Create(ctx context.Context, deck *entity.Deck) error

	// GetByID 根据 ID 获取课件（含幻灯片与导航索引）
	GetByID(ctx context.Context, id string) (*entity.Deck, error)

	// GetHTML 仅获取课件的 HTML 文档
	GetHTML(ctx context.Context, id string) (string, error)

	// List 按创建时间倒序列出课件
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Deck], error)

	// Delete 删除课件
	Delete(ctx context.Context, id string) error
}
