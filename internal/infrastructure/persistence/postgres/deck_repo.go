package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
)

// DeckRepository 课件仓储实现
type DeckRepository struct {
	client *Client
}

func NewDeckRepository(client *Client) *DeckRepository {
	return &DeckRepository{client: client}
}

var _ repository.DeckRepository = (*DeckRepository)(nil)

// Create 保存合成完成的课件
func (r *DeckRepository) Create(ctx context.Context, deck *entity.Deck) error {
	ctx, span := tracer.Start(ctx, "postgres.DeckRepository.Create")
	defer span.End()

	m, err := deckToModel(deck)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.client.db.WithContext(ctx).Create(m).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取课件
func (r *DeckRepository) GetByID(ctx context.Context, id string) (*entity.Deck, error) {
	ctx, span := tracer.Start(ctx, "postgres.DeckRepository.GetByID")
	defer span.End()

	var m deckModel
	if err := r.client.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deckToEntity(&m)
}

// GetHTML 仅获取课件的 HTML 文档，避免反序列化整个课件
func (r *DeckRepository) GetHTML(ctx context.Context, id string) (string, error) {
	ctx, span := tracer.Start(ctx, "postgres.DeckRepository.GetHTML")
	defer span.End()

	var html string
	err := r.client.db.WithContext(ctx).Model(&deckModel{}).
		Select("html").Where("id = ?", id).Scan(&html).Error
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to get deck html: %w", err)
	}
	return html, nil
}

// List 按创建时间倒序列出课件
func (r *DeckRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Deck], error) {
	ctx, span := tracer.Start(ctx, "postgres.DeckRepository.List")
	defer span.End()

	query := r.client.db.WithContext(ctx).Model(&deckModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count decks: %w", err)
	}

	var models []*deckModel
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&models).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	decks := make([]*entity.Deck, 0, len(models))
	for _, m := range models {
		d, err := deckToEntity(m)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		decks = append(decks, d)
	}
	return repository.NewPagedResult(decks, total, pagination), nil
}

// Delete 删除课件
func (r *DeckRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.DeckRepository.Delete")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Delete(&deckModel{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
