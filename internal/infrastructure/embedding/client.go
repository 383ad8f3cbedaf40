// Package embedding 提供参考资料向量化客户端
package embedding

import (
	"context"
	"fmt"

	"z-lecture-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// Client 在 Eino Embedder 之上做批量切分
type Client struct {
	embedder  embedding.Embedder
	batchSize int
}

func NewClient(ctx context.Context, cfg *config.EmbeddingConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Client{embedder: embedder, batchSize: batchSize}, nil
}

// Embed 向量化文本，内部按 batchSize 分批请求
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := c.embedder.EmbedStrings(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		for _, v := range vecs {
			vec := make([]float32, len(v))
			for j, f := range v {
				vec[j] = float32(f)
			}
			all = append(all, vec)
		}
	}
	return all, nil
}
