// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"time"

	"z-lecture-ai-api/internal/application/composer"
	"z-lecture-ai-api/internal/application/worker"
	"z-lecture-ai-api/internal/config"
	"z-lecture-ai-api/internal/infrastructure/embedding"
	"z-lecture-ai-api/internal/infrastructure/messaging"
	"z-lecture-ai-api/internal/infrastructure/persistence/milvus"
	"z-lecture-ai-api/internal/infrastructure/persistence/postgres"
	"z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/retry"
)

// WorkerApp 任务执行器依赖容器
type WorkerApp struct {
	Worker      *worker.Worker
	RedisClient *redis.Client
	Producer    *messaging.Producer
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideResponseCache 提供 LLM 响应缓存
func ProvideResponseCache(client *redis.Client, cfg *config.Config) *redis.ResponseCache {
	ttl := cfg.Cache.ResponseTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return redis.NewResponseCache(client, ttl)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideMilvusClientOptional 提供可选 Milvus 客户端（未启用或不可达时返回 nil，不阻塞启动）
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	if !cfg.Vector.Milvus.Enabled {
		return nil, func() {}, nil
	}
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, reference search disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusRepositoryOptional 提供可选向量仓储
func ProvideMilvusRepositoryOptional(client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideEmbeddingClientOptional 提供可选 Embedding 客户端（不可用时禁用向量检索）
func ProvideEmbeddingClientOptional(ctx context.Context, cfg *config.Config) *embedding.Client {
	client, err := embedding.NewClient(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, reference search disabled", "error", err.Error())
		return nil
	}
	return client
}

// ProvideRetryPolicy 提供 LLM 瞬时错误的重试策略
func ProvideRetryPolicy(cfg *config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	rc := cfg.Composer.Retry
	if rc.MaxAttempts > 0 {
		p.MaxAttempts = rc.MaxAttempts
	}
	if rc.Initial > 0 {
		p.Initial = rc.Initial
	}
	if rc.Max > 0 {
		p.Max = rc.Max
	}
	if rc.Multiplier > 0 {
		p.Multiplier = rc.Multiplier
	}
	return p
}

// ProvidePlanner 提供大纲规划器
func ProvidePlanner(chain composer.OutlineInvoker, cache *redis.ResponseCache, policy retry.Policy, cfg *config.Config) *composer.Planner {
	return composer.NewPlanner(chain, cache, policy, cfg.Composer.MaxSections)
}

// ProvideBuilder 提供幻灯片生成器
func ProvideBuilder(chain composer.SlideInvoker, cache *redis.ResponseCache, policy retry.Policy, cfg *config.Config) *composer.Builder {
	return composer.NewBuilder(chain, cache, policy, cfg.Composer.MinSlideChars, cfg.Composer.WrapThresholdChars)
}

// ProvidePipeline 提供并发生成管线
func ProvidePipeline(builder *composer.Builder, cfg *config.Config) *composer.Pipeline {
	return composer.NewPipeline(builder, cfg.Composer.MaxConcurrency)
}

// ProvideAssembler 提供课件装配器
func ProvideAssembler(cfg *config.Config) *composer.Assembler {
	return composer.NewAssembler(cfg.Composer.MinDeckBytes)
}
