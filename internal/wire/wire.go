//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"z-lecture-ai-api/internal/application/composer"
	"z-lecture-ai-api/internal/application/reference"
	"z-lecture-ai-api/internal/application/worker"
	"z-lecture-ai-api/internal/config"
	"z-lecture-ai-api/internal/domain/repository"
	"z-lecture-ai-api/internal/infrastructure/llm"
	"z-lecture-ai-api/internal/infrastructure/persistence/postgres"
	"z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/internal/interfaces/http/handler"
	"z-lecture-ai-api/internal/interfaces/http/router"
	"z-lecture-ai-api/internal/workflow/chain"
	workflowport "z-lecture-ai-api/internal/workflow/port"
)

// InitializeApp 初始化 API 网关（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		ReferenceSet,
		ComposerSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化任务执行器
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerApp, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		ReferenceSet,
		ComposerSet,
		wire.Bind(new(worker.ProgressPublisher), new(*redis.ProgressBus)),
		worker.NewWorker,
		wire.Struct(new(WorkerApp), "*"),
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 仓储提供者集合
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewJobRepository,
	postgres.NewDeckRepository,
	wire.Bind(new(repository.JobRepository), new(*postgres.JobRepository)),
	wire.Bind(new(repository.DeckRepository), new(*postgres.DeckRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideResponseCache,
	redis.NewRateLimiter,
	redis.NewProgressBus,
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// ReferenceSet 可选的向量检索引擎（Milvus/Embedding 不可达时降级）
var ReferenceSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideEmbeddingClientOptional,
	reference.NewEngine,
)

// ComposerSet 合成管线提供者集合
var ComposerSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewOutlineChain,
	chain.NewSlideChain,
	wire.Bind(new(composer.OutlineInvoker), new(*chain.OutlineChain)),
	wire.Bind(new(composer.SlideInvoker), new(*chain.SlideChain)),
	ProvideRetryPolicy,
	ProvidePlanner,
	ProvideBuilder,
	ProvidePipeline,
	ProvideAssembler,
	composer.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewCompositionHandler,
	handler.NewJobHandler,
	handler.NewDeckHandler,
	handler.NewStreamHandler,
	handler.NewReferenceHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
