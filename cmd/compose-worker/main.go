// Package main 异步合成任务执行器入口（compose-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"z-lecture-ai-api/internal/config"
	"z-lecture-ai-api/internal/infrastructure/messaging"
	einoobs "z-lecture-ai-api/internal/observability/eino"
	"z-lecture-ai-api/internal/wire"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/metrics"
	"z-lecture-ai-api/pkg/tracer"
)

// dlqAlertThreshold 死信队列积压告警阈值
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "compose-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	einoobs.Init()

	app, cleanupApp, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanupApp()

	consumer := messaging.NewConsumer(app.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamCompose,
		Group:         messaging.ConsumerGroupComposeWorker,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.MessageTypeComposeJob, app.Worker.HandleComposeJob)

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	defer cancelMonitor()
	go consumer.MonitorDLQ(monitorCtx, dlqAlertThreshold)
	go reportQueueDepth(monitorCtx, app)

	log := logger.FromContext(ctx)
	log.Info("compose-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("compose-worker shutting down")
	consumer.Stop()
}

// reportQueueDepth 周期性上报任务流积压深度
func reportQueueDepth(ctx context.Context, app *wire.WorkerApp) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := app.Producer.QueueDepth(ctx, messaging.StreamCompose)
			if err != nil {
				continue
			}
			metrics.JobQueueDepth.WithLabelValues(string(messaging.StreamCompose)).Set(float64(depth))
		}
	}
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
