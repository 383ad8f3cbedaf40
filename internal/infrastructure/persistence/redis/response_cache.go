package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"z-lecture-ai-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.response_cache")

// ResponseCache 以提示词内容为键缓存模型产出。
// 相同 provider/model/prompt 的重复请求直接命中缓存，避免重复计费。
type ResponseCache struct {
	client *Client
	ttl    time.Duration
	group  singleflight.Group
}

func NewResponseCache(client *Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// CacheKey 计算缓存键：sha256(provider|model|prompt)
func CacheKey(provider, model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{'|'})
	h.Write([]byte(model))
	h.Write([]byte{'|'})
	h.Write([]byte(prompt))
	return "llm:response:" + hex.EncodeToString(h.Sum(nil))
}

// Get 读取缓存，未命中返回 ("", false, nil)
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := cacheTracer.Start(ctx, "response_cache.Get",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			metrics.ResponseCacheTotal.WithLabelValues("miss").Inc()
			return "", false, nil
		}
		span.RecordError(err)
		metrics.ResponseCacheTotal.WithLabelValues("error").Inc()
		return "", false, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	metrics.ResponseCacheTotal.WithLabelValues("hit").Inc()
	return val, true, nil
}

// Set 写入缓存；写入失败只记录，不影响调用方
func (c *ResponseCache) Set(ctx context.Context, key, value string) error {
	ctx, span := cacheTracer.Start(ctx, "response_cache.Set",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if err := c.client.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// GetOrCompute 读穿缓存，singleflight 合并并发的相同提示词请求
func (c *ResponseCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (string, error)) (string, error) {
	if val, ok, err := c.Get(ctx, key); err == nil && ok {
		return val, nil
	}

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 其他并发方可能已回填
		if val, ok, err := c.Get(ctx, key); err == nil && ok {
			return val, nil
		}

		val, err := compute(ctx)
		if err != nil {
			return "", err
		}
		// 缓存写入失败不影响返回结果
		_ = c.Set(ctx, key, val)
		return val, nil
	})
	if shared {
		metrics.ResponseCacheTotal.WithLabelValues("coalesced").Inc()
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
