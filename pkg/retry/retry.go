// Package retry 提供带退避的通用重试原语
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy 重试策略
type Policy struct {
	// MaxAttempts 总尝试次数上限（含首次调用），<=0 时视为 1
	MaxAttempts int
	// Initial 首次重试前的退避时间
	Initial time.Duration
	// Max 退避时间上限
	Max time.Duration
	// Multiplier 退避倍增系数
	Multiplier float64
	// Jitter 退避抖动比例 [0,1)，0 表示无抖动
	Jitter float64
}

// DefaultPolicy 默认重试策略
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Initial:     time.Second,
		Max:         30 * time.Second,
		Multiplier:  2,
		Jitter:      0.2,
	}
}

// Backoff 计算第 attempt 次重试前的退避时间（attempt 从 0 开始）
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.Initial
	if d <= 0 {
		d = time.Second
	}
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if p.Max > 0 && d > p.Max {
			d = p.Max
			break
		}
	}
	if p.Jitter > 0 {
		// 在 [1-jitter, 1+jitter] 区间内抖动，避免重试风暴
		f := 1 + p.Jitter*(2*rand.Float64()-1)
		d = time.Duration(float64(d) * f)
	}
	return d
}

// Classifier 判定错误是否可重试。
// 返回 false 的错误立即向上传播，绝不消耗剩余重试次数。
type Classifier func(err error) bool

// Do 以给定策略重试 op，直到成功、错误不可重试或次数耗尽。
// ctx 取消时立即返回 ctx.Err()。
func Do(ctx context.Context, p Policy, retryable Classifier, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff(attempt)):
		}
	}
	return lastErr
}
