package node

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// retryableMarkers 可重试错误的文本特征（供应商返回格式不统一时的兜底判断）
var retryableMarkers = []string{
	"429",
	"rate limit",
	"too many requests",
	"500",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"internal server error",
	"connection reset",
	"connection refused",
	"broken pipe",
	"eof",
	"timeout",
	"temporarily unavailable",
	"overloaded",
}

// IsRetryableLLMError 判断一次模型调用失败是否值得重试。
// 只有传输层/供应商侧的瞬态错误可重试；内容类错误（解析失败、
// 校验不通过）永远不在此判定，调用方不应将其传入重试循环。
func IsRetryableLLMError(err error) bool {
	if err == nil {
		return false
	}
	// 上层取消不重试，deadline 超时视为瞬态
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
