// Package llm 提供 ChatModel 工厂的 Eino 实现
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"z-lecture-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 按 provider 名称惰性构建并复用 ChatModel 实例。
// provider 配置表由构造时显式注入，不读取任何全局状态。
type EinoFactory struct {
	defaultProvider string
	providers       map[string]config.ProviderConfig
	models          map[string]model.BaseChatModel
	mu              sync.RWMutex
}

func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return NewEinoFactoryWithProviders(cfg.LLM.DefaultProvider, cfg.LLM.Providers)
}

// NewEinoFactoryWithProviders 直接用配置表构建工厂，便于测试注入
func NewEinoFactoryWithProviders(defaultProvider string, providers map[string]config.ProviderConfig) *EinoFactory {
	return &EinoFactory{
		defaultProvider: defaultProvider,
		providers:       providers,
		models:          make(map[string]model.BaseChatModel),
	}
}

// Get 返回指定 provider 的 ChatModel，名称为空时回落到默认 provider
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.defaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 双重检查防止并发重复构建
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &providerCfg.MaxTokens,
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func ptrFloat32(v float32) *float32 {
	return &v
}
