package composer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/eino/schema"

	"z-lecture-ai-api/internal/domain/entity"
	redisinfra "z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/internal/workflow/model"
	"z-lecture-ai-api/internal/workflow/node"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/metrics"
	"z-lecture-ai-api/pkg/retry"
)

// SlideInvoker 生成链的最小依赖
type SlideInvoker interface {
	Invoke(ctx context.Context, in *model.SlideGenerateInput) (*schema.Message, error)
}

// Builder 为单节大纲生成一张幻灯片
type Builder struct {
	chain              SlideInvoker
	cache              *redisinfra.ResponseCache
	policy             retry.Policy
	minSlideChars      int
	wrapThresholdChars int
}

// NewBuilder 创建 builder；cache 可为 nil 表示不启用响应缓存
func NewBuilder(chain SlideInvoker, cache *redisinfra.ResponseCache, policy retry.Policy, minSlideChars, wrapThresholdChars int) *Builder {
	if minSlideChars <= 0 {
		minSlideChars = 80
	}
	if wrapThresholdChars <= 0 {
		wrapThresholdChars = 200
	}
	return &Builder{
		chain:              chain,
		cache:              cache,
		policy:             policy,
		minSlideChars:      minSlideChars,
		wrapThresholdChars: wrapThresholdChars,
	}
}

// Build 生成并修复一张幻灯片。
// 修复阶梯救不回来或内容过短时返回 SlideGenerationError。
func (b *Builder) Build(ctx context.Context, outline *entity.LectureOutline, section *entity.OutlineSection, req *ComposeRequest, retrievedContext string) (entity.Slide, error) {
	ctx = logger.WithContext(ctx, logger.SectionIDKey, section.ID)
	start := time.Now()
	kind := string(section.Kind)

	in := &model.SlideGenerateInput{
		LectureTitle:       outline.Title,
		LectureDescription: outline.Description,
		AudienceLevel:      outline.Audience.Level,
		AudienceSpecialty:  outline.Audience.Specialty,
		SectionID:          section.ID,
		SectionTitle:       section.Title,
		SectionDescription: section.Description,
		SectionTags:        section.Tags,
		SectionKind:        kind,
		Attachments:        req.Attachments,
		RetrievedContext:   retrievedContext,
		Provider:           req.Provider,
		Model:              req.Model,
		Temperature:        req.Temperature,
		MaxTokens:          req.MaxTokens,
	}

	raw, err := b.generate(ctx, in)
	if err != nil {
		metrics.SlideGenerationTotal.WithLabelValues(kind, "llm_error").Inc()
		return entity.Slide{}, &SlideGenerationError{
			SectionID: section.ID,
			Title:     section.Title,
			Reason:    "llm call failed",
			Err:       err,
		}
	}

	rep := repairSlideHTML(raw, section, b.wrapThresholdChars)
	if !rep.OK {
		metrics.SlideGenerationTotal.WithLabelValues(kind, "unrepairable").Inc()
		return entity.Slide{}, &SlideGenerationError{
			SectionID: section.ID,
			Title:     section.Title,
			Reason:    "output has no usable content",
		}
	}
	if rep.Rung != repairRungNone {
		metrics.SlideRepairTotal.WithLabelValues(rep.Rung).Inc()
		logger.Debug(ctx, "slide output repaired", "rung", rep.Rung, "section_id", section.ID)
	}

	slide := entity.Slide{
		SectionID: section.ID,
		Title:     section.Title,
		Kind:      section.Kind,
		HTML:      rep.HTML,
		Repaired:  rep.Wrapped,
	}
	if slide.ContentChars() < b.minSlideChars {
		metrics.SlideGenerationTotal.WithLabelValues(kind, "too_short").Inc()
		return entity.Slide{}, &SlideGenerationError{
			SectionID: section.ID,
			Title:     section.Title,
			Reason:    "content below minimum length",
		}
	}

	metrics.SlideGenerationTotal.WithLabelValues(kind, "success").Inc()
	metrics.SlideGenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return slide, nil
}

func (b *Builder) generate(ctx context.Context, in *model.SlideGenerateInput) (string, error) {
	compute := func(ctx context.Context) (string, error) {
		var content string
		attempt := 0
		err := retry.Do(ctx, b.policy, node.IsRetryableLLMError, func(ctx context.Context) error {
			if attempt > 0 {
				metrics.LLMRetriesTotal.WithLabelValues(in.Provider).Inc()
			}
			attempt++

			msg, err := b.chain.Invoke(ctx, in)
			if err != nil {
				metrics.LLMRequestsTotal.WithLabelValues(in.Provider, "error").Inc()
				return err
			}
			metrics.LLMRequestsTotal.WithLabelValues(in.Provider, "success").Inc()
			recordTokenUsage(in.Provider, msg)
			content = msg.Content
			return nil
		})
		return content, err
	}

	if b.cache == nil {
		return compute(ctx)
	}

	keyPayload, _ := json.Marshal(in)
	key := redisinfra.CacheKey(in.Provider, in.Model, "slide|"+string(keyPayload))
	return b.cache.GetOrCompute(ctx, key, compute)
}
