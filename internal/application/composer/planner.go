package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"z-lecture-ai-api/internal/domain/entity"
	redisinfra "z-lecture-ai-api/internal/infrastructure/persistence/redis"
	"z-lecture-ai-api/internal/workflow/model"
	"z-lecture-ai-api/internal/workflow/node"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/metrics"
	"z-lecture-ai-api/pkg/retry"
)

// OutlineInvoker 规划链的最小依赖
type OutlineInvoker interface {
	Invoke(ctx context.Context, in *model.OutlinePlanInput) (*schema.Message, error)
}

// Planner 把合成请求规划为分节大纲
type Planner struct {
	chain       OutlineInvoker
	cache       *redisinfra.ResponseCache
	policy      retry.Policy
	maxSections int
}

// NewPlanner 创建规划器；cache 可为 nil 表示不启用响应缓存
func NewPlanner(chain OutlineInvoker, cache *redisinfra.ResponseCache, policy retry.Policy, maxSections int) *Planner {
	if maxSections <= 0 {
		maxSections = 40
	}
	return &Planner{
		chain:       chain,
		cache:       cache,
		policy:      policy,
		maxSections: maxSections,
	}
}

// Plan 规划大纲。模型输出不可解析或节数为零时返回 PlanningError，不做静默回退。
// 规划阶段按五个里程碑上报进度：开始、请求已发出、响应已返回、解析完成、校验通过。
func (p *Planner) Plan(ctx context.Context, req *ComposeRequest, retrievedContext string, reporter ProgressReporter) (*entity.LectureOutline, error) {
	p.report(ctx, reporter, 0, "planning lecture outline")

	if err := req.Validate(); err != nil {
		return nil, &PlanningError{Reason: "invalid request", Err: err}
	}

	maxSections := p.maxSections
	if req.MaxSections > 0 && req.MaxSections < maxSections {
		maxSections = req.MaxSections
	}

	in := &model.OutlinePlanInput{
		Request:           req.Topic,
		Attachments:       req.Attachments,
		AudienceLevel:     req.Audience.Level,
		AudienceSpecialty: req.Audience.Specialty,
		RetrievedContext:  retrievedContext,
		MaxSections:       maxSections,
		Provider:          req.Provider,
		Model:             req.Model,
		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
	}

	p.report(ctx, reporter, 20, "sending outline request")
	content, err := p.generate(ctx, in)
	if err != nil {
		return nil, &PlanningError{Reason: "llm call failed", Err: err}
	}
	p.report(ctx, reporter, 60, "outline response received")

	plan, err := parseOutlinePlan(content)
	if err != nil {
		logger.Warn(ctx, "outline output is not parseable", "error", err)
		return nil, &PlanningError{Reason: "unparseable outline output", Err: err}
	}
	p.report(ctx, reporter, 80, "outline parsed")

	outline, err := buildOutline(plan, req, maxSections)
	if err != nil {
		return nil, err
	}
	if err := outline.Validate(); err != nil {
		return nil, &PlanningError{Reason: "outline failed validation", Err: err}
	}
	p.report(ctx, reporter, 100, "outline ready")
	return outline, nil
}

// report 上报规划阶段进度，百分比在阶段内单调递增
func (p *Planner) report(ctx context.Context, reporter ProgressReporter, percent int, msg string) {
	safeReport(ctx, reporter, entity.ProgressEvent{
		Stage:   entity.StagePlanning,
		Percent: percent,
		Message: msg,
	})
}

func (p *Planner) generate(ctx context.Context, in *model.OutlinePlanInput) (string, error) {
	compute := func(ctx context.Context) (string, error) {
		var content string
		attempt := 0
		err := retry.Do(ctx, p.policy, node.IsRetryableLLMError, func(ctx context.Context) error {
			if attempt > 0 {
				metrics.LLMRetriesTotal.WithLabelValues(in.Provider).Inc()
			}
			attempt++

			msg, err := p.chain.Invoke(ctx, in)
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

	if p.cache == nil {
		return compute(ctx)
	}

	keyPayload, _ := json.Marshal(in)
	key := redisinfra.CacheKey(in.Provider, in.Model, "outline|"+string(keyPayload))
	return p.cache.GetOrCompute(ctx, key, compute)
}

// parseOutlinePlan 容错解析：剥离代码围栏后截取 JSON 对象
func parseOutlinePlan(raw string) (*model.OutlinePlan, error) {
	cleaned := node.ExtractJSONObject(node.StripCodeFence(raw))
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("empty outline output")
	}
	var plan model.OutlinePlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse outline json: %w", err)
	}
	return &plan, nil
}

// buildOutline 把模型计划规范化为领域大纲。
// 缺失字段按字段级兜底补齐；节数为零整体判失败。
func buildOutline(plan *model.OutlinePlan, req *ComposeRequest, maxSections int) (*entity.LectureOutline, error) {
	if plan == nil || len(plan.Sections) == 0 {
		return nil, &PlanningError{Reason: "outline has no sections"}
	}

	sections := plan.Sections
	if len(sections) > maxSections {
		sections = sections[:maxSections]
	}

	outline := &entity.LectureOutline{
		Title:       strings.TrimSpace(plan.Title),
		Description: strings.TrimSpace(plan.Description),
		Audience:    req.Audience,
	}
	if outline.Title == "" {
		outline.Title = strings.TrimSpace(req.Topic)
	}
	if plan.Audience != nil {
		if v := strings.TrimSpace(plan.Audience.Level); v != "" && outline.Audience.Level == "" {
			outline.Audience.Level = v
		}
		if v := strings.TrimSpace(plan.Audience.Specialty); v != "" && outline.Audience.Specialty == "" {
			outline.Audience.Specialty = v
		}
		if v := strings.TrimSpace(plan.Audience.Language); v != "" && outline.Audience.Language == "" {
			outline.Audience.Language = v
		}
	}

	outline.Sections = make([]entity.OutlineSection, 0, len(sections))
	for i, s := range sections {
		// 节 ID 按出现顺序重编号，保证从 1 开始连续
		sec := entity.OutlineSection{
			ID:          i + 1,
			Title:       strings.TrimSpace(s.Title),
			Description: strings.TrimSpace(s.Description),
			Tags:        s.Tags,
			Kind:        entity.ParseSectionKind(s.Kind),
		}
		if sec.Title == "" {
			sec.Title = fmt.Sprintf("Section %d", i+1)
		}
		if sec.Description == "" {
			sec.Description = "Cover the topic: " + sec.Title
		}
		if sec.Tags == nil {
			sec.Tags = []string{}
		}
		outline.Sections = append(outline.Sections, sec)
	}

	return outline, nil
}

func recordTokenUsage(provider string, msg *schema.Message) {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	usage := msg.ResponseMeta.Usage
	metrics.LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues(provider, "completion").Add(float64(usage.CompletionTokens))
}
