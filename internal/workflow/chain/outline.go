package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "z-lecture-ai-api/internal/domain/service"
	wfmodel "z-lecture-ai-api/internal/workflow/model"
	workflowport "z-lecture-ai-api/internal/workflow/port"
	workflowprompt "z-lecture-ai-api/internal/workflow/prompt"
)

// OutlineChain 把讲座请求展开为分节大纲
type OutlineChain struct {
	factory workflowport.ChatModelFactory
}

func NewOutlineChain(factory workflowport.ChatModelFactory) *OutlineChain {
	return &OutlineChain{factory: factory}
}

func (c *OutlineChain) Invoke(ctx context.Context, in *wfmodel.OutlinePlanInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.Request) == "" {
		return nil, fmt.Errorf("request is required")
	}
	if in.MaxSections <= 0 {
		return nil, fmt.Errorf("max_sections is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "outline_plan", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatOutlineMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildOutlineModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

var outlinePromptRegistry = workflowprompt.NewRegistry()

func formatOutlineMessages(ctx context.Context, in *wfmodel.OutlinePlanInput) ([]*schema.Message, error) {
	tpl, err := outlinePromptRegistry.ChatTemplate(workflowprompt.PromptOutlinePlanV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"request":           strings.TrimSpace(in.Request),
		"audience":          formatAudience(in.AudienceLevel, in.AudienceSpecialty),
		"attachments":       formatAttachments(in.Attachments),
		"retrieved_context": orPlaceholder(in.RetrievedContext, "(none)"),
		"max_sections":      in.MaxSections,
	}
	return tpl.Format(ctx, vars)
}

func buildOutlineModelOptions(in *wfmodel.OutlinePlanInput) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
