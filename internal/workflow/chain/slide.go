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

// SlideChain 为大纲中的单节生成 HTML 幻灯片
type SlideChain struct {
	factory workflowport.ChatModelFactory
}

func NewSlideChain(factory workflowport.ChatModelFactory) *SlideChain {
	return &SlideChain{factory: factory}
}

func (c *SlideChain) Invoke(ctx context.Context, in *wfmodel.SlideGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if in.SectionID <= 0 {
		return nil, fmt.Errorf("section id is required")
	}
	if strings.TrimSpace(in.SectionTitle) == "" && strings.TrimSpace(in.SectionDescription) == "" {
		return nil, fmt.Errorf("section title or description is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "slide_generate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatSlideMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildSlideModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

var slidePromptRegistry = workflowprompt.NewRegistry()

func formatSlideMessages(ctx context.Context, in *wfmodel.SlideGenerateInput) ([]*schema.Message, error) {
	tpl, err := slidePromptRegistry.ChatTemplate(workflowprompt.PromptSlideGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"lecture_title":       strings.TrimSpace(in.LectureTitle),
		"lecture_description": orPlaceholder(in.LectureDescription, "(not provided)"),
		"audience":            formatAudience(in.AudienceLevel, in.AudienceSpecialty),
		"section_id":          in.SectionID,
		"section_title":       strings.TrimSpace(in.SectionTitle),
		"section_kind":        orPlaceholder(in.SectionKind, "content"),
		"section_description": strings.TrimSpace(in.SectionDescription),
		"section_tags":        orPlaceholder(strings.Join(in.SectionTags, ", "), "(none)"),
		"attachments":         formatAttachments(in.Attachments),
		"retrieved_context":   orPlaceholder(in.RetrievedContext, "(none)"),
	}
	return tpl.Format(ctx, vars)
}

func buildSlideModelOptions(in *wfmodel.SlideGenerateInput) []model.Option {
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
