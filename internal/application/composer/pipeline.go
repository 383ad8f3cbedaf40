package composer

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/pkg/logger"
)

// SectionContextFunc 为单节提供检索到的参考上下文，可为 nil
type SectionContextFunc func(ctx context.Context, section *entity.OutlineSection) string

// Pipeline 并发驱动各节的幻灯片生成。
// 并发度有界；任何一节失败立即取消其余节并整体失败。
type Pipeline struct {
	builder        *Builder
	maxConcurrency int
}

func NewPipeline(builder *Builder, maxConcurrency int) *Pipeline {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Pipeline{
		builder:        builder,
		maxConcurrency: maxConcurrency,
	}
}

// Run 为大纲的每一节生成幻灯片，按节 ID 升序返回。
// 返回的切片要么完整覆盖所有节，要么为 nil 并携带 PipelineError。
func (p *Pipeline) Run(ctx context.Context, outline *entity.LectureOutline, req *ComposeRequest, reporter ProgressReporter, sectionCtx SectionContextFunc) ([]entity.Slide, error) {
	if err := outline.Validate(); err != nil {
		return nil, &PipelineError{Err: err}
	}

	total := len(outline.Sections)
	results := make([]entity.Slide, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrency)

	for i := range outline.Sections {
		section := &outline.Sections[i]
		idx := i
		g.Go(func() error {
			safeReport(gctx, reporter, entity.ProgressEvent{
				Stage:     entity.StageGenerating,
				SectionID: section.ID,
				Percent:   int(completed.Load()) * 100 / total,
				Message:   fmt.Sprintf("generating slide %d/%d: %s", section.ID, total, section.Title),
			})

			retrieved := ""
			if sectionCtx != nil {
				retrieved = sectionCtx(gctx, section)
			}

			slide, err := p.builder.Build(gctx, outline, section, req, retrieved)
			if err != nil {
				return err
			}
			results[idx] = slide

			done := completed.Add(1)
			safeReport(gctx, reporter, entity.ProgressEvent{
				Stage:     entity.StageGenerating,
				SectionID: section.ID,
				Percent:   int(done) * 100 / total,
				Message:   fmt.Sprintf("slide %d/%d ready", section.ID, total),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn(ctx, "pipeline aborted on first slide failure", "error", err)
		return nil, &PipelineError{Err: err}
	}

	// 并发完成顺序不确定，交付前按节 ID 恢复大纲顺序
	sort.Slice(results, func(a, b int) bool {
		return results[a].SectionID < results[b].SectionID
	})
	return results, nil
}
