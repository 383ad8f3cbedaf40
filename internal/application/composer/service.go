package composer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"z-lecture-ai-api/internal/application/reference"
	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/pkg/logger"
	"z-lecture-ai-api/pkg/metrics"
)

// Service 课件合成入口：规划 → 并发生成 → 装配。
// 全程全有或全无：任何阶段失败都不产出课件。
type Service struct {
	planner   *Planner
	pipeline  *Pipeline
	assembler *Assembler
	// reference 可为 nil 或处于降级态，检索失败按无参考资料继续
	reference *reference.Engine
}

func NewService(planner *Planner, pipeline *Pipeline, assembler *Assembler, refEngine *reference.Engine) *Service {
	return &Service{
		planner:   planner,
		pipeline:  pipeline,
		assembler: assembler,
		reference: refEngine,
	}
}

// Compose 执行一次完整合成，返回装配完成的课件
func (s *Service) Compose(ctx context.Context, jobID string, req *ComposeRequest, reporter ProgressReporter) (*entity.Deck, error) {
	ctx = logger.WithContext(ctx, logger.JobIDKey, jobID)
	start := time.Now()

	deck, err := s.compose(ctx, jobID, req, reporter)
	status := "success"
	if err != nil {
		status = "failure"
		safeReport(ctx, reporter, entity.ProgressEvent{
			Stage:   entity.StageFailed,
			Percent: 100,
			Message: err.Error(),
		})
	}
	metrics.CompositionTotal.WithLabelValues(status).Inc()
	metrics.CompositionDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return deck, err
}

func (s *Service) compose(ctx context.Context, jobID string, req *ComposeRequest, reporter ProgressReporter) (*entity.Deck, error) {
	if err := req.Validate(); err != nil {
		return nil, &PlanningError{Reason: "invalid request", Err: err}
	}

	// 规划阶段的里程碑事件由规划器自己上报
	outline, err := s.planner.Plan(ctx, req, s.retrieve(ctx, req, req.Topic), reporter)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "outline planned",
		"title", outline.Title,
		"section_count", len(outline.Sections),
	)

	slides, err := s.pipeline.Run(ctx, outline, req, reporter, s.sectionContext(req))
	if err != nil {
		return nil, err
	}

	safeReport(ctx, reporter, entity.ProgressEvent{
		Stage:   entity.StageAssembling,
		Percent: 0,
		Message: "assembling deck",
	})

	deck, err := s.assembler.Assemble(outline, slides, jobID, uuid.NewString(), req.Theme)
	if err != nil {
		return nil, err
	}

	safeReport(ctx, reporter, entity.ProgressEvent{
		Stage:   entity.StageCompleted,
		Percent: 100,
		Message: "deck ready",
	})
	logger.Info(ctx, "deck assembled",
		"deck_id", deck.ID,
		"slide_count", deck.SlideCount(),
		"html_bytes", len(deck.HTML),
	)
	return deck, nil
}

// sectionContext 为每一节按标题和要点检索参考上下文
func (s *Service) sectionContext(req *ComposeRequest) SectionContextFunc {
	if !req.UseReferenceSearch || !s.reference.Enabled() {
		return nil
	}
	return func(ctx context.Context, section *entity.OutlineSection) string {
		return s.retrieve(ctx, req, section.Title+" "+section.Description)
	}
}

// retrieve 检索参考资料；引擎降级或出错时返回空串
func (s *Service) retrieve(ctx context.Context, req *ComposeRequest, query string) string {
	if !req.UseReferenceSearch || !s.reference.Enabled() {
		return ""
	}
	out, err := s.reference.Search(ctx, reference.SearchInput{
		Query:       query,
		DocumentIDs: req.ReferenceDocumentIDs,
	})
	if err != nil {
		logger.Warn(ctx, "reference search failed, continuing without context", "error", err)
		return ""
	}
	if out.DisabledReason != "" {
		logger.Debug(ctx, "reference search disabled", "reason", out.DisabledReason)
	}
	return reference.FormatContext(out)
}
