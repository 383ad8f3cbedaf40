package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/workflow/model"
	"z-lecture-ai-api/pkg/retry"
)

// fakeSlideChain 按节 ID 返回预置输出，可注入延迟和失败
type fakeSlideChain struct {
	mu       sync.Mutex
	outputs  map[int]string
	failures map[int]error
	delays   map[int]time.Duration
	calls    []int
}

func (f *fakeSlideChain) Invoke(ctx context.Context, in *model.SlideGenerateInput) (*schema.Message, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in.SectionID)
	f.mu.Unlock()

	if d, ok := f.delays[in.SectionID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.failures[in.SectionID]; ok {
		return nil, err
	}
	out, ok := f.outputs[in.SectionID]
	if !ok {
		out = fmt.Sprintf(`<section class="slide" data-kind="content"><h2>Slide %d</h2><p>Generated body content with enough length for validation checks.</p></section>`, in.SectionID)
	}
	return &schema.Message{Role: schema.Assistant, Content: out}, nil
}

func testOutline(n int) *entity.LectureOutline {
	sections := make([]entity.OutlineSection, 0, n)
	for i := 1; i <= n; i++ {
		sections = append(sections, entity.OutlineSection{
			ID:          i,
			Title:       fmt.Sprintf("Section %d", i),
			Description: fmt.Sprintf("Covers topic %d", i),
			Tags:        []string{},
			Kind:        entity.SectionKindContent,
		})
	}
	return &entity.LectureOutline{
		Title:    "Acute Coronary Syndromes",
		Sections: sections,
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 1, Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1}
}

func newTestPipeline(chain SlideInvoker, concurrency int) *Pipeline {
	builder := NewBuilder(chain, nil, fastPolicy(), 40, 200)
	return NewPipeline(builder, concurrency)
}

func TestPipelineFailsWholeJobOnSingleSlideFailure(t *testing.T) {
	chain := &fakeSlideChain{
		outputs:  map[int]string{},
		failures: map[int]error{2: errors.New("model returned empty response")},
	}
	p := newTestPipeline(chain, 4)

	slides, err := p.Run(context.Background(), testOutline(3), &ComposeRequest{Topic: "ACS", Provider: "openai"}, NopReporter{}, nil)

	require.Error(t, err)
	assert.Nil(t, slides)

	var pipeErr *PipelineError
	require.ErrorAs(t, err, &pipeErr)
	var slideErr *SlideGenerationError
	require.ErrorAs(t, err, &slideErr)
	assert.Equal(t, 2, slideErr.SectionID)
}

func TestPipelineOrdersSlidesBySectionID(t *testing.T) {
	// 节 1 最慢、节 3 最快，完成顺序为 3、2、1
	chain := &fakeSlideChain{
		outputs: map[int]string{},
		delays: map[int]time.Duration{
			1: 60 * time.Millisecond,
			2: 30 * time.Millisecond,
			3: 0,
		},
	}
	p := newTestPipeline(chain, 4)

	slides, err := p.Run(context.Background(), testOutline(3), &ComposeRequest{Topic: "ACS", Provider: "openai"}, NopReporter{}, nil)

	require.NoError(t, err)
	require.Len(t, slides, 3)
	for i, s := range slides {
		assert.Equal(t, i+1, s.SectionID)
	}
}

func TestPipelineRespectsConcurrencyLimit(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0

	chain := &fakeSlideChain{outputs: map[int]string{}}
	builder := NewBuilder(chain, nil, fastPolicy(), 40, 200)
	p := NewPipeline(builder, 2)

	outline := testOutline(6)
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {})
	sectionCtx := func(ctx context.Context, section *entity.OutlineSection) string {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return ""
	}

	slides, err := p.Run(context.Background(), outline, &ComposeRequest{Topic: "ACS", Provider: "openai"}, reporter, sectionCtx)

	require.NoError(t, err)
	assert.Len(t, slides, 6)
	assert.LessOrEqual(t, peak, 2)
}

func TestPipelineSlideCountMatchesSectionCount(t *testing.T) {
	chain := &fakeSlideChain{outputs: map[int]string{}}
	p := newTestPipeline(chain, 3)

	outline := testOutline(5)
	slides, err := p.Run(context.Background(), outline, &ComposeRequest{Topic: "ACS", Provider: "openai"}, NopReporter{}, nil)

	require.NoError(t, err)
	assert.Len(t, slides, len(outline.Sections))
}

func TestPipelineReportsSectionTaggedProgress(t *testing.T) {
	chain := &fakeSlideChain{outputs: map[int]string{}}
	p := newTestPipeline(chain, 2)

	var mu sync.Mutex
	seen := map[int]bool{}
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		if ev.Stage == entity.StageGenerating && ev.SectionID > 0 {
			mu.Lock()
			seen[ev.SectionID] = true
			mu.Unlock()
		}
	})

	_, err := p.Run(context.Background(), testOutline(3), &ComposeRequest{Topic: "ACS", Provider: "openai"}, reporter, nil)

	require.NoError(t, err)
	for id := 1; id <= 3; id++ {
		assert.True(t, seen[id], "expected progress event for section %d", id)
	}
}

func TestPipelineSurvivesPanickingReporter(t *testing.T) {
	chain := &fakeSlideChain{outputs: map[int]string{}}
	p := newTestPipeline(chain, 2)

	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		panic("broken observer")
	})

	slides, err := p.Run(context.Background(), testOutline(2), &ComposeRequest{Topic: "ACS", Provider: "openai"}, reporter, nil)

	require.NoError(t, err)
	assert.Len(t, slides, 2)
}
