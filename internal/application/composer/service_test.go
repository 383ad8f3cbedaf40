package composer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
)

func newTestService(outlineChain OutlineInvoker, slideChain SlideInvoker) *Service {
	planner := NewPlanner(outlineChain, nil, fastPolicy(), 40)
	builder := NewBuilder(slideChain, nil, fastPolicy(), 40, 200)
	pipeline := NewPipeline(builder, 4)
	assembler := NewAssembler(512)
	return NewService(planner, pipeline, assembler, nil)
}

const serviceOutlineJSON = `{
	"title": "Stroke Thrombolysis",
	"description": "tPA eligibility and workflow",
	"sections": [
		{"id": 1, "title": "Agenda", "description": "Overview", "kind": "content"},
		{"id": 2, "title": "Inclusion criteria", "description": "Time windows", "kind": "content"},
		{"id": 3, "title": "Knowledge check", "description": "MCQ", "kind": "quiz"}
	]
}`

func TestServiceComposesFullDeck(t *testing.T) {
	svc := newTestService(
		&fakeOutlineChain{content: serviceOutlineJSON},
		&fakeSlideChain{outputs: map[int]string{}},
	)

	deck, err := svc.Compose(context.Background(), "job-42", &ComposeRequest{Topic: "Stroke", Provider: "openai"}, NopReporter{})

	require.NoError(t, err)
	assert.Equal(t, "job-42", deck.JobID)
	assert.NotEmpty(t, deck.ID)
	assert.Equal(t, "Stroke Thrombolysis", deck.Title)
	assert.Equal(t, 3, deck.SlideCount())
	assert.Contains(t, deck.HTML, "<!DOCTYPE html>")
}

func TestServiceReportsStagesInOrder(t *testing.T) {
	svc := newTestService(
		&fakeOutlineChain{content: serviceOutlineJSON},
		&fakeSlideChain{outputs: map[int]string{}},
	)

	var mu sync.Mutex
	var stages []entity.ProgressStage
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		mu.Lock()
		stages = append(stages, ev.Stage)
		mu.Unlock()
	})

	_, err := svc.Compose(context.Background(), "job-1", &ComposeRequest{Topic: "Stroke", Provider: "openai"}, reporter)

	require.NoError(t, err)
	require.NotEmpty(t, stages)
	assert.Equal(t, entity.StagePlanning, stages[0])
	assert.Equal(t, entity.StageCompleted, stages[len(stages)-1])

	// 规划阶段完整走完五个里程碑
	planning := 0
	for _, st := range stages {
		if st == entity.StagePlanning {
			planning++
		}
	}
	assert.Equal(t, 5, planning)
}

func TestServiceProducesNoDeckWhenOneSlideFails(t *testing.T) {
	svc := newTestService(
		&fakeOutlineChain{content: serviceOutlineJSON},
		&fakeSlideChain{
			outputs:  map[int]string{},
			failures: map[int]error{2: assert.AnError},
		},
	)

	var mu sync.Mutex
	var last entity.ProgressEvent
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		mu.Lock()
		last = ev
		mu.Unlock()
	})

	deck, err := svc.Compose(context.Background(), "job-1", &ComposeRequest{Topic: "Stroke", Provider: "openai"}, reporter)

	require.Error(t, err)
	assert.Nil(t, deck)
	var pipeErr *PipelineError
	assert.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, entity.StageFailed, last.Stage)
}

func TestServiceFailsFastOnPlanningError(t *testing.T) {
	slideChain := &fakeSlideChain{outputs: map[int]string{}}
	svc := newTestService(&fakeOutlineChain{content: "not json at all"}, slideChain)

	deck, err := svc.Compose(context.Background(), "job-1", &ComposeRequest{Topic: "Stroke", Provider: "openai"}, NopReporter{})

	require.Error(t, err)
	assert.Nil(t, deck)
	var planErr *PlanningError
	assert.ErrorAs(t, err, &planErr)
	assert.Empty(t, slideChain.calls)
}

func TestServiceIsDeterministicForIdenticalInput(t *testing.T) {
	req := &ComposeRequest{Topic: "Stroke", Provider: "openai"}

	run := func() *entity.Deck {
		svc := newTestService(
			&fakeOutlineChain{content: serviceOutlineJSON},
			&fakeSlideChain{outputs: map[int]string{}},
		)
		deck, err := svc.Compose(context.Background(), "job-1", req, NopReporter{})
		require.NoError(t, err)
		return deck
	}

	d1, d2 := run(), run()
	assert.Equal(t, d1.HTML, d2.HTML)
	assert.Equal(t, d1.Nav, d2.Nav)
	assert.Equal(t, d1.Title, d2.Title)
}
