package composer

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/workflow/model"
)

type fakeOutlineChain struct {
	content string
	err     error
	calls   int
}

func (f *fakeOutlineChain) Invoke(ctx context.Context, in *model.OutlinePlanInput) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.content}, nil
}

func TestPlannerParsesFencedJSON(t *testing.T) {
	chain := &fakeOutlineChain{content: "```json\n" + `{
		"title": "Heart Failure Management",
		"description": "GDMT overview",
		"sections": [
			{"id": 1, "title": "Agenda", "description": "Overview", "tags": ["intro"], "kind": "content"},
			{"id": 2, "title": "Pathophysiology", "description": "HFrEF vs HFpEF", "tags": [], "kind": "diagram"},
			{"id": 3, "title": "Knowledge check", "description": "MCQ", "tags": [], "kind": "quiz"}
		]
	}` + "\n```"}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	outline, err := p.Plan(context.Background(), &ComposeRequest{Topic: "Heart failure", Provider: "openai"}, "", nil)

	require.NoError(t, err)
	assert.Equal(t, "Heart Failure Management", outline.Title)
	require.Len(t, outline.Sections, 3)
	assert.Equal(t, entity.SectionKindDiagram, outline.Sections[1].Kind)
	assert.Equal(t, entity.SectionKindQuiz, outline.Sections[2].Kind)
	require.NoError(t, outline.Validate())
}

func TestPlannerAppliesFieldDefaults(t *testing.T) {
	// 标题缺失、描述缺失、tags 为 null、kind 未知
	chain := &fakeOutlineChain{content: `{
		"sections": [
			{"id": 7, "description": "Something"},
			{"id": 3, "title": "Treatment", "kind": "interpretive_dance"}
		]
	}`}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	outline, err := p.Plan(context.Background(), &ComposeRequest{Topic: "Sepsis bundles", Provider: "openai"}, "", nil)

	require.NoError(t, err)
	// 大纲标题回退为请求主题
	assert.Equal(t, "Sepsis bundles", outline.Title)
	require.Len(t, outline.Sections, 2)

	// 节 ID 按出现顺序重编号
	assert.Equal(t, 1, outline.Sections[0].ID)
	assert.Equal(t, 2, outline.Sections[1].ID)

	assert.Equal(t, "Section 1", outline.Sections[0].Title)
	assert.NotEmpty(t, outline.Sections[1].Description)
	assert.NotNil(t, outline.Sections[0].Tags)
	// 未知 kind 回退为 content，不拒绝
	assert.Equal(t, entity.SectionKindContent, outline.Sections[1].Kind)
}

func TestPlannerRejectsEmptyOutline(t *testing.T) {
	chain := &fakeOutlineChain{content: `{"title": "Empty", "sections": []}`}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	_, err := p.Plan(context.Background(), &ComposeRequest{Topic: "Nothing", Provider: "openai"}, "", nil)

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Contains(t, planErr.Reason, "no sections")
}

func TestPlannerRejectsUnparseableOutput(t *testing.T) {
	chain := &fakeOutlineChain{content: "I'd be happy to help plan your lecture! First, tell me more about..."}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	_, err := p.Plan(context.Background(), &ComposeRequest{Topic: "ECG basics", Provider: "openai"}, "", nil)

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
}

func TestPlannerTruncatesToMaxSections(t *testing.T) {
	chain := &fakeOutlineChain{content: `{
		"title": "Long lecture",
		"sections": [
			{"id": 1, "title": "A", "description": "a"},
			{"id": 2, "title": "B", "description": "b"},
			{"id": 3, "title": "C", "description": "c"},
			{"id": 4, "title": "D", "description": "d"}
		]
	}`}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	outline, err := p.Plan(context.Background(), &ComposeRequest{Topic: "Long", Provider: "openai", MaxSections: 2}, "", nil)

	require.NoError(t, err)
	assert.Len(t, outline.Sections, 2)
	require.NoError(t, outline.Validate())
}

func TestPlannerReportsPlanningMilestones(t *testing.T) {
	chain := &fakeOutlineChain{content: serviceOutlineJSON}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	var events []entity.ProgressEvent
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		events = append(events, ev)
	})

	_, err := p.Plan(context.Background(), &ComposeRequest{Topic: "Stroke", Provider: "openai"}, "", reporter)

	require.NoError(t, err)
	// 开始 / 请求已发出 / 响应已返回 / 解析完成 / 校验通过
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, entity.StagePlanning, ev.Stage)
		assert.Zero(t, ev.SectionID)
		if i > 0 {
			assert.Greater(t, ev.Percent, events[i-1].Percent)
		}
	}
	assert.Equal(t, 0, events[0].Percent)
	assert.Equal(t, 100, events[len(events)-1].Percent)
}

func TestPlannerStopsMilestonesAtFailure(t *testing.T) {
	chain := &fakeOutlineChain{content: "not json at all"}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	var events []entity.ProgressEvent
	reporter := ProgressFunc(func(ctx context.Context, ev entity.ProgressEvent) {
		events = append(events, ev)
	})

	_, err := p.Plan(context.Background(), &ComposeRequest{Topic: "ECG", Provider: "openai"}, "", reporter)

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	// 解析失败：只走到"响应已返回"
	require.Len(t, events, 3)
	assert.Equal(t, 60, events[len(events)-1].Percent)
}

func TestPlannerRequiresTopic(t *testing.T) {
	chain := &fakeOutlineChain{content: "{}"}
	p := NewPlanner(chain, nil, fastPolicy(), 40)

	_, err := p.Plan(context.Background(), &ComposeRequest{Provider: "openai"}, "", nil)

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Zero(t, chain.calls)
}
