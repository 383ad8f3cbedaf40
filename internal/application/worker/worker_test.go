package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/domain/repository"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, entity.ProgressEvent) {}

// progressRecorder 只记录 UpdateProgress 写入序列的 JobRepository 桩
type progressRecorder struct {
	mu       sync.Mutex
	progress []int
}

func (r *progressRecorder) Create(context.Context, *entity.CompositionJob) error { return nil }
func (r *progressRecorder) GetByID(context.Context, string) (*entity.CompositionJob, error) {
	return nil, nil
}
func (r *progressRecorder) GetByIdempotencyKey(context.Context, string) (*entity.CompositionJob, error) {
	return nil, nil
}
func (r *progressRecorder) Update(context.Context, *entity.CompositionJob) error { return nil }
func (r *progressRecorder) UpdateStatus(context.Context, string, entity.JobStatus) error {
	return nil
}
func (r *progressRecorder) MarkRunning(context.Context, string) error          { return nil }
func (r *progressRecorder) SetResult(context.Context, string, string, string) error {
	return nil
}
func (r *progressRecorder) List(context.Context, entity.JobStatus, repository.Pagination) (*repository.PagedResult[*entity.CompositionJob], error) {
	return nil, nil
}

func (r *progressRecorder) UpdateProgress(_ context.Context, _ string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
	return nil
}

func (r *progressRecorder) recorded() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}

func TestReporterPersistsMonotonicOverallProgress(t *testing.T) {
	repo := &progressRecorder{}
	w := NewWorker(repo, nil, nil, nopPublisher{})
	rep := w.reporter("job-1")
	ctx := context.Background()

	events := []entity.ProgressEvent{
		{Stage: entity.StagePlanning, Percent: 0},
		{Stage: entity.StagePlanning, Percent: 60},
		{Stage: entity.StagePlanning, Percent: 100},
		{Stage: entity.StageGenerating, SectionID: 1, Percent: 0},
		{Stage: entity.StageGenerating, SectionID: 2, Percent: 0},
		{Stage: entity.StageGenerating, SectionID: 1, Percent: 33},
		// 迟到的重复百分比，不应造成进度回退
		{Stage: entity.StageGenerating, SectionID: 3, Percent: 33},
		{Stage: entity.StageGenerating, SectionID: 2, Percent: 66},
		{Stage: entity.StageGenerating, SectionID: 3, Percent: 100},
		{Stage: entity.StageAssembling, Percent: 0},
		{Stage: entity.StageCompleted, Percent: 100},
	}
	for _, ev := range events {
		rep.Report(ctx, ev)
	}

	got := repo.recorded()
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1], "persisted progress must be strictly increasing")
	}
	// 规划完成映射到整体 10%，而不是 100%
	assert.Equal(t, []int{0, 6, 10, 36, 62, 90}, got)
}

func TestOverallPercentStageRanges(t *testing.T) {
	cases := []struct {
		ev      entity.ProgressEvent
		overall int
		ok      bool
	}{
		{entity.ProgressEvent{Stage: entity.StagePlanning, Percent: 0}, 0, true},
		{entity.ProgressEvent{Stage: entity.StagePlanning, Percent: 100}, 10, true},
		{entity.ProgressEvent{Stage: entity.StageGenerating, Percent: 0}, 10, true},
		{entity.ProgressEvent{Stage: entity.StageGenerating, Percent: 50}, 50, true},
		{entity.ProgressEvent{Stage: entity.StageGenerating, Percent: 100}, 90, true},
		{entity.ProgressEvent{Stage: entity.StageAssembling, Percent: 0}, 90, true},
		{entity.ProgressEvent{Stage: entity.StageAssembling, Percent: 100}, 100, true},
		{entity.ProgressEvent{Stage: entity.StageCompleted, Percent: 100}, 0, false},
		{entity.ProgressEvent{Stage: entity.StageFailed, Percent: 100}, 0, false},
	}
	for _, c := range cases {
		overall, ok := overallPercent(c.ev)
		assert.Equal(t, c.ok, ok, "stage %s", c.ev.Stage)
		if ok {
			assert.Equal(t, c.overall, overall, "stage %s percent %d", c.ev.Stage, c.ev.Percent)
		}
	}
}
