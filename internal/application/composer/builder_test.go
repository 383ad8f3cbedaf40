package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
	"z-lecture-ai-api/internal/workflow/model"
	"z-lecture-ai-api/pkg/retry"

	"github.com/cloudwego/eino/schema"
)

type scriptedSlideChain struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedSlideChain) Invoke(ctx context.Context, in *model.SlideGenerateInput) (*schema.Message, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return &schema.Message{Role: schema.Assistant, Content: s.responses[i]}, nil
}

func TestBuilderMarksRepairedSlides(t *testing.T) {
	longText := "Beta-blockers reduce myocardial oxygen demand through negative chronotropy and inotropy. " +
		"They are first-line agents after myocardial infarction and in chronic heart failure with reduced ejection fraction. " +
		"Contraindications include severe bradycardia, high-degree AV block and decompensated heart failure."
	chain := &scriptedSlideChain{responses: []string{longText}}
	b := NewBuilder(chain, nil, fastPolicy(), 40, 100)

	outline := testOutline(1)
	slide, err := b.Build(context.Background(), outline, &outline.Sections[0], &ComposeRequest{Topic: "x", Provider: "openai"}, "")

	require.NoError(t, err)
	assert.True(t, slide.Repaired)
	assert.Contains(t, slide.HTML, `data-repaired="true"`)
}

func TestBuilderRejectsTooShortSlide(t *testing.T) {
	chain := &scriptedSlideChain{responses: []string{`<section class="slide"><h2>x</h2></section>`}}
	b := NewBuilder(chain, nil, fastPolicy(), 500, 200)

	outline := testOutline(1)
	_, err := b.Build(context.Background(), outline, &outline.Sections[0], &ComposeRequest{Topic: "x", Provider: "openai"}, "")

	var slideErr *SlideGenerationError
	require.ErrorAs(t, err, &slideErr)
	assert.Equal(t, 1, slideErr.SectionID)
	assert.Contains(t, slideErr.Reason, "minimum length")
}

func TestBuilderRetriesTransientErrors(t *testing.T) {
	good := `<section class="slide" data-kind="content"><h2>Recovered</h2><p>Body content long enough to pass the minimum length gate.</p></section>`
	chain := &scriptedSlideChain{
		errs:      []error{errors.New("503 service unavailable"), nil},
		responses: []string{good, good},
	}
	b := NewBuilder(chain, nil, retry.Policy{MaxAttempts: 3, Initial: 1, Max: 1, Multiplier: 1}, 40, 200)

	outline := testOutline(1)
	slide, err := b.Build(context.Background(), outline, &outline.Sections[0], &ComposeRequest{Topic: "x", Provider: "openai"}, "")

	require.NoError(t, err)
	assert.Equal(t, 2, chain.calls)
	assert.Equal(t, entity.SectionKindContent, slide.Kind)
}

func TestBuilderDoesNotRetryContentFailures(t *testing.T) {
	// 可解析但过短的输出不是瞬态错误，不应消耗重试
	chain := &scriptedSlideChain{responses: []string{"nope", "nope", "nope"}}
	b := NewBuilder(chain, nil, retry.Policy{MaxAttempts: 3, Initial: 1, Max: 1, Multiplier: 1}, 40, 200)

	outline := testOutline(1)
	_, err := b.Build(context.Background(), outline, &outline.Sections[0], &ComposeRequest{Topic: "x", Provider: "openai"}, "")

	var slideErr *SlideGenerationError
	require.ErrorAs(t, err, &slideErr)
	assert.Equal(t, 1, chain.calls)
}
