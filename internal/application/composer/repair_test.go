package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
)

func testSection() *entity.OutlineSection {
	return &entity.OutlineSection{
		ID:          2,
		Title:       "Beta-blocker pharmacology",
		Description: "Mechanisms and contraindications",
		Kind:        entity.SectionKindContent,
	}
}

func TestRepairSlideHTMLCleanOutput(t *testing.T) {
	raw := `<section class="slide" data-kind="content"><h2>Beta-blockers</h2><ul><li>Mechanism</li></ul></section>`

	res := repairSlideHTML(raw, testSection(), 200)

	require.True(t, res.OK)
	assert.Equal(t, repairRungNone, res.Rung)
	assert.False(t, res.Wrapped)
	assert.Equal(t, raw, res.HTML)
}

func TestRepairSlideHTMLStripsFence(t *testing.T) {
	inner := `<section class="slide" data-kind="content"><h2>Beta-blockers</h2><p>Content body</p></section>`
	raw := "```html\n" + inner + "\n```"

	res := repairSlideHTML(raw, testSection(), 200)

	require.True(t, res.OK)
	assert.Equal(t, repairRungFenceStrip, res.Rung)
	// 围栏内内容必须逐字节保留
	assert.Equal(t, inner, res.HTML)
}

func TestRepairSlideHTMLExtractsBlockFromChatter(t *testing.T) {
	block := `<section class="slide" data-kind="quiz"><h2>Quiz</h2><ol><li>Option A</li></ol></section>`
	raw := "Sure! Here is your slide:\n\n" + block + "\n\nLet me know if you need changes."

	res := repairSlideHTML(raw, testSection(), 200)

	require.True(t, res.OK)
	assert.Equal(t, repairRungExtractBlock, res.Rung)
	assert.Equal(t, block, res.HTML)
}

func TestRepairSlideHTMLKeepsNestedSections(t *testing.T) {
	block := `<section class="slide" data-kind="content"><h2>Layout</h2>` +
		`<section class="column"><p>left column</p></section>` +
		`<section class="column"><p>right column</p></section>` +
		`</section>`
	raw := "Here you go:\n" + block

	res := repairSlideHTML(raw, testSection(), 200)

	require.True(t, res.OK)
	assert.Equal(t, repairRungExtractBlock, res.Rung)
	// 内层 <section> 不截断外层块
	assert.Equal(t, block, res.HTML)
	assert.Contains(t, res.HTML, "right column")
}

func TestRepairSlideHTMLDefensiveWrapIsLossless(t *testing.T) {
	raw := strings.Repeat("The mechanism of action involves beta-1 receptor antagonism. ", 10)

	res := repairSlideHTML(raw, testSection(), 200)

	require.True(t, res.OK)
	assert.Equal(t, repairRungDefensiveWrap, res.Rung)
	assert.True(t, res.Wrapped)
	assert.Contains(t, res.HTML, "Beta-blocker pharmacology")
	assert.Contains(t, res.HTML, strings.TrimSpace(raw))
	assert.True(t, strings.HasPrefix(res.HTML, `<section class="slide"`))
	assert.Contains(t, res.HTML, `data-repaired="true"`)
}

func TestRepairSlideHTMLRejectsShortGarbage(t *testing.T) {
	res := repairSlideHTML("I cannot help with that.", testSection(), 200)

	assert.False(t, res.OK)
}
