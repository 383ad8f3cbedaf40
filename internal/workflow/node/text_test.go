package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFenceRoundTripsBytes(t *testing.T) {
	inner := "<section>\n  <h2>Title</h2>\n\n  <p>spacing   preserved</p>\n</section>"

	for _, lang := range []string{"", "html", "json"} {
		fenced := "```" + lang + "\n" + inner + "\n```"
		got := StripCodeFence(fenced)
		assert.Equal(t, inner, got, "fence lang %q", lang)
	}
}

func TestStripCodeFenceLeavesUnfencedAlone(t *testing.T) {
	for _, s := range []string{
		"<section><p>plain</p></section>",
		"inline ``` backticks ``` in prose",
		"```",
		"",
	} {
		assert.Equal(t, s, StripCodeFence(s))
	}
}

func TestStripCodeFenceIgnoresInnerBackticks(t *testing.T) {
	inner := "code sample: `x := 1`"
	fenced := "```\n" + inner + "\n```"
	assert.Equal(t, inner, StripCodeFence(fenced))
}

func TestExtractJSONObjectFromChatter(t *testing.T) {
	raw := `Here's the plan you asked for:

{"title": "Test", "sections": [{"id": 1}]}

Hope that helps!`

	got := ExtractJSONObject(raw)
	assert.Equal(t, `{"title": "Test", "sections": [{"id": 1}]}`, got)
}

func TestExtractJSONObjectPassesCleanJSON(t *testing.T) {
	raw := `{"a": 1, "b": [2, 3]}`
	assert.Equal(t, raw, ExtractJSONObject(raw))
}

func TestExtractSectionBlockFirstMatch(t *testing.T) {
	first := `<section class="slide"><p>one</p></section>`
	raw := "preamble " + first + ` trailing <section><p>two</p></section>`

	got, ok := ExtractSectionBlock(raw)
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestExtractSectionBlockHandlesMultiline(t *testing.T) {
	block := "<section class=\"slide\"\n  data-kind=\"quiz\">\n<h2>Q</h2>\n</section>"

	got, ok := ExtractSectionBlock("noise\n" + block + "\nmore noise")
	require.True(t, ok)
	assert.Equal(t, block, got)
}

func TestExtractSectionBlockKeepsNestedSections(t *testing.T) {
	block := `<section class="slide"><h2>Outer</h2><section class="inner"><p>nested</p></section><p>after</p></section>`

	got, ok := ExtractSectionBlock("noise " + block + ` tail <section><p>two</p></section>`)
	require.True(t, ok)
	assert.Equal(t, block, got)
}

func TestExtractSectionBlockCaseInsensitiveTags(t *testing.T) {
	raw := `<SECTION class="slide"><p>upper</p></SECTION>`

	got, ok := ExtractSectionBlock("before " + raw)
	require.True(t, ok)
	assert.Equal(t, raw, got)
}

func TestExtractSectionBlockMissing(t *testing.T) {
	for _, s := range []string{
		"<div>not a section</div>",
		`<section class="slide"><p>never closed`,
		`<sectionx>boundary check</sectionx>`,
	} {
		_, ok := ExtractSectionBlock(s)
		assert.False(t, ok, "input %q", s)
	}
}
