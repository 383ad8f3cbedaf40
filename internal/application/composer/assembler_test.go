package composer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-lecture-ai-api/internal/domain/entity"
)

func testSlides(n int) []entity.Slide {
	slides := make([]entity.Slide, 0, n)
	for i := 1; i <= n; i++ {
		slides = append(slides, entity.Slide{
			SectionID: i,
			Title:     fmt.Sprintf("Section %d", i),
			Kind:      entity.SectionKindContent,
			HTML:      fmt.Sprintf(`<section class="slide" data-kind="content"><h2>Section %d</h2><p>Body content for slide number %d with sufficient length.</p></section>`, i, i),
		})
	}
	return slides
}

func TestAssembleProducesCompleteDocument(t *testing.T) {
	a := NewAssembler(512)
	outline := testOutline(3)

	deck, err := a.Assemble(outline, testSlides(3), "job-1", "deck-1", "dark")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(deck.HTML, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(deck.HTML), "</html>"))
	assert.Contains(t, deck.HTML, `data-theme="dark"`)
	assert.Contains(t, deck.HTML, outline.Title)
	assert.Equal(t, 3, deck.SlideCount())
}

func TestAssembleBuildsStableNavIndex(t *testing.T) {
	a := NewAssembler(512)
	outline := testOutline(3)

	deck, err := a.Assemble(outline, testSlides(3), "job-1", "deck-1", "")

	require.NoError(t, err)
	require.Len(t, deck.Nav, 3)
	for i, n := range deck.Nav {
		assert.Equal(t, i, n.Position)
		assert.Equal(t, i+1, n.SectionID)
	}
	assert.Equal(t, 1, deck.PositionOf(2))
	assert.Equal(t, -1, deck.PositionOf(99))
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := NewAssembler(512)
	outline := testOutline(4)

	d1, err := a.Assemble(outline, testSlides(4), "job-1", "deck-1", "default")
	require.NoError(t, err)
	d2, err := a.Assemble(outline, testSlides(4), "job-1", "deck-1", "default")
	require.NoError(t, err)

	assert.Equal(t, d1.HTML, d2.HTML)
	assert.Equal(t, d1.Nav, d2.Nav)
}

func TestAssembleRejectsCountMismatch(t *testing.T) {
	a := NewAssembler(512)

	_, err := a.Assemble(testOutline(3), testSlides(2), "job-1", "deck-1", "")

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Reason, "does not match")
}

func TestAssembleRejectsBrokenOrder(t *testing.T) {
	a := NewAssembler(512)
	slides := testSlides(3)
	slides[0], slides[2] = slides[2], slides[0]

	_, err := a.Assemble(testOutline(3), slides, "job-1", "deck-1", "")

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Reason, "order")
}

func TestAssembleRejectsEmptySlide(t *testing.T) {
	a := NewAssembler(512)
	slides := testSlides(3)
	slides[1].HTML = "   "

	_, err := a.Assemble(testOutline(3), slides, "job-1", "deck-1", "")

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Reason, "empty")
}

func TestAssembleRejectsUndersizedDocument(t *testing.T) {
	a := NewAssembler(1 << 20)

	_, err := a.Assemble(testOutline(1), testSlides(1), "job-1", "deck-1", "")

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Reason, "below minimum")
}

func TestAssembleEscapesTitleInDocument(t *testing.T) {
	a := NewAssembler(512)
	outline := testOutline(2)
	outline.Title = `Sepsis <Bundles> & "Shock"`

	deck, err := a.Assemble(outline, testSlides(2), "job-1", "deck-1", "")

	require.NoError(t, err)
	assert.Contains(t, deck.HTML, "Sepsis &lt;Bundles&gt; &amp; &#34;Shock&#34;")
}
