package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByRunesShortTextSingleChunk(t *testing.T) {
	chunks := splitByRunes("short text", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitByRunesEmptyInput(t *testing.T) {
	assert.Nil(t, splitByRunes("   ", 100, 10))
}

func TestSplitByRunesOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	chunks := splitByRunes(text, 40, 10)

	require.Greater(t, len(chunks), 1)
	// 相邻分块应有重叠内容
	tail := chunks[0][len(chunks[0])-10:]
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestSplitByRunesHandlesMultibyte(t *testing.T) {
	text := strings.Repeat("心肌梗死的诊断与治疗要点", 20)
	chunks := splitByRunes(text, 50, 5)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 50)
	}
}
