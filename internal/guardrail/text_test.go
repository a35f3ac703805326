// internal/guardrail/text_test.go
package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Syllable Heuristic Tests
// ==========================

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word     string
		expected int
	}{
		{"hello", 2},
		{"cake", 1},
		{"idea", 2},
		{"queue", 1},
		{"rhythm", 1},
		{"automation", 4},
		{"collaborative", 5},
		{"a", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, countSyllables(tt.word))
		})
	}
}

// ==========================
// Sentence and Word Tests
// ==========================

func TestCountSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"three terminators", "One. Two! Three?", 3},
		{"no terminator counts as one", "no punctuation here", 1},
		{"empty text counts as one", "", 1},
		{"consecutive terminators each count", "Wait... what?", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countSentences(tt.text))
		})
	}
}

func TestTrimWord(t *testing.T) {
	assert.Equal(t, "hello", trimWord("(hello)"))
	assert.Equal(t, "don't", trimWord("don't,"))
	assert.Equal(t, "v2", trimWord("\"v2\""))
	assert.Equal(t, "", trimWord("..."))
}

func TestAnalyzeText(t *testing.T) {
	stats := analyzeText("The quick brown fox jumps over the lazy dog.")

	assert.Equal(t, 9, stats.WordCount)
	assert.Equal(t, 1, stats.SentenceCount)
	assert.Equal(t, 0, stats.LongWordCount)
	assert.InDelta(t, 9.0, stats.AvgWordsPerSentence, 0.001)
}

func TestAnalyzeText_LongWords(t *testing.T) {
	// "comprehensive" and "organization" exceed eight characters after
	// punctuation is trimmed.
	stats := analyzeText("A comprehensive plan for the organization.")

	assert.Equal(t, 6, stats.WordCount)
	assert.Equal(t, 2, stats.LongWordCount)
}

// ==========================
// Readability Tests
// ==========================

func TestFleschReadingEase(t *testing.T) {
	// 206.835 - 1.015*(10/1) - 84.6*1.5 = 69.785
	assert.InDelta(t, 69.785, fleschReadingEase(10, 1, 1.5), 0.0001)
}

func TestFleschReadingEase_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, fleschReadingEase(0, 0, 0))
}
