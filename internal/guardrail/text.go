// internal/guardrail/text.go
package guardrail

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// textStats holds the derived statistics the scoring rules operate on.
// Computed once per validation and shared by every rule.
type textStats struct {
	Words               []string
	WordCount           int
	SentenceCount       int
	CharacterCount      int
	LongWordCount       int // words longer than 8 characters
	TotalSyllables      int
	AvgWordsPerSentence float64
	AvgSyllablesPerWord float64
	Flesch              float64
}

func analyzeText(text string) *textStats {
	words := strings.Fields(text)

	stats := &textStats{
		Words:          words,
		WordCount:      len(words),
		SentenceCount:  countSentences(text),
		CharacterCount: utf8.RuneCountInString(text),
	}

	for _, w := range words {
		cleaned := trimWord(w)
		if len([]rune(cleaned)) > 8 {
			stats.LongWordCount++
		}
		stats.TotalSyllables += countSyllables(cleaned)
	}

	if stats.WordCount > 0 {
		stats.AvgWordsPerSentence = float64(stats.WordCount) / float64(stats.SentenceCount)
		stats.AvgSyllablesPerWord = float64(stats.TotalSyllables) / float64(stats.WordCount)
	}
	stats.Flesch = fleschReadingEase(stats.WordCount, stats.SentenceCount, stats.AvgSyllablesPerWord)

	return stats
}

// countSentences counts terminator punctuation; a text without any is
// treated as a single sentence.
func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

func trimWord(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// countSyllables approximates syllables by counting contiguous vowel groups,
// discounting a trailing silent "e", with a floor of one.
func countSyllables(word string) int {
	word = strings.ToLower(word)

	syllables := 0
	inGroup := false
	for _, r := range word {
		if strings.ContainsRune("aeiouy", r) {
			if !inGroup {
				syllables++
				inGroup = true
			}
		} else {
			inGroup = false
		}
	}

	if strings.HasSuffix(word, "e") {
		syllables--
	}
	if syllables < 1 {
		syllables = 1
	}
	return syllables
}

// fleschReadingEase computes the standard Flesch formula:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/word).
func fleschReadingEase(words, sentences int, avgSyllablesPerWord float64) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	return 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*avgSyllablesPerWord
}
