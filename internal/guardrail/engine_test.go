// internal/guardrail/engine_test.go
package guardrail

import (
	"context"
	"errors"
	"testing"

	"autobuild/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubModerator struct {
	verdict *ModerationVerdict
	err     error
}

func (s *stubModerator) Moderate(_ context.Context, _ string) (*ModerationVerdict, error) {
	return s.verdict, s.err
}

func createTestEngine(t *testing.T, moderator Moderator) *Engine {
	return NewEngine(logger.NewTestLogger(t), moderator)
}

func approvingModerator() *stubModerator {
	return &stubModerator{verdict: &ModerationVerdict{Approved: true}}
}

// plainText is free of every scoring phrase and PII pattern: the only
// adjustments it earns are the complexity pass and the length bonus.
const plainText = "The team met at noon to plan the next sprint. " +
	"We spoke about the work we did last week. " +
	"The board shows what is left to do. " +
	"Each person picked a small task to own. " +
	"We will meet again on Friday to see how far we got. " +
	"It went well."

// richText hits the positive, inclusive, strength, process, communication,
// evidence, practice and cultural rules at once.
const richText = "Our collaboration and teamwork drive growth. " +
	"We value diverse perspectives and an inclusive environment. " +
	"The team is proactive and adaptable. " +
	"Research shows that process automation makes the work efficient. " +
	"Good communication and code review are part of how we work each day."

// ==========================
// Core Scoring Tests
// ==========================

func TestEngine_Validate_NeutralBaseline(t *testing.T) {
	engine := createTestEngine(t, nil)

	result := engine.Validate(context.Background(), plainText, Options{})

	require.NotNil(t, result)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	// 50 base + 5 complexity pass + 5 length.
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, QualityAcceptable, result.QualityLevel)
	assert.Contains(t, result.Warnings, "no professional or business language detected")
	assert.Contains(t, result.Warnings, "external moderation skipped: no provider configured")
	assert.Equal(t, 50, result.Metrics.WordCount)
	assert.Equal(t, 6, result.Metrics.SentenceCount)
}

func TestEngine_Validate_BonusAccumulation(t *testing.T) {
	engine := createTestEngine(t, approvingModerator())

	result := engine.Validate(context.Background(), richText, Options{
		ExperienceLevel: LevelPrincipal,
	})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	// 50 base, +15 positive terms, +15 inclusive phrases, +6 strength terms,
	// +13 process quality, +5 communication, +10 evidence, +5 practice,
	// +5 complexity, +5 cultural, +5 length.
	assert.Equal(t, 134, result.Score)
	assert.Equal(t, QualityExcellent, result.QualityLevel)
}

func TestEngine_Validate_DisallowedPhrase(t *testing.T) {
	engine := createTestEngine(t, nil)

	result := engine.Validate(context.Background(), "This plan involves insider trading at the firm.", Options{})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "content references insider trading")
	// 50 base, -20 disallowed, +5 complexity pass; too short for the
	// length bonus.
	assert.Equal(t, 35, result.Score)
	assert.Equal(t, QualityPoor, result.QualityLevel)
}

func TestEngine_Validate_HardBlockPhrase(t *testing.T) {
	engine := createTestEngine(t, nil)

	result := engine.Validate(context.Background(), "We must stop hate speech online.", Options{})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "content contains hate speech")
}

func TestEngine_Validate_ChecksDoNotShortCircuit(t *testing.T) {
	engine := createTestEngine(t, nil)

	// A hard-block phrase and a disallowed phrase in one text: both
	// error paths fire and every later check still runs.
	result := engine.Validate(context.Background(),
		"They plan insider trading and incite violence against auditors.", Options{})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "content references insider trading")
	assert.Contains(t, result.Errors, "content contains violent language")
	assert.Contains(t, result.Warnings, "content is very short")
}

// ==========================
// Privacy Tests
// ==========================

func TestEngine_Validate_PrivacyPatterns(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		errContains string
	}{
		{
			name:        "email address",
			text:        "Contact our lead at jane.doe@example.com for details.",
			errContains: "email address",
		},
		{
			name:        "social security number",
			text:        "The number 123-45-6789 appeared in the log output.",
			errContains: "SSN",
		},
		{
			name:        "phone number",
			text:        "Call 555-867-5309 and ask for the on-call engineer.",
			errContains: "phone number",
		},
	}

	engine := createTestEngine(t, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Validate(context.Background(), tt.text, Options{})

			assert.False(t, result.IsValid)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.errContains)
		})
	}
}

// ==========================
// Moderation Tests
// ==========================

func TestEngine_Validate_ModerationRejection(t *testing.T) {
	engine := createTestEngine(t, &stubModerator{
		verdict: &ModerationVerdict{Approved: false, Categories: []string{"violence", "harassment"}},
	})

	result := engine.Validate(context.Background(), plainText, Options{})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "content rejected by external moderation")
	assert.Contains(t, result.Warnings, "moderation flagged category: violence")
	assert.Contains(t, result.Warnings, "moderation flagged category: harassment")
}

func TestEngine_Validate_ModerationFailureIsSoft(t *testing.T) {
	engine := createTestEngine(t, &stubModerator{err: errors.New("connection refused")})

	result := engine.Validate(context.Background(), plainText, Options{})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Warnings, "external moderation unavailable")
}

func TestEngine_Validate_Deterministic(t *testing.T) {
	engine := createTestEngine(t, approvingModerator())
	opts := Options{ExperienceLevel: LevelSenior, CommunicationLevel: CommStandard}

	first := engine.Validate(context.Background(), richText, opts)
	second := engine.Validate(context.Background(), richText, opts)

	require.Equal(t, first, second)
}

// ==========================
// Level Threshold Tests
// ==========================

func TestEngine_Validate_DefaultLevelIsMid(t *testing.T) {
	engine := createTestEngine(t, nil)
	text := "The team read the quarterly report and sent two observations."

	implicit := engine.Validate(context.Background(), text, Options{})
	explicit := engine.Validate(context.Background(), text, Options{ExperienceLevel: LevelMid})

	require.Equal(t, explicit, implicit)
}

func TestEngine_Validate_ComplexityByLevel(t *testing.T) {
	// Long-word ratio 0.2: under the mid ceiling, over the junior one.
	text := "The team read the quarterly report and sent two observations."
	engine := createTestEngine(t, nil)

	mid := engine.Validate(context.Background(), text, Options{ExperienceLevel: LevelMid})
	junior := engine.Validate(context.Background(), text, Options{ExperienceLevel: LevelJunior})

	assert.NotContains(t, mid.Warnings, "vocabulary complexity too high for mid level")
	assert.Contains(t, junior.Warnings, "vocabulary complexity too high for junior level")
	assert.Greater(t, mid.Score, junior.Score)
}

func TestEngine_Validate_CommunicationFit(t *testing.T) {
	engine := createTestEngine(t, nil)

	fit := engine.Validate(context.Background(), plainText, Options{CommunicationLevel: CommSimple})
	assert.Equal(t, 70, fit.Score)
	assert.Equal(t, QualityGood, fit.QualityLevel)

	longSentence := "We will go to the store and then we will walk to the park and back home again"
	misfit := engine.Validate(context.Background(), longSentence, Options{CommunicationLevel: CommSimple})
	assert.Contains(t, misfit.Warnings, "text does not fit the simple communication level")
}

// ==========================
// Quality Classification Tests
// ==========================

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		score    int
		expected QualityLevel
	}{
		{95, QualityExcellent},
		{80, QualityExcellent},
		{79, QualityGood},
		{70, QualityGood},
		{69, QualityAcceptable},
		{60, QualityAcceptable},
		{59, QualityNeedsImprovement},
		{40, QualityNeedsImprovement},
		{39, QualityPoor},
		{-10, QualityPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, classifyQuality(tt.score), "score %d", tt.score)
	}
}
