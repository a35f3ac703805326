// internal/guardrail/engine.go

// Package guardrail implements the deterministic text-scoring heuristic that
// governs whether generated content and build requirements are acceptable.
// Scoring starts from a neutral 50 and accumulates independent signed
// adjustments; every check runs regardless of earlier outcomes.
package guardrail

import (
	"context"
	"fmt"
	"strings"

	"autobuild/internal/common/logger"
)

// ExperienceLevel selects the complexity and readability thresholds.
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelJunior    ExperienceLevel = "junior"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelPrincipal ExperienceLevel = "principal"
)

// CommunicationLevel selects the target communication fit check.
type CommunicationLevel string

const (
	CommSimple   CommunicationLevel = "simple"
	CommStandard CommunicationLevel = "standard"
	CommAdvanced CommunicationLevel = "advanced"
	CommExpert   CommunicationLevel = "expert"
)

// QualityLevel classifies the final score.
type QualityLevel string

const (
	QualityExcellent        QualityLevel = "excellent"
	QualityGood             QualityLevel = "good"
	QualityAcceptable       QualityLevel = "acceptable"
	QualityNeedsImprovement QualityLevel = "needs_improvement"
	QualityPoor             QualityLevel = "poor"
)

// Options carries the optional validation context.
type Options struct {
	ExperienceLevel    ExperienceLevel    `json:"experienceLevel,omitempty"`
	CommunicationLevel CommunicationLevel `json:"communicationLevel,omitempty"`
	BusinessContext    string             `json:"businessContext,omitempty"`
}

// TextMetrics reports the statistics computed during validation.
type TextMetrics struct {
	WordCount        int     `json:"wordCount"`
	SentenceCount    int     `json:"sentenceCount"`
	CharacterCount   int     `json:"characterCount"`
	ReadabilityScore float64 `json:"readabilityScore"`
}

// Result is the validation verdict. It is produced fresh per call and never
// persisted. Score carries no enforced bound.
type Result struct {
	IsValid      bool         `json:"isValid"`
	Score        int          `json:"score"`
	QualityLevel QualityLevel `json:"qualityLevel"`
	Errors       []string     `json:"errors"`
	Warnings     []string     `json:"warnings"`
	Metrics      TextMetrics  `json:"metrics"`
}

// ModerationVerdict is the outcome of the optional external moderation check.
type ModerationVerdict struct {
	Approved   bool     `json:"approved"`
	Categories []string `json:"categories"`
}

// Moderator is the optional, soft-failing external moderation collaborator.
type Moderator interface {
	Moderate(ctx context.Context, text string) (*ModerationVerdict, error)
}

// Engine evaluates text against the ordered rule cascade. Safe for
// concurrent use; all mutable state lives in the per-call evaluation.
type Engine struct {
	logger    logger.Logger
	moderator Moderator
}

// NewEngine creates a validation engine. moderator may be nil, in which case
// the external moderation check is skipped with a warning.
func NewEngine(log logger.Logger, moderator Moderator) *Engine {
	return &Engine{
		logger:    log.WithFields(map[string]interface{}{"component": "guardrail"}),
		moderator: moderator,
	}
}

// evaluation is the per-call scratch state shared by the check steps.
type evaluation struct {
	text   string
	lower  string
	stats  *textStats
	opts   Options
	result *Result
}

// Validate runs the full rule cascade over text. Checks never short-circuit:
// every step runs and contributes its adjustment independently.
func (e *Engine) Validate(ctx context.Context, text string, opts Options) *Result {
	ev := &evaluation{
		text:  text,
		lower: strings.ToLower(text),
		stats: analyzeText(text),
		opts:  opts,
		result: &Result{
			IsValid:  true,
			Score:    50,
			Errors:   []string{},
			Warnings: []string{},
		},
	}
	ev.result.Metrics = TextMetrics{
		WordCount:        ev.stats.WordCount,
		SentenceCount:    ev.stats.SentenceCount,
		CharacterCount:   ev.stats.CharacterCount,
		ReadabilityScore: ev.stats.Flesch,
	}

	// Fixed evaluation order; each step applies its own adjustments.
	e.checkDisallowedPhrases(ev)
	e.checkBlockedPhrases(ev)
	e.checkModeration(ctx, ev)
	e.checkPositiveLanguage(ev)
	e.checkInclusivePhrasing(ev)
	e.checkStrengthTerms(ev)
	e.checkProcessQuality(ev)
	e.checkCommunicationMention(ev)
	e.checkDisclaimer(ev)
	e.checkEvidenceLanguage(ev)
	e.checkValidPractices(ev)
	e.checkComplexity(ev)
	e.checkReadability(ev)
	e.checkCommunicationFit(ev)
	e.checkCulturalSensitivity(ev)
	e.checkPrivacy(ev)
	e.checkLength(ev)
	e.finalize(ev)

	return ev.result
}

func (e *Engine) checkDisallowedPhrases(ev *evaluation) {
	for _, rule := range disallowedPhrases {
		if strings.Contains(ev.lower, rule.Phrase) {
			ev.result.Errors = append(ev.result.Errors, rule.Message)
			ev.result.Score += rule.Weight
		}
	}
}

func (e *Engine) checkBlockedPhrases(ev *evaluation) {
	for _, rule := range blockedPhrases {
		if strings.Contains(ev.lower, rule.Phrase) {
			ev.result.Errors = append(ev.result.Errors, rule.Message)
			ev.result.IsValid = false
		}
	}
}

// checkModeration calls the optional external collaborator. Transport
// failures and absence downgrade to a warning; only an explicit rejection
// produces an error.
func (e *Engine) checkModeration(ctx context.Context, ev *evaluation) {
	if e.moderator == nil {
		ev.result.Warnings = append(ev.result.Warnings, "external moderation skipped: no provider configured")
		return
	}

	verdict, err := e.moderator.Moderate(ctx, ev.text)
	if err != nil || verdict == nil {
		e.logger.Warn("moderation check unavailable", map[string]interface{}{
			"error": err,
		})
		ev.result.Warnings = append(ev.result.Warnings, "external moderation unavailable")
		return
	}

	if !verdict.Approved {
		ev.result.Errors = append(ev.result.Errors, "content rejected by external moderation")
		for _, category := range verdict.Categories {
			ev.result.Warnings = append(ev.result.Warnings, fmt.Sprintf("moderation flagged category: %s", category))
		}
	}
}

func (e *Engine) checkPositiveLanguage(ev *evaluation) {
	matches := 0
	for _, term := range positiveTerms {
		if strings.Contains(ev.lower, term) {
			ev.result.Score += 5
			matches++
		}
	}
	if matches == 0 {
		ev.result.Warnings = append(ev.result.Warnings, "no professional or business language detected")
	}
}

func (e *Engine) checkInclusivePhrasing(ev *evaluation) {
	first := strings.Contains(ev.lower, inclusivePhrases[0])
	second := strings.Contains(ev.lower, inclusivePhrases[1])
	if first || second {
		ev.result.Score += 10
	}
	if first && second {
		ev.result.Score += 5
	}
}

func (e *Engine) checkStrengthTerms(ev *evaluation) {
	// Once per term present, not per occurrence.
	for _, term := range strengthTerms {
		if strings.Contains(ev.lower, term) {
			ev.result.Score += 3
		}
	}
}

func (e *Engine) checkProcessQuality(ev *evaluation) {
	if strings.Contains(ev.lower, "process") &&
		(strings.Contains(ev.lower, "optimization") || strings.Contains(ev.lower, "automation")) {
		ev.result.Score += 8
	}
	if strings.Contains(ev.lower, "efficient") && !strings.Contains(ev.lower, "inefficient") {
		ev.result.Score += 5
	}
}

func (e *Engine) checkCommunicationMention(ev *evaluation) {
	if strings.Contains(ev.lower, "communication") && !strings.Contains(ev.lower, "poor communication") {
		ev.result.Score += 5
	}
}

func (e *Engine) checkDisclaimer(ev *evaluation) {
	mentionsRegulated := strings.Contains(ev.lower, "legal") || strings.Contains(ev.lower, "compliance")
	if !mentionsRegulated {
		return
	}
	hasDisclaimer := strings.Contains(ev.lower, "consult") &&
		(strings.Contains(ev.lower, "legal") || strings.Contains(ev.lower, "professional"))
	if !hasDisclaimer {
		ev.result.Warnings = append(ev.result.Warnings, "legal or compliance topic mentioned without a consult-a-professional disclaimer")
	}
}

func (e *Engine) checkEvidenceLanguage(ev *evaluation) {
	for _, phrase := range evidencePhrases {
		if strings.Contains(ev.lower, phrase) {
			ev.result.Score += 10
			return
		}
	}
	if strings.Contains(ev.lower, "strategy") || strings.Contains(ev.lower, "solution") {
		ev.result.Warnings = append(ev.result.Warnings, "strategic claims made without supporting evidence language")
	}
}

func (e *Engine) checkValidPractices(ev *evaluation) {
	for _, phrase := range practicePhrases {
		if strings.Contains(ev.lower, phrase) {
			ev.result.Score += 5
			return
		}
	}
}

// experienceLevel defaults to mid when the caller gave none.
func (ev *evaluation) experienceLevel() ExperienceLevel {
	if ev.opts.ExperienceLevel == "" {
		return LevelMid
	}
	return ev.opts.ExperienceLevel
}

func (e *Engine) checkComplexity(ev *evaluation) {
	level := ev.experienceLevel()

	ratio := 0.0
	if ev.stats.WordCount > 0 {
		ratio = float64(ev.stats.LongWordCount) / float64(ev.stats.WordCount)
	}

	pass := true
	if level != LevelPrincipal {
		threshold, ok := complexityThresholds[level]
		if !ok {
			threshold = complexityThresholds[LevelMid]
		}
		pass = ratio < threshold
	}

	if pass {
		ev.result.Score += 5
	} else {
		ev.result.Warnings = append(ev.result.Warnings, fmt.Sprintf("vocabulary complexity too high for %s level", level))
		ev.result.Score -= 10
	}
}

func (e *Engine) checkReadability(ev *evaluation) {
	level := ev.experienceLevel()
	minimum, ok := readabilityMinimums[level]
	if !ok {
		minimum = readabilityMinimums[LevelMid]
	}

	if ev.stats.Flesch < minimum {
		ev.result.Warnings = append(ev.result.Warnings, fmt.Sprintf("readability below the %s level minimum", level))
		ev.result.Score -= 5
	}
}

func (e *Engine) checkCommunicationFit(ev *evaluation) {
	if ev.opts.CommunicationLevel == "" {
		return
	}

	fits := false
	switch ev.opts.CommunicationLevel {
	case CommSimple:
		fits = ev.stats.Flesch >= 70 && ev.stats.AvgWordsPerSentence <= 10
	case CommStandard:
		fits = ev.stats.Flesch >= 60 && ev.stats.AvgWordsPerSentence <= 15
	case CommAdvanced:
		fits = ev.stats.Flesch >= 50
	case CommExpert:
		fits = true
	}

	if fits {
		ev.result.Score += 10
	} else {
		ev.result.Warnings = append(ev.result.Warnings, fmt.Sprintf("text does not fit the %s communication level", ev.opts.CommunicationLevel))
	}
}

func (e *Engine) checkCulturalSensitivity(ev *evaluation) {
	for _, term := range culturalInclusiveTerms {
		if strings.Contains(ev.lower, term) {
			ev.result.Score += 5
			break
		}
	}
	for _, term := range exclusiveTerms {
		if strings.Contains(ev.lower, term) {
			ev.result.Warnings = append(ev.result.Warnings, fmt.Sprintf("potentially exclusive language: %q", term))
		}
	}
}

func (e *Engine) checkPrivacy(ev *evaluation) {
	for _, pattern := range privacyPatterns {
		if pattern.Pattern.MatchString(ev.text) {
			ev.result.Errors = append(ev.result.Errors, fmt.Sprintf("PII detected: text contains a %s", pattern.Name))
			ev.result.IsValid = false
		}
	}
}

func (e *Engine) checkLength(ev *evaluation) {
	switch {
	case ev.stats.WordCount < 10:
		ev.result.Warnings = append(ev.result.Warnings, "content is very short")
	case ev.stats.WordCount > 500:
		ev.result.Warnings = append(ev.result.Warnings, "content is very long")
	default:
		ev.result.Score += 5
	}
}

// finalize recomputes validity from the error list as the last step. The
// recomputation runs after the direct hard-fail assignments and wins.
func (e *Engine) finalize(ev *evaluation) {
	ev.result.IsValid = len(ev.result.Errors) == 0
	ev.result.QualityLevel = classifyQuality(ev.result.Score)
}

func classifyQuality(score int) QualityLevel {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 70:
		return QualityGood
	case score >= 60:
		return QualityAcceptable
	case score >= 40:
		return QualityNeedsImprovement
	default:
		return QualityPoor
	}
}
