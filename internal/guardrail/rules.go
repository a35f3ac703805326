// internal/guardrail/rules.go
package guardrail

import "regexp"

// ruleKind classifies what a matched rule contributes to the result.
type ruleKind int

const (
	kindError ruleKind = iota
	kindWarning
	kindBonus
)

// phraseRule is one entry of the ordered matching tables. The engine walks
// each table in declaration order, so results are reproducible and the rule
// set is independently testable.
type phraseRule struct {
	Phrase  string
	Weight  int
	Message string
	Kind    ruleKind
}

// Business-risk phrases. Each match appends an error and costs 20 points.
var disallowedPhrases = []phraseRule{
	{"confidential data leak", -20, "content references leaking confidential data", kindError},
	{"insider trading", -20, "content references insider trading", kindError},
	{"money laundering", -20, "content references money laundering", kindError},
	{"falsify financial records", -20, "content references falsifying financial records", kindError},
	{"bypass compliance", -20, "content references bypassing compliance controls", kindError},
}

// Hard-block phrases. Each match appends an error and marks the result
// invalid directly, independent of the final recomputation.
var blockedPhrases = []phraseRule{
	{"self-harm", 0, "content contains self-harm language", kindError},
	{"suicide", 0, "content contains self-harm language", kindError},
	{"hate speech", 0, "content contains hate speech", kindError},
	{"racial discrimination", 0, "content contains discriminatory language", kindError},
	{"gender discrimination", 0, "content contains discriminatory language", kindError},
	{"incite violence", 0, "content contains violent language", kindError},
	{"harm others", 0, "content contains violent language", kindError},
}

// Professional/business allowlist. Each matching term adds 5 points.
var positiveTerms = []string{
	"collaboration",
	"growth",
	"improvement",
	"innovation",
	"achievement",
	"reliable",
	"maintainable",
	"leadership",
	"teamwork",
	"mentorship",
}

// Inclusive phrasing: either phrase is worth 10 points, both together an
// extra 5.
var inclusivePhrases = [2]string{
	"diverse perspectives",
	"inclusive environment",
}

// Strengths vocabulary: 3 points per distinct term present.
var strengthTerms = []string{
	"resilient",
	"adaptable",
	"proactive",
	"strategic",
	"analytical",
	"collaborative",
}

// Evidence language: any match is worth 10 points.
var evidencePhrases = []string{
	"according to",
	"research shows",
	"data indicates",
	"studies suggest",
}

// Recognized practices: any match is worth 5 points.
var practicePhrases = []string{
	"best practice",
	"code review",
	"continuous integration",
	"pair programming",
	"test-driven",
	"documentation",
}

// Cultural sensitivity lists. Inclusive terms add 5 points once; each
// exclusive term present appends a warning without a score change.
var culturalInclusiveTerms = []string{
	"diverse",
	"inclusive",
	"accessible",
	"equitable",
}

var exclusiveTerms = []string{
	"everyone",
	"all kids",
	"normal",
	"typical",
}

// Privacy patterns. Any match appends an error and invalidates directly.
var privacyPatterns = []struct {
	Name    string
	Pattern *regexp.Regexp
}{
	{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"email address", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
	{"phone number", regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`)},
}

// complexityThresholds gives the maximum acceptable long-word ratio per
// experience level. Principal has no ceiling.
var complexityThresholds = map[ExperienceLevel]float64{
	LevelEntry:  0.10,
	LevelJunior: 0.15,
	LevelMid:    0.25,
	LevelSenior: 0.30,
}

// readabilityMinimums gives the minimum Flesch Reading Ease per level.
var readabilityMinimums = map[ExperienceLevel]float64{
	LevelEntry:     80,
	LevelJunior:    70,
	LevelMid:       60,
	LevelSenior:    50,
	LevelPrincipal: 40,
}
