// Package detect scores a plan's size and risk from its step list and goal
// text. Detection is a pure function of its inputs: the same steps and goal
// always produce the same Result, including the order of Reasons.
package detect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ordinex/ordinex/internal/plan"
)

// Scoring weights and thresholds.
const (
	ModerateStepThreshold = 10
	LargeStepThreshold    = 16
	CombinedRiskThreshold = 2
	MultiDomainThreshold  = 2
	LargeScoreThreshold   = 60

	ModerateStepScore    = 20
	LargeStepScore       = 40
	RiskCategoryScore    = 15
	MultiDomainScore     = 15
	AmbiguityPhraseScore = 10

	MaxScore = 100

	// MaxGoalBytes bounds how much goal text is scanned.
	MaxGoalBytes = 64 * 1024
)

// Metrics are the raw signals extracted from a plan.
type Metrics struct {
	StepCount          int      `json:"stepCount" yaml:"stepCount"`
	EstimatedFileTouch int      `json:"estimatedFileTouch" yaml:"estimatedFileTouch"`
	RiskFlags          []string `json:"riskFlags" yaml:"riskFlags"`
	AmbiguityFlags     []string `json:"ambiguityFlags" yaml:"ambiguityFlags"`
	KeywordHits        []string `json:"keywordHits" yaml:"keywordHits"`
	Domains            []string `json:"domains" yaml:"domains"`
}

// Result is the outcome of a detection.
type Result struct {
	LargePlan bool     `json:"largePlan" yaml:"largePlan"`
	Score     int      `json:"score" yaml:"score"`
	Reasons   []string `json:"reasons" yaml:"reasons"`
	Metrics   Metrics  `json:"metrics" yaml:"metrics"`
}

// HasRisk reports whether category is among the result's risk flags.
func (r Result) HasRisk(category string) bool {
	for _, f := range r.Metrics.RiskFlags {
		if f == category {
			return true
		}
	}
	return false
}

// Detector scores plans against a Vocabulary.
type Detector struct {
	vocab *Vocabulary
}

// NewDetector returns a Detector for vocab. A nil vocab selects the
// built-in vocabulary.
func NewDetector(vocab *Vocabulary) *Detector {
	if vocab == nil {
		vocab = defaultVocabulary
	}
	return &Detector{vocab: vocab}
}

// Vocabulary returns the vocabulary d scores with.
func (d *Detector) Vocabulary() *Vocabulary {
	return d.vocab
}

var defaultDetector = NewDetector(nil)

// Detect scores steps and goal with the built-in vocabulary.
func Detect(steps []plan.Step, goal string) Result {
	return defaultDetector.Detect(steps, goal)
}

// Detect scores a plan. It never fails: unrecognized or empty text yields
// no matches and a low score.
func (d *Detector) Detect(steps []plan.Step, goal string) Result {
	goal = truncateGoal(goal)

	stepCount := len(steps)
	riskMatches := d.vocab.Risk.Match(goal)
	domainMatches := d.vocab.Domains.Match(goal)
	ambiguity := d.vocab.Ambiguity.Categories(goal)

	m := Metrics{
		StepCount:      stepCount,
		RiskFlags:      categoryNames(riskMatches),
		AmbiguityFlags: ambiguity,
		KeywordHits:    keywordHits(riskMatches, domainMatches),
		Domains:        categoryNames(domainMatches),
	}
	m.EstimatedFileTouch = estimateFileTouch(stepCount, len(m.RiskFlags), len(m.Domains))

	var (
		score   int
		large   bool
		reasons = []string{}
	)

	switch {
	case stepCount >= LargeStepThreshold:
		score += LargeStepScore
		large = true
		reasons = append(reasons, fmt.Sprintf(
			"Plan has %d steps (%d or more): too large to execute as a single unit", stepCount, LargeStepThreshold))
	case stepCount >= ModerateStepThreshold:
		score += ModerateStepScore
		reasons = append(reasons, fmt.Sprintf(
			"Plan has %d steps (%d-%d): above a comfortable single-pass size", stepCount, ModerateStepThreshold, LargeStepThreshold-1))
	}

	if len(m.RiskFlags) > 0 {
		score += RiskCategoryScore * len(m.RiskFlags)
		reasons = append(reasons, fmt.Sprintf("Goal touches high-risk areas: %s", strings.Join(m.RiskFlags, ", ")))

		if len(m.RiskFlags) >= CombinedRiskThreshold && stepCount >= ModerateStepThreshold {
			large = true
			reasons = append(reasons, fmt.Sprintf(
				"%d risk areas combined with %d steps", len(m.RiskFlags), stepCount))
		}
	}

	if len(m.Domains) >= MultiDomainThreshold {
		score += MultiDomainScore
		reasons = append(reasons, fmt.Sprintf("Goal spans multiple domains: %s", strings.Join(m.Domains, ", ")))
	}

	if len(m.AmbiguityFlags) > 0 {
		score += AmbiguityPhraseScore * len(m.AmbiguityFlags)
		reasons = append(reasons, fmt.Sprintf("Goal uses open-ended phrasing: %s", quoteAll(m.AmbiguityFlags)))
	}

	score = clamp(score, 0, MaxScore)
	if score >= LargeScoreThreshold {
		large = true
		reasons = append(reasons, fmt.Sprintf(
			"Score %d reaches the large-plan threshold of %d", score, LargeScoreThreshold))
	}

	return Result{
		LargePlan: large,
		Score:     score,
		Reasons:   reasons,
		Metrics:   m,
	}
}

// estimateFileTouch assumes two files per step plus extra surface for each
// risk area and domain involved.
// truncateGoal cuts goal to at most MaxGoalBytes without splitting a
// UTF-8 sequence.
func truncateGoal(goal string) string {
	if len(goal) <= MaxGoalBytes {
		return goal
	}
	cut := MaxGoalBytes
	for cut > 0 && !utf8.RuneStart(goal[cut]) {
		cut--
	}
	return goal[:cut]
}

func estimateFileTouch(steps, risks, domains int) int {
	return steps*2 + risks*2 + domains*3
}

func categoryNames(matches []Match) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Category)
	}
	return names
}

func keywordHits(groups ...[]Match) []string {
	hits := []string{}
	seen := make(map[string]bool)
	for _, matches := range groups {
		for _, m := range matches {
			for _, p := range m.Patterns {
				if seen[p] {
					continue
				}
				seen[p] = true
				hits = append(hits, p)
			}
		}
	}
	return hits
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
