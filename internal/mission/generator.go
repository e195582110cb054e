package mission

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/plan"
)

// Partitioning limits.
const (
	MaxMissions        = 8
	MaxStepsPerMission = 6
	MaxSteps           = MaxMissions * MaxStepsPerMission

	// PreferredStepsPerMission is the slice size aimed for when a
	// breakdown is warranted and the cap leaves room to split further.
	PreferredStepsPerMission = 4
	MinMissionsWhenWarranted = 2

	// MaxDependencies bounds the fan-out of a single mission.
	MaxDependencies = 3

	maxTitleLen = 60
)

// Options tune a single generation.
type Options struct {
	// Force treats the breakdown as warranted even when the detection
	// result does not flag the plan as large.
	Force bool

	// Vocabulary matches risk categories in mission text. Pass the
	// detector's vocabulary so mission risk and detection agree; nil
	// selects the built-in one.
	Vocabulary *detect.Vocabulary
}

// Generate partitions steps into missions. The detection result is
// trusted as given; it is not recomputed.
//
// An empty step list is rejected with MISSION-001. Plans with more steps
// than MaxSteps are rejected with PLAN-003, and duplicate or malformed
// step IDs with PLAN-002. Every breakdown returned has passed Validate.
func Generate(planID string, planVersion int, goal string, steps []plan.Step, detection detect.Result, opts Options) (*Breakdown, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, errors.NewPlanInvalidError("plan_id cannot be empty")
	}
	if len(steps) == 0 {
		return nil, errors.NewEmptyPlanError(planID)
	}
	if len(steps) > MaxSteps {
		return nil, errors.NewPlanTooLargeError(len(steps), MaxSteps)
	}
	if err := plan.ValidateSteps(steps); err != nil {
		return nil, err
	}

	id, err := BreakdownID(planID, planVersion, steps)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissionInvariant, "compute breakdown id", err)
	}

	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = detect.DefaultVocabulary()
	}

	warranted := detection.LargePlan || opts.Force
	ranges := Partition(len(steps), MissionCount(len(steps), warranted))

	b := &Breakdown{
		BreakdownID: id,
		PlanID:      planID,
		PlanVersion: planVersion,
		Goal:        goal,
		Missions:    make([]Mission, len(ranges)),
	}

	for i, r := range ranges {
		slice := steps[r.Start:r.End]
		b.Missions[i] = Mission{
			MissionID:     MissionID(id, i),
			Title:         title(i, slice),
			IncludedSteps: stepRefs(slice),
			Dependencies:  []string{},
			Scope: Scope{
				InScope:    inScope(slice),
				OutOfScope: outOfScope(i, ranges, steps),
			},
			Acceptance: acceptance(slice),
			Estimate:   estimate(slice),
			Risk:       assessRisk(slice, detection, vocab),
		}
	}

	linkDependencies(b, ranges, steps)

	if err := Validate(b, steps); err != nil {
		return nil, errors.NewInvariantError(id, err)
	}

	return b, nil
}

// MissionCount returns how many missions n steps are split into. The
// minimum is whatever keeps each mission within MaxStepsPerMission. When a
// breakdown is warranted and there are at least two steps, missions are
// split further toward PreferredStepsPerMission, never below
// MinMissionsWhenWarranted and never above MaxMissions.
func MissionCount(n int, warranted bool) int {
	if n <= 0 {
		return 0
	}

	required := ceilDiv(n, MaxStepsPerMission)
	if !warranted || n < MinMissionsWhenWarranted {
		return required
	}

	target := max(required, ceilDiv(n, PreferredStepsPerMission), MinMissionsWhenWarranted)
	return min(target, MaxMissions)
}

// Range is a half-open interval of step indexes.
type Range struct {
	Start int
	End   int
}

// Len returns the number of steps in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits n steps into k contiguous ranges whose sizes differ by
// at most one; earlier ranges get the extra steps.
func Partition(n, k int) []Range {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}

	base, extra := n/k, n%k
	ranges := make([]Range, k)
	start := 0
	for i := range ranges {
		size := base
		if i < extra {
			size++
		}
		ranges[i] = Range{Start: start, End: start + size}
		start += size
	}
	return ranges
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func title(index int, slice []plan.Step) string {
	first := slice[0]
	subject := firstLine(first.Description)
	if subject == "" {
		subject = first.ID.String()
	}
	return fmt.Sprintf("Mission %d: %s", index+1, truncateRunes(subject, maxTitleLen))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n-3]), unicode.IsSpace) + "..."
}

func stepRefs(slice []plan.Step) []StepRef {
	refs := make([]StepRef, len(slice))
	for i, s := range slice {
		refs[i] = StepRef{
			StepID:      s.ID,
			Description: s.Description,
		}
		if len(s.ExpectedEvidence) > 0 {
			refs[i].ExpectedEvidence = append([]string(nil), s.ExpectedEvidence...)
		}
	}
	return refs
}

func inScope(slice []plan.Step) []string {
	items := make([]string, len(slice))
	for i, s := range slice {
		if d := firstLine(s.Description); d != "" {
			items[i] = fmt.Sprintf("%s: %s", s.ID, d)
		} else {
			items[i] = s.ID.String()
		}
	}
	return items
}

func outOfScope(index int, ranges []Range, steps []plan.Step) []string {
	items := make([]string, 0, len(ranges))
	for j, r := range ranges {
		if j == index {
			continue
		}
		items = append(items, fmt.Sprintf("Mission %d steps: %s", j+1, rangeLabel(r, steps)))
	}
	return append(items, "Changes not required by the steps in scope")
}

func rangeLabel(r Range, steps []plan.Step) string {
	if r.Len() == 1 {
		return steps[r.Start].ID.String()
	}
	return fmt.Sprintf("%s to %s", steps[r.Start].ID, steps[r.End-1].ID)
}

func acceptance(slice []plan.Step) []string {
	var criteria []string
	for _, s := range slice {
		if len(s.ExpectedEvidence) == 0 {
			if d := firstLine(s.Description); d != "" {
				criteria = append(criteria, fmt.Sprintf("%s completed: %s", s.ID, d))
			} else {
				criteria = append(criteria, fmt.Sprintf("%s completed", s.ID))
			}
			continue
		}
		for _, e := range s.ExpectedEvidence {
			criteria = append(criteria, fmt.Sprintf("%s: %s", s.ID, e))
		}
	}
	return append(criteria, "All included steps pass verification before approval")
}

func estimate(slice []plan.Step) Estimate {
	evidence := 0
	for _, s := range slice {
		evidence += len(s.ExpectedEvidence)
	}

	size := domain.SizeForStepCount(len(slice))
	return Estimate{
		Size: size,
		Rationale: fmt.Sprintf("%s with %s to verify; %s covers %s",
			plural(len(slice), "step"), plural(evidence, "evidence item"), size, sizeBand(size)),
	}
}

func sizeBand(s domain.MissionSize) string {
	switch s {
	case domain.SizeSmall:
		return "1-2 steps"
	case domain.SizeMedium:
		return "3-4 steps"
	default:
		return "5-6 steps"
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// assessRisk raises a mission's level when its own text hits risk
// categories, and further when the plan's detection flagged them too.
func assessRisk(slice []plan.Step, detection detect.Result, vocab *detect.Vocabulary) Risk {
	texts := make([]string, len(slice))
	for i, s := range slice {
		texts[i] = s.Text()
	}
	hits := vocab.Risk.Categories(strings.Join(texts, "\n"))

	var flagged, unflagged []string
	for _, c := range hits {
		if detection.HasRisk(c) {
			flagged = append(flagged, c)
		} else {
			unflagged = append(unflagged, c)
		}
	}

	var notes []string
	if len(flagged) > 0 {
		notes = append(notes, "Touches flagged risk areas: "+strings.Join(flagged, ", "))
	}
	if len(unflagged) > 0 {
		notes = append(notes, "Mentions risk areas: "+strings.Join(unflagged, ", "))
	}
	if len(detection.Metrics.AmbiguityFlags) > 0 {
		notes = append(notes, "Plan goal is open-ended: "+strings.Join(detection.Metrics.AmbiguityFlags, ", "))
	}

	level := domain.RiskLow
	switch {
	case len(flagged) >= 2:
		level = domain.RiskHigh
	case len(flagged) == 1, len(unflagged) > 0, len(detection.Metrics.AmbiguityFlags) > 0:
		level = domain.RiskMedium
	}

	return Risk{Level: level, Notes: strings.Join(notes, "; ")}
}

// linkDependencies makes each mission depend on the one before it and on
// any earlier mission whose step IDs its steps mention. Edges only point
// to lower indexes, so the graph is acyclic by construction.
func linkDependencies(b *Breakdown, ranges []Range, steps []plan.Step) {
	for i := 1; i < len(ranges); i++ {
		text := joinText(steps[ranges[i].Start:ranges[i].End])

		deps := []int{i - 1}
		for j := i - 2; j >= 0 && len(deps) < MaxDependencies; j-- {
			if mentionsAny(text, steps[ranges[j].Start:ranges[j].End]) {
				deps = append(deps, j)
			}
		}
		sort.Ints(deps)

		ids := make([]string, len(deps))
		for k, j := range deps {
			ids[k] = b.Missions[j].MissionID
		}
		b.Missions[i].Dependencies = ids
	}
}

func joinText(slice []plan.Step) string {
	texts := make([]string, len(slice))
	for i, s := range slice {
		texts[i] = s.Text()
	}
	return strings.Join(texts, "\n")
}

func mentionsAny(text string, slice []plan.Step) bool {
	for _, s := range slice {
		if containsToken(text, s.ID.String()) {
			return true
		}
	}
	return false
}

// containsToken reports whether tok occurs in text delimited by
// characters that cannot be part of a step ID, so step_1 does not match
// inside step_10.
func containsToken(text, tok string) bool {
	for offset := 0; offset <= len(text)-len(tok); {
		i := strings.Index(text[offset:], tok)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(tok)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isIDRune(before)) && (end == len(text) || !isIDRune(after)) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isIDRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
