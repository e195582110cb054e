package ux

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/health"
	"github.com/ordinex/ordinex/internal/mission"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/store"
	"github.com/ordinex/ordinex/internal/version"
	"github.com/ordinex/ordinex/internal/workspace"
)

// DetectionReport is a detection result plus the optional workspace
// profile it was enriched with
type DetectionReport struct {
	Detection detect.Result      `json:"detection" yaml:"detection"`
	Workspace *workspace.Profile `json:"workspace,omitempty" yaml:"workspace,omitempty"`
}

// HealthReport is the output of `ordinex doctor`
type HealthReport struct {
	Status health.Status             `json:"status" yaml:"status"`
	Checks map[string]*health.Result `json:"checks" yaml:"checks"`
}

// History is one plan's stored breakdowns
type History struct {
	PlanID     string          `json:"planId" yaml:"planId"`
	Breakdowns []store.Summary `json:"breakdowns" yaml:"breakdowns"`
}

// Renderer draws Ordinex results for a terminal
type Renderer struct {
	title  lipgloss.Style
	header lipgloss.Style
	key    lipgloss.Style
	value  lipgloss.Style
	help   lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
}

// NewRenderer creates a renderer whose color profile follows w. noColor
// forces plain output.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if noColor {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		title:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		header: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		key:    lr.NewStyle().Foreground(lipgloss.Color("99")),
		value:  lr.NewStyle().Foreground(lipgloss.Color("252")),
		help:   lr.NewStyle().Foreground(lipgloss.Color("241")),
		ok:     lr.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		warn:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// render returns the text form of data and whether its type is known
func (r *Renderer) render(data any) (string, bool) {
	switch v := data.(type) {
	case detect.Result:
		return r.Detection(v, nil), true
	case *DetectionReport:
		return r.Detection(v.Detection, v.Workspace), true
	case DetectionReport:
		return r.Detection(v.Detection, v.Workspace), true
	case *pipeline.Outcome:
		return r.Outcome(v), true
	case *mission.Breakdown:
		return r.Breakdown(v), true
	case *store.Record:
		return r.Record(v), true
	case History:
		return r.History(v), true
	case *HealthReport:
		return r.Health(v), true
	case version.Info:
		return r.Version(v), true
	case *workspace.Profile:
		return r.Workspace(v), true
	}
	return "", false
}

func (r *Renderer) row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "  %s %s\n", r.key.Render(fmt.Sprintf("%-18s", key+":")), r.value.Render(value))
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// Detection renders a detection result and, when ws is set, the
// workspace it was run against
func (r *Renderer) Detection(res detect.Result, ws *workspace.Profile) string {
	var b strings.Builder

	verdict := r.ok.Render("fits in a single run")
	if res.LargePlan {
		verdict = r.warn.Render("LARGE PLAN, break it into missions")
	}
	fmt.Fprintf(&b, "%s %s\n\n", r.title.Render(fmt.Sprintf("Plan score %d/100", res.Score)), verdict)

	b.WriteString(r.header.Render("Signals") + "\n")
	r.row(&b, "Steps", fmt.Sprint(res.Metrics.StepCount))
	r.row(&b, "Est. files", fmt.Sprint(res.Metrics.EstimatedFileTouch))
	r.row(&b, "Risk flags", list(res.Metrics.RiskFlags))
	r.row(&b, "Domains", list(res.Metrics.Domains))
	r.row(&b, "Ambiguity", list(res.Metrics.AmbiguityFlags))
	r.row(&b, "Keywords", list(res.Metrics.KeywordHits))

	if len(res.Reasons) > 0 {
		b.WriteString("\n" + r.header.Render("Reasons") + "\n")
		for _, reason := range res.Reasons {
			fmt.Fprintf(&b, "  • %s\n", r.value.Render(reason))
		}
	}

	if ws != nil {
		b.WriteString("\n" + r.Workspace(ws))
	}

	return b.String()
}

// Workspace renders a workspace profile
func (r *Renderer) Workspace(p *workspace.Profile) string {
	var b strings.Builder
	b.WriteString(r.header.Render("Workspace") + "\n")
	r.row(&b, "Root", p.Root)
	r.row(&b, "Languages", list(p.Languages))
	r.row(&b, "Frameworks", list(p.Frameworks))
	r.row(&b, "Domains", list(p.Domains))
	if p.Monorepo {
		r.row(&b, "Monorepo", fmt.Sprintf("yes (%d packages)", len(p.Packages)))
	}
	return b.String()
}

// Outcome renders a breakdown run, including the detection behind it
func (r *Renderer) Outcome(out *pipeline.Outcome) string {
	var b strings.Builder
	b.WriteString(r.Breakdown(out.Breakdown))

	var notes []string
	if out.Forced {
		notes = append(notes, "forced")
	}
	if out.Persisted {
		notes = append(notes, "saved to history")
	}
	fmt.Fprintf(&b, "\n%s\n", r.help.Render(fmt.Sprintf("score %d/100 · %s", out.Detection.Score, list(notes))))
	return b.String()
}

// Record renders a stored breakdown
func (r *Renderer) Record(rec *store.Record) string {
	var b strings.Builder
	b.WriteString(r.Breakdown(rec.Breakdown))
	fmt.Fprintf(&b, "\n%s\n", r.help.Render(fmt.Sprintf("score %d/100 · updated %s",
		rec.Detection.Score, rec.UpdatedAt.Local().Format(time.RFC3339))))
	return b.String()
}

// Breakdown renders every mission in execution order
func (r *Renderer) Breakdown(bd *mission.Breakdown) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.title.Render(fmt.Sprintf("Breakdown %s", bd.BreakdownID)))
	r.row(&b, "Plan", fmt.Sprintf("%s v%d", bd.PlanID, bd.PlanVersion))
	if bd.Goal != "" {
		r.row(&b, "Goal", bd.Goal)
	}
	r.row(&b, "Missions", fmt.Sprintf("%d (%d steps)", len(bd.Missions), bd.StepCount()))

	if waves, err := mission.Waves(bd); err == nil {
		parts := make([]string, len(waves))
		for i, w := range waves {
			parts[i] = strings.Join(w, " + ")
		}
		r.row(&b, "Order", strings.Join(parts, " → "))
	}

	for i := range bd.Missions {
		b.WriteString("\n")
		r.mission(&b, i+1, &bd.Missions[i])
	}
	return b.String()
}

func (r *Renderer) mission(b *strings.Builder, n int, m *mission.Mission) {
	risk := r.ok
	if m.Risk.Level == domain.RiskHigh {
		risk = r.warn
	}
	fmt.Fprintf(b, "%s %s  %s %s\n",
		r.header.Render(fmt.Sprintf("%d. %s", n, m.Title)),
		r.help.Render("("+m.MissionID+")"),
		r.value.Render("size "+string(m.Estimate.Size)),
		risk.Render("risk "+string(m.Risk.Level)))

	ids := make([]string, len(m.IncludedSteps))
	for i, s := range m.IncludedSteps {
		ids[i] = string(s.StepID)
	}
	r.row(b, "Steps", strings.Join(ids, ", "))
	r.row(b, "Depends on", list(m.Dependencies))
	r.row(b, "Out of scope", list(m.Scope.OutOfScope))
	if m.Risk.Notes != "" {
		r.row(b, "Risk notes", m.Risk.Notes)
	}
	for _, a := range m.Acceptance {
		fmt.Fprintf(b, "    ✓ %s\n", r.value.Render(a))
	}
}

// History renders a plan's breakdown history, newest first
func (r *Renderer) History(h History) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.title.Render("History for "+h.PlanID))
	if len(h.Breakdowns) == 0 {
		b.WriteString(r.help.Render("  no breakdowns stored") + "\n")
		return b.String()
	}

	for _, s := range h.Breakdowns {
		flag := ""
		if s.Forced {
			flag = " forced"
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			r.key.Render(fmt.Sprintf("v%-3d", s.PlanVersion)),
			r.value.Render(fmt.Sprintf("%s  %d missions, %d steps, score %d%s", s.BreakdownID, s.MissionCount, s.StepCount, s.Score, flag)),
			r.help.Render(s.UpdatedAt.Local().Format(time.RFC3339)))
	}
	return b.String()
}

// Health renders doctor results sorted by check name
func (r *Renderer) Health(h *HealthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", r.title.Render("Ordinex doctor"), r.status(h.Status))

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := h.Checks[name]
		fmt.Fprintf(&b, "  %s %s %s\n", r.key.Render(fmt.Sprintf("%-18s", name)), r.status(res.Status), r.value.Render(res.Message))
	}
	return b.String()
}

func (r *Renderer) status(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return r.ok.Render(string(s))
	case health.StatusDegraded:
		return r.help.Render(string(s))
	default:
		return r.warn.Render(string(s))
	}
}

// Version renders build metadata
func (r *Renderer) Version(info version.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.title.Render("Ordinex "+info.Version))
	r.row(&b, "Commit", info.Commit)
	r.row(&b, "Built", info.Date)
	r.row(&b, "Go", info.GoVersion)
	r.row(&b, "Platform", info.Platform)
	return b.String()
}
