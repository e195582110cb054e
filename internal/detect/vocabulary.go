package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Category is one row of a keyword table: a tag plus the patterns that
// select it. Patterns are lowercase words or phrases.
type Category struct {
	Name     string
	Patterns []string
}

// RiskCategories are the sensitive-operation tags reported as riskFlags.
var RiskCategories = []Category{
	{Name: "security", Patterns: []string{
		"security", "auth", "authentication", "authorization", "oauth", "sso",
		"password", "encryption", "credentials", "secrets", "permissions", "rbac",
	}},
	{Name: "payments", Patterns: []string{
		"payment", "payments", "billing", "stripe", "checkout", "invoice",
		"invoices", "subscription", "subscriptions", "refund", "refunds",
	}},
	{Name: "migration", Patterns: []string{
		"migration", "migrations", "migrate", "schema change", "upgrade",
		"backfill",
	}},
	{Name: "refactor", Patterns: []string{
		"refactor", "refactoring", "rewrite", "restructure", "re-architect",
		"rearchitect", "overhaul",
	}},
	{Name: "data", Patterns: []string{
		"database", "pii", "gdpr", "backup", "backups", "data loss",
		"user data", "delete data",
	}},
	{Name: "infrastructure", Patterns: []string{
		"infrastructure", "deploy", "deployment", "kubernetes", "terraform",
		"ci/cd", "dns", "load balancer",
	}},
}

// Domains are the technology areas a goal may span.
var Domains = []Category{
	{Name: "mobile", Patterns: []string{
		"mobile", "ios", "android", "react native", "flutter", "swiftui",
	}},
	{Name: "web", Patterns: []string{
		"web", "website", "web app", "frontend", "front-end", "browser",
		"react", "vue", "angular", "css",
	}},
	{Name: "backend", Patterns: []string{
		"backend", "back-end", "api", "server", "endpoint", "endpoints",
		"microservice", "microservices", "graphql", "rest api",
	}},
	{Name: "desktop", Patterns: []string{
		"desktop", "electron", "tauri", "native app",
	}},
	{Name: "data", Patterns: []string{
		"data pipeline", "etl", "analytics", "data warehouse",
		"machine learning", "dashboard",
	}},
	{Name: "devops", Patterns: []string{
		"devops", "docker", "helm", "github actions", "monitoring",
		"observability",
	}},
}

// AmbiguityPhrases are open-ended scope phrases. The category name is the
// phrase reported in ambiguityFlags; patterns cover its spellings.
var AmbiguityPhrases = []Category{
	{Name: "complete app", Patterns: []string{"complete app", "complete application"}},
	{Name: "entire system", Patterns: []string{"entire system"}},
	{Name: "production ready", Patterns: []string{"production ready", "production-ready"}},
	{Name: "full stack", Patterns: []string{"full stack", "full-stack"}},
	{Name: "end to end", Patterns: []string{"end to end", "end-to-end"}},
	{Name: "from scratch", Patterns: []string{"from scratch"}},
	{Name: "whole application", Patterns: []string{"whole application", "whole app"}},
	{Name: "fully featured", Patterns: []string{"fully featured", "fully-featured", "feature complete"}},
	{Name: "everything", Patterns: []string{"everything"}},
	{Name: "all features", Patterns: []string{"all features", "all the features"}},
}

type compiledPattern struct {
	text string
	re   *regexp.Regexp
}

type compiledCategory struct {
	name     string
	patterns []compiledPattern
}

// Table is a validated, compiled keyword table. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	categories []compiledCategory
}

// Match is a category that fired together with the patterns that hit.
type Match struct {
	Category string
	Patterns []string
}

// NewTable validates categories and compiles their patterns into
// case-insensitive whole-word matchers.
func NewTable(categories []Category) (*Table, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("keyword table is empty")
	}

	t := &Table{categories: make([]compiledCategory, 0, len(categories))}
	names := make(map[string]bool, len(categories))

	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category at index %d has no name", i)
		}
		if names[c.Name] {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		names[c.Name] = true

		if len(c.Patterns) == 0 {
			return nil, fmt.Errorf("category %q has no patterns", c.Name)
		}

		cc := compiledCategory{name: c.Name, patterns: make([]compiledPattern, 0, len(c.Patterns))}
		seen := make(map[string]bool, len(c.Patterns))
		for _, p := range c.Patterns {
			if err := validatePattern(p); err != nil {
				return nil, fmt.Errorf("category %q: %w", c.Name, err)
			}
			if seen[p] {
				return nil, fmt.Errorf("category %q: duplicate pattern %q", c.Name, p)
			}
			seen[p] = true

			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("category %q: compile %q: %w", c.Name, p, err)
			}
			cc.patterns = append(cc.patterns, compiledPattern{text: p, re: re})
		}
		t.categories = append(t.categories, cc)
	}

	return t, nil
}

// MustNewTable is NewTable for package-level tables; it panics on an
// invalid table so a bad vocabulary fails at startup.
func MustNewTable(categories []Category) *Table {
	t, err := NewTable(categories)
	if err != nil {
		panic(fmt.Sprintf("detect: invalid keyword table: %v", err))
	}
	return t
}

func validatePattern(p string) error {
	if p == "" {
		return fmt.Errorf("empty pattern")
	}
	if p != strings.ToLower(p) {
		return fmt.Errorf("pattern %q must be lowercase", p)
	}
	if p != strings.TrimSpace(p) {
		return fmt.Errorf("pattern %q has surrounding whitespace", p)
	}

	first, last := rune(p[0]), rune(p[len(p)-1])
	if !isWordRune(first) || !isWordRune(last) {
		return fmt.Errorf("pattern %q must start and end with a letter or digit", p)
	}
	return nil
}

func isWordRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// Match returns every category with at least one pattern in text, in
// table order. Each category appears once.
func (t *Table) Match(text string) []Match {
	var matches []Match
	for _, c := range t.categories {
		var hits []string
		for _, p := range c.patterns {
			if p.re.MatchString(text) {
				hits = append(hits, p.text)
			}
		}
		if len(hits) > 0 {
			matches = append(matches, Match{Category: c.name, Patterns: hits})
		}
	}
	return matches
}

// Categories returns the names of the categories that match text, in table order.
func (t *Table) Categories(text string) []string {
	matches := t.Match(text)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Category)
	}
	return names
}

// Vocabulary bundles the three tables the detector scans with.
type Vocabulary struct {
	Risk      *Table
	Domains   *Table
	Ambiguity *Table
}

// NewVocabulary compiles and validates all three tables.
func NewVocabulary(risk, domains, ambiguity []Category) (*Vocabulary, error) {
	r, err := NewTable(risk)
	if err != nil {
		return nil, fmt.Errorf("risk table: %w", err)
	}
	d, err := NewTable(domains)
	if err != nil {
		return nil, fmt.Errorf("domain table: %w", err)
	}
	a, err := NewTable(ambiguity)
	if err != nil {
		return nil, fmt.Errorf("ambiguity table: %w", err)
	}
	return &Vocabulary{Risk: r, Domains: d, Ambiguity: a}, nil
}

var defaultVocabulary = mustDefaultVocabulary()

func mustDefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(RiskCategories, Domains, AmbiguityPhrases)
	if err != nil {
		panic(fmt.Sprintf("detect: invalid built-in vocabulary: %v", err))
	}
	return v
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}
