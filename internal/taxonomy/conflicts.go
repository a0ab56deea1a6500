package taxonomy

import (
	"fmt"
	"sort"
)

// Severity grades how seriously an incompatible label pair undermines a
// detection outcome.
type Severity string

const (
	// SeverityCritical pairs cannot both be true: the detector must pick
	// one or declare the outcome unresolved.
	SeverityCritical Severity = "critical"

	// SeverityWarning pairs are unusual together but workable; the
	// decision carries an advisory note.
	SeverityWarning Severity = "warning"

	// SeverityInfo pairs commonly coexist for a known reason; noted only.
	SeverityInfo Severity = "info"
)

// ConflictRule declares that two labels of the same taxonomy are in tension.
// Pairs are unordered: (a, b) and (b, a) are the same rule.
type ConflictRule struct {
	A        Label
	B        Label
	Severity Severity

	// Note explains the tension to the user, e.g. why an info-level pair
	// is expected. Required for info rules.
	Note string
}

// PairKey returns the canonical lookup key for a label pair, with the two
// labels in lexical order so orientation never matters.
func PairKey(a, b Label) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

// ConflictRegistry answers "are these two labels in tension, and how badly"
// for a single taxonomy. Immutable after construction.
type ConflictRegistry struct {
	taxonomy Taxonomy
	rules    map[string]ConflictRule
}

// NewConflictRegistry builds a registry from a rule list. It fails when a
// rule references an unknown label or the same pair is declared twice, so a
// malformed table surfaces at startup rather than mid-detection.
func NewConflictRegistry(t Taxonomy, rules []ConflictRule) (*ConflictRegistry, error) {
	r := &ConflictRegistry{taxonomy: t, rules: make(map[string]ConflictRule, len(rules))}
	for _, rule := range rules {
		if !Known(t, rule.A) {
			return nil, fmt.Errorf("conflict rule references unknown %s label %q", t, rule.A)
		}
		if !Known(t, rule.B) {
			return nil, fmt.Errorf("conflict rule references unknown %s label %q", t, rule.B)
		}
		if rule.A == rule.B {
			return nil, fmt.Errorf("conflict rule pairs %q with itself", rule.A)
		}
		if rule.Severity == SeverityInfo && rule.Note == "" {
			return nil, fmt.Errorf("info conflict %s/%s needs a note", rule.A, rule.B)
		}
		key := PairKey(rule.A, rule.B)
		if _, dup := r.rules[key]; dup {
			return nil, fmt.Errorf("duplicate conflict rule for %s/%s", rule.A, rule.B)
		}
		r.rules[key] = rule
	}
	return r, nil
}

// Lookup reports the rule covering a pair, if any. Orientation-independent.
func (r *ConflictRegistry) Lookup(a, b Label) (ConflictRule, bool) {
	rule, ok := r.rules[PairKey(a, b)]
	return rule, ok
}

// Rules returns all rules sorted by pair key, for deterministic iteration.
func (r *ConflictRegistry) Rules() []ConflictRule {
	keys := make([]string, 0, len(r.rules))
	for k := range r.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ConflictRule, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.rules[k])
	}
	return out
}

// Taxonomy reports which label set this registry covers.
func (r *ConflictRegistry) Taxonomy() Taxonomy { return r.taxonomy }

// DefaultFrameworkConflicts returns the built-in framework conflict table.
// Meta-frameworks and their base frameworks (next+react, nuxt+vue) are
// deliberately absent: they coexist by construction.
func DefaultFrameworkConflicts() *ConflictRegistry {
	r, err := NewConflictRegistry(TaxonomyFramework, []ConflictRule{
		{A: React, B: Vue, Severity: SeverityCritical},
		{A: React, B: Angular, Severity: SeverityCritical},
		{A: Vue, B: Angular, Severity: SeverityCritical},
		{A: Next, B: Nuxt, Severity: SeverityCritical},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultStylingConflicts returns the built-in styling conflict table.
func DefaultStylingConflicts() *ConflictRegistry {
	r, err := NewConflictRegistry(TaxonomyStyling, []ConflictRule{
		{A: MUI, B: Chakra, Severity: SeverityCritical},
		{A: MUI, B: AntDesign, Severity: SeverityCritical},
		{A: Chakra, B: AntDesign, Severity: SeverityCritical},
		{A: Tailwind, B: Bootstrap, Severity: SeverityWarning},
		{A: StyledComponents, B: Emotion, Severity: SeverityWarning},
		{A: MUI, B: Emotion, Severity: SeverityInfo,
			Note: "MUI v5 uses Emotion as its styling engine, so Emotion packages appear transitively"},
		{A: Tailwind, B: CSSModules, Severity: SeverityInfo,
			Note: "utility classes and scoped module styles are commonly mixed"},
	})
	if err != nil {
		panic(err)
	}
	return r
}
