// Package conflict detects incompatible label pairs among a classification's
// relevant candidates and resolves the critical ones. Resolution prefers
// proven use over declared dependencies: a label backed by usage or config
// evidence beats one that is merely installed.
package conflict

import (
	"fmt"
	"math"
	"sort"

	"uigen/internal/classifier"
	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

// ScoreEpsilon is the margin under which two scores are considered
// indistinguishable. A critical pair this close, with no trust advantage
// either way, stays unresolved rather than being decided by noise.
const ScoreEpsilon = 0.05

// Status describes how a finding ended.
type Status string

const (
	// StatusResolved means one side of a critical pair won. The loser is
	// demoted out of primary contention but stays a secondary candidate,
	// so its evidence remains visible.
	StatusResolved Status = "resolved"

	// StatusUnresolved means the evidence could not separate a critical
	// pair. The pre-resolution primary stands, and the decision is
	// flagged for manual review.
	StatusUnresolved Status = "unresolved"

	// StatusNoted covers warning and info pairs: recorded, nothing
	// demoted.
	StatusNoted Status = "noted"
)

// Finding records one detected conflict and its outcome.
type Finding struct {
	A        taxonomy.Label    `json:"a"`
	B        taxonomy.Label    `json:"b"`
	Severity taxonomy.Severity `json:"severity"`
	Status   Status            `json:"status"`
	Winner   taxonomy.Label    `json:"winner,omitempty"`
	Basis    string            `json:"basis,omitempty"`
	Note     string            `json:"note,omitempty"`
}

func (f Finding) loser() taxonomy.Label {
	if f.Winner == f.A {
		return f.B
	}
	return f.A
}

// String renders the finding as one human-readable line.
func (f Finding) String() string {
	switch {
	case f.Status == StatusResolved:
		return fmt.Sprintf("RESOLVED: %s chosen over %s: %s", f.Winner, f.loser(), f.Basis)
	case f.Status == StatusUnresolved:
		return fmt.Sprintf("CRITICAL: unresolved conflict between %s and %s, manual review required: %s", f.A, f.B, f.Basis)
	case f.Severity == taxonomy.SeverityWarning:
		return fmt.Sprintf("WARNING: %s and %s overlap; projects rarely intend both", f.A, f.B)
	default:
		return fmt.Sprintf("INFO: %s and %s detected together: %s", f.A, f.B, f.Note)
	}
}

// PairResolver decides one contested critical pair from the two labels'
// aggregated scores and trusted-evidence scores. Implementations pick a
// winner or declare the pair unresolved; they never touch other candidates.
type PairResolver func(f Finding, scoreA, scoreB, trustA, trustB float64) Finding

// ResolveByUsage is the built-in critical-pair resolver. The lone trusted
// side wins outright; when both sides show trusted evidence, the clearly
// stronger one wins; otherwise a clear raw-score margin decides; otherwise
// the pair is unresolved.
func ResolveByUsage(f Finding, scoreA, scoreB, trustA, trustB float64) Finding {
	aTrusted := trustA >= classifier.TrustThreshold
	bTrusted := trustB >= classifier.TrustThreshold

	switch {
	case aTrusted && !bTrusted:
		f.Status, f.Winner = StatusResolved, f.A
		f.Basis = fmt.Sprintf("%s is exercised in code (trust %.2f) while %s is only declared (trust %.2f)",
			f.A, trustA, f.B, trustB)
	case bTrusted && !aTrusted:
		f.Status, f.Winner = StatusResolved, f.B
		f.Basis = fmt.Sprintf("%s is exercised in code (trust %.2f) while %s is only declared (trust %.2f)",
			f.B, trustB, f.A, trustA)
	case aTrusted && bTrusted && math.Abs(trustA-trustB) > ScoreEpsilon:
		winner, loser := f.A, f.B
		wTrust, lTrust := trustA, trustB
		if trustB > trustA {
			winner, loser = f.B, f.A
			wTrust, lTrust = trustB, trustA
		}
		f.Status, f.Winner = StatusResolved, winner
		f.Basis = fmt.Sprintf("both are exercised, but %s shows clearly more use (trust %.2f vs %.2f for %s)",
			winner, wTrust, lTrust, loser)
	case math.Abs(scoreA-scoreB) > ScoreEpsilon:
		winner := f.A
		wScore, lScore := scoreA, scoreB
		if scoreB > scoreA {
			winner = f.B
			wScore, lScore = scoreB, scoreA
		}
		f.Status, f.Winner = StatusResolved, winner
		f.Basis = fmt.Sprintf("score %.2f outweighs %.2f beyond the %.2f margin",
			wScore, lScore, ScoreEpsilon)
	default:
		f.Status = StatusUnresolved
		f.Basis = fmt.Sprintf("scores %.2f and %.2f are within the %.2f margin and neither side shows decisive use",
			scoreA, scoreB, ScoreEpsilon)
	}
	return f
}

// Resolver applies one taxonomy's conflict registry to classification
// outcomes, dispatching contested critical pairs through a per-pair
// resolver table.
type Resolver struct {
	registry  *taxonomy.ConflictRegistry
	resolvers map[string]PairResolver
}

// NewResolver wires every critical pair in the registry to ResolveByUsage.
func NewResolver(registry *taxonomy.ConflictRegistry) *Resolver {
	table := make(map[string]PairResolver)
	for _, rule := range registry.Rules() {
		if rule.Severity == taxonomy.SeverityCritical {
			table[taxonomy.PairKey(rule.A, rule.B)] = ResolveByUsage
		}
	}
	r, err := NewResolverWithTable(registry, table)
	if err != nil {
		panic(err) // unreachable: the table above covers every critical pair
	}
	return r
}

// NewResolverWithTable builds a Resolver over an explicit pair-to-resolver
// table. Every critical pair in the registry must have a resolver; a missing
// or nil entry is a construction error, so a misconfigured table surfaces at
// startup instead of mid-detection.
func NewResolverWithTable(registry *taxonomy.ConflictRegistry, table map[string]PairResolver) (*Resolver, error) {
	for _, rule := range registry.Rules() {
		if rule.Severity != taxonomy.SeverityCritical {
			continue
		}
		if table[taxonomy.PairKey(rule.A, rule.B)] == nil {
			return nil, fmt.Errorf("critical conflict %s/%s has no resolver", rule.A, rule.B)
		}
	}
	return &Resolver{registry: registry, resolvers: table}, nil
}

// Resolve checks the outcome's relevant labels against the registry,
// resolves critical pairs, and returns the adjusted outcome plus every
// finding. The input outcome is not modified.
func (r *Resolver) Resolve(out classifier.Outcome, hints []evidence.Hint) (classifier.Outcome, []Finding) {
	relevant := out.Relevant()
	if len(relevant) < 2 {
		return out, nil
	}

	scores := make(map[taxonomy.Label]float64, len(relevant))
	for _, s := range relevant {
		scores[s.Label] = s.Value
	}

	pairs := r.collectPairs(relevant, scores)
	if len(pairs) == 0 {
		return out, nil
	}

	findings := make([]Finding, 0, len(pairs))
	demoted := make(map[taxonomy.Label]bool)
	wins := make(map[taxonomy.Label]int)
	losses := make(map[taxonomy.Label]int)
	cascade := make(map[int]bool)

	for _, rule := range pairs {
		f := Finding{A: rule.A, B: rule.B, Severity: rule.Severity, Note: rule.Note}
		if rule.Severity != taxonomy.SeverityCritical {
			f.Status = StatusNoted
			findings = append(findings, f)
			continue
		}

		// Pairs whose loser was demoted by an earlier resolution are
		// moot; they resolve by cascade and never demote a new label.
		switch {
		case demoted[rule.A] && demoted[rule.B]:
			continue
		case demoted[rule.A]:
			f.Status, f.Winner = StatusResolved, rule.B
			f.Basis = fmt.Sprintf("%s was already demoted in an earlier conflict", rule.A)
			cascade[len(findings)] = true
		case demoted[rule.B]:
			f.Status, f.Winner = StatusResolved, rule.A
			f.Basis = fmt.Sprintf("%s was already demoted in an earlier conflict", rule.B)
			cascade[len(findings)] = true
		default:
			resolve := r.resolvers[taxonomy.PairKey(rule.A, rule.B)]
			f = resolve(f,
				scores[rule.A], scores[rule.B],
				classifier.Trust(hints, out.Taxonomy, rule.A),
				classifier.Trust(hints, out.Taxonomy, rule.B))
			if f.Status == StatusResolved {
				wins[f.Winner]++
				losses[f.loser()]++
				demoted[f.loser()] = true
			}
		}
		findings = append(findings, f)
	}

	// A label that both won and lost contested resolutions makes the
	// demotion order load-bearing. Back out everything it touched rather
	// than guessing an order-dependent answer.
	for i := range findings {
		f := &findings[i]
		if f.Severity != taxonomy.SeverityCritical || f.Status != StatusResolved || cascade[i] {
			continue
		}
		if (wins[f.Winner] > 0 && losses[f.Winner] > 0) ||
			(wins[f.loser()] > 0 && losses[f.loser()] > 0) {
			f.Status = StatusUnresolved
			f.Winner = ""
			f.Basis = "demotions contradict each other across overlapping conflicts"
		}
	}

	// Rebuild the demotion set from the surviving contested resolutions,
	// then retire any cascade whose premise demotion was backed out.
	demoted = make(map[taxonomy.Label]bool)
	for i, f := range findings {
		if f.Severity == taxonomy.SeverityCritical && f.Status == StatusResolved && !cascade[i] {
			demoted[f.loser()] = true
		}
	}
	for i := range findings {
		f := &findings[i]
		if !cascade[i] || f.Status != StatusResolved {
			continue
		}
		if !demoted[f.loser()] {
			f.Status = StatusUnresolved
			f.Winner = ""
			f.Basis = "the earlier demotion this resolution relied on was itself backed out"
		}
	}

	return rebuild(out, demoted), findings
}

// collectPairs returns the registered rules among the relevant labels,
// criticals first, then by descending combined score, then by pair key.
func (r *Resolver) collectPairs(relevant []classifier.Score, scores map[taxonomy.Label]float64) []taxonomy.ConflictRule {
	var rules []taxonomy.ConflictRule
	for i := 0; i < len(relevant); i++ {
		for j := i + 1; j < len(relevant); j++ {
			if rule, ok := r.registry.Lookup(relevant[i].Label, relevant[j].Label); ok {
				rules = append(rules, rule)
			}
		}
	}
	rank := func(s taxonomy.Severity) int {
		switch s {
		case taxonomy.SeverityCritical:
			return 0
		case taxonomy.SeverityWarning:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rank(rules[i].Severity) != rank(rules[j].Severity) {
			return rank(rules[i].Severity) < rank(rules[j].Severity)
		}
		ci := scores[rules[i].A] + scores[rules[i].B]
		cj := scores[rules[j].A] + scores[rules[j].B]
		if ci != cj {
			return ci > cj
		}
		return taxonomy.PairKey(rules[i].A, rules[i].B) < taxonomy.PairKey(rules[j].A, rules[j].B)
	})
	return rules
}

// rebuild re-picks the primary from the outcome's table after demotions.
// Demoted labels drop out of primary contention but stay in the secondary
// list, so a conflict loser's evidence is never discarded.
func rebuild(out classifier.Outcome, demoted map[taxonomy.Label]bool) classifier.Outcome {
	if len(demoted) == 0 {
		return out
	}
	adjusted := classifier.Outcome{Taxonomy: out.Taxonomy, Table: out.Table}
	for _, s := range out.Table {
		if s.Value < classifier.RelevanceThreshold || demoted[s.Label] {
			continue
		}
		adjusted.Primary = s
		break
	}
	if adjusted.Primary.Label == "" {
		adjusted.Primary = classifier.Score{
			Label: taxonomy.Fallback(out.Taxonomy),
			Value: classifier.FallbackConfidence,
		}
		adjusted.Fallback = true
	}
	for _, s := range out.Table {
		if s.Value < classifier.RelevanceThreshold || s.Label == adjusted.Primary.Label {
			continue
		}
		adjusted.Secondary = append(adjusted.Secondary, s)
	}
	return adjusted
}

// Unresolved reports whether any critical finding stayed unresolved.
func Unresolved(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == taxonomy.SeverityCritical && f.Status == StatusUnresolved {
			return true
		}
	}
	return false
}
