// Package classifier folds scanner hints into a ranked score table per
// taxonomy and picks a primary label. The fold is pure arithmetic over a
// canonically sorted hint list, so identical hints always produce an
// identical table.
package classifier

import (
	"sort"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

const (
	// RelevanceThreshold separates detected candidates from noise. Labels
	// scoring below it never enter conflict checks.
	RelevanceThreshold = 0.2

	// FallbackConfidence is the score assigned to a taxonomy's fallback
	// label when nothing clears the relevance threshold.
	FallbackConfidence = 0.1

	// TrustThreshold is the minimum trusted-evidence score a label needs
	// before conflict resolution will side with it.
	TrustThreshold = 0.3

	// maxEvidencePerLabel caps how many evidence strings a score keeps.
	maxEvidencePerLabel = 12
)

// Score is one label's aggregated standing: the capped weighted sum of its
// hints, the source kinds that contributed, and the evidence behind them.
type Score struct {
	Label    taxonomy.Label        `json:"label"`
	Value    float64               `json:"value"`
	Sources  []evidence.SourceKind `json:"sources,omitempty"`
	Evidence []string              `json:"evidence,omitempty"`
}

// Outcome is the classification result for one taxonomy.
type Outcome struct {
	Taxonomy taxonomy.Taxonomy `json:"taxonomy"`

	// Primary is the winning label. When Fallback is true no candidate
	// cleared the relevance threshold and Primary holds the taxonomy
	// fallback at FallbackConfidence.
	Primary  Score `json:"primary"`
	Fallback bool  `json:"fallback,omitempty"`

	// Secondary lists the other labels above the relevance threshold, in
	// rank order.
	Secondary []Score `json:"secondary,omitempty"`

	// Table is the full ranked table, relevant or not.
	Table []Score `json:"table,omitempty"`
}

type accum struct {
	value    float64
	priority int
	kinds    map[evidence.SourceKind]bool
	evidence []string
}

// Classify folds one taxonomy's hints into a ranked outcome. Hints for
// other taxonomies or unknown labels are ignored.
func Classify(t taxonomy.Taxonomy, hints []evidence.Hint) Outcome {
	filtered := evidence.Filter(hints, t)
	evidence.Sort(filtered)

	acc := make(map[taxonomy.Label]*accum)
	for _, h := range filtered {
		if h.Confidence <= 0 || !taxonomy.Known(t, h.Label) {
			continue
		}
		a := acc[h.Label]
		if a == nil {
			a = &accum{kinds: make(map[evidence.SourceKind]bool)}
			acc[h.Label] = a
		}
		a.value += evidence.Clamp01(h.Confidence) * h.Source.Weight()
		if p := h.Source.Priority(); p > a.priority {
			a.priority = p
		}
		a.kinds[h.Source] = true
		a.evidence = append(a.evidence, h.Evidence...)
	}

	labels := make([]taxonomy.Label, 0, len(acc))
	for l := range acc {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	table := make([]Score, 0, len(labels))
	for _, l := range labels {
		a := acc[l]
		table = append(table, Score{
			Label:    l,
			Value:    evidence.Clamp01(a.value),
			Sources:  presentKinds(a.kinds),
			Evidence: dedupe(a.evidence, maxEvidencePerLabel),
		})
	}
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Value != table[j].Value {
			return table[i].Value > table[j].Value
		}
		pi, pj := acc[table[i].Label].priority, acc[table[j].Label].priority
		if pi != pj {
			return pi > pj
		}
		return table[i].Label < table[j].Label
	})

	out := Outcome{Taxonomy: t, Table: table}
	if len(table) == 0 || table[0].Value < RelevanceThreshold {
		out.Primary = Score{Label: taxonomy.Fallback(t), Value: FallbackConfidence}
		out.Fallback = true
		return out
	}
	out.Primary = table[0]
	for _, s := range table[1:] {
		if s.Value >= RelevanceThreshold {
			out.Secondary = append(out.Secondary, s)
		}
	}
	return out
}

// Relevant returns the labels at or above the relevance threshold, in rank
// order. Empty for fallback outcomes.
func (o Outcome) Relevant() []Score {
	if o.Fallback {
		return nil
	}
	out := make([]Score, 0, 1+len(o.Secondary))
	out = append(out, o.Primary)
	out = append(out, o.Secondary...)
	return out
}

// Trust scores a label counting only the sources that prove a library is
// exercised: usage patterns and dedicated config files. Conflict resolution
// uses it to separate installed-and-used from merely installed.
func Trust(hints []evidence.Hint, t taxonomy.Taxonomy, label taxonomy.Label) float64 {
	var sum float64
	for _, h := range hints {
		if h.Taxonomy != t || h.Label != label {
			continue
		}
		if h.Source != evidence.SourceUsagePattern && h.Source != evidence.SourceConfigFile {
			continue
		}
		sum += evidence.Clamp01(h.Confidence) * h.Source.Weight()
	}
	return evidence.Clamp01(sum)
}

func presentKinds(set map[evidence.SourceKind]bool) []evidence.SourceKind {
	var out []evidence.SourceKind
	for _, k := range evidence.Kinds() {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}

func dedupe(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}
