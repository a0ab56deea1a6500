// Package evidence defines the hint vocabulary shared by every scanner and
// the aggregation stages downstream of them. A Hint is one observation tying
// a label to a confidence; it carries enough provenance to explain the final
// decision back to the user.
package evidence

import (
	"sort"

	"uigen/internal/taxonomy"
)

// SourceKind identifies which scanner produced a hint. The kind determines
// both the aggregation weight and the tie-break priority of the evidence.
type SourceKind string

const (
	SourceManifest      SourceKind = "manifest"
	SourceConfigFile    SourceKind = "config-file"
	SourceFileStructure SourceKind = "file-structure"
	SourceImportPattern SourceKind = "import-pattern"
	SourceUsagePattern  SourceKind = "usage-pattern"
)

// Kinds returns every source kind in canonical order.
func Kinds() []SourceKind {
	return []SourceKind{
		SourceManifest,
		SourceConfigFile,
		SourceFileStructure,
		SourceImportPattern,
		SourceUsagePattern,
	}
}

// Weight returns the aggregation multiplier for hints of this kind. Usage
// evidence weighs most: code actually exercising a library outranks a
// dependency that is merely declared. Structure weighs least because
// directory conventions are often coincidental.
func (k SourceKind) Weight() float64 {
	switch k {
	case SourceUsagePattern:
		return 1.00
	case SourceConfigFile:
		return 0.95
	case SourceManifest:
		return 0.80
	case SourceImportPattern:
		return 0.70
	case SourceFileStructure:
		return 0.40
	default:
		return 0
	}
}

// Priority orders source kinds for deterministic tie-breaking when two
// labels reach identical scores. Dedicated config files are the strongest
// single signal of intent, so they break ties first.
func (k SourceKind) Priority() int {
	switch k {
	case SourceConfigFile:
		return 5
	case SourceUsagePattern:
		return 4
	case SourceManifest:
		return 3
	case SourceImportPattern:
		return 2
	case SourceFileStructure:
		return 1
	default:
		return 0
	}
}

// Hint is a single scanner observation: this source saw this label with this
// confidence, backed by these evidence strings (file paths, matched
// dependency names, pattern excerpts).
type Hint struct {
	Source     SourceKind        `json:"source"`
	Taxonomy   taxonomy.Taxonomy `json:"taxonomy"`
	Label      taxonomy.Label    `json:"label"`
	Confidence float64           `json:"confidence"`
	Evidence   []string          `json:"evidence,omitempty"`
}

// Clamp01 bounds a confidence to the [0, 1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Sort orders hints canonically: taxonomy, then label, then descending
// source priority, then descending confidence, then first evidence string.
// Scanners may finish in any order; sorting before aggregation makes the
// fold independent of scheduling.
func Sort(hints []Hint) {
	sort.SliceStable(hints, func(i, j int) bool {
		a, b := hints[i], hints[j]
		if a.Taxonomy != b.Taxonomy {
			return a.Taxonomy < b.Taxonomy
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Source.Priority() != b.Source.Priority() {
			return a.Source.Priority() > b.Source.Priority()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return firstEvidence(a) < firstEvidence(b)
	})
}

func firstEvidence(h Hint) string {
	if len(h.Evidence) == 0 {
		return ""
	}
	return h.Evidence[0]
}

// Filter returns the hints belonging to one taxonomy, preserving order.
func Filter(hints []Hint, t taxonomy.Taxonomy) []Hint {
	out := make([]Hint, 0, len(hints))
	for _, h := range hints {
		if h.Taxonomy == t {
			out = append(out, h)
		}
	}
	return out
}
