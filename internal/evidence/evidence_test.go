package evidence

import (
	"testing"

	"uigen/internal/taxonomy"
)

func TestWeight_OrdersSourcesByTrust(t *testing.T) {
	order := []SourceKind{
		SourceUsagePattern,
		SourceConfigFile,
		SourceManifest,
		SourceImportPattern,
		SourceFileStructure,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].Weight() <= order[i].Weight() {
			t.Errorf("%s weight %.2f should exceed %s weight %.2f",
				order[i-1], order[i-1].Weight(), order[i], order[i].Weight())
		}
	}
	if SourceKind("bogus").Weight() != 0 {
		t.Error("unknown kind should carry zero weight")
	}
}

func TestPriority_ConfigFileBreaksTiesFirst(t *testing.T) {
	if SourceConfigFile.Priority() <= SourceUsagePattern.Priority() {
		t.Error("config-file should outrank usage-pattern in tie-breaks")
	}
	for _, k := range Kinds() {
		if k.Priority() == 0 {
			t.Errorf("kind %s has no tie-break priority", k)
		}
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSort_Deterministic(t *testing.T) {
	build := func() []Hint {
		return []Hint{
			{Source: SourceManifest, Taxonomy: taxonomy.TaxonomyStyling, Label: taxonomy.Tailwind, Confidence: 0.55},
			{Source: SourceUsagePattern, Taxonomy: taxonomy.TaxonomyFramework, Label: taxonomy.React, Confidence: 0.9},
			{Source: SourceConfigFile, Taxonomy: taxonomy.TaxonomyFramework, Label: taxonomy.React, Confidence: 0.9},
			{Source: SourceFileStructure, Taxonomy: taxonomy.TaxonomyFramework, Label: taxonomy.Next, Confidence: 0.4},
		}
	}

	a := build()
	Sort(a)

	// Reversed input must sort to the same order.
	b := build()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	Sort(b)

	for i := range a {
		if a[i].Source != b[i].Source || a[i].Label != b[i].Label {
			t.Fatalf("sort order depends on input order at index %d: %v vs %v", i, a[i], b[i])
		}
	}

	if a[0].Taxonomy != taxonomy.TaxonomyFramework {
		t.Error("framework hints should sort before styling hints")
	}
	if a[0].Label != taxonomy.Next || a[1].Label != taxonomy.React {
		t.Errorf("labels should sort lexically within a taxonomy, got %s then %s", a[0].Label, a[1].Label)
	}
	if a[1].Source != SourceConfigFile || a[2].Source != SourceUsagePattern {
		t.Errorf("within a label, config-file should lead usage, got %s then %s", a[1].Source, a[2].Source)
	}
}

func TestFilter(t *testing.T) {
	hints := []Hint{
		{Taxonomy: taxonomy.TaxonomyFramework, Label: taxonomy.React},
		{Taxonomy: taxonomy.TaxonomyStyling, Label: taxonomy.Tailwind},
		{Taxonomy: taxonomy.TaxonomyFramework, Label: taxonomy.Next},
	}
	fw := Filter(hints, taxonomy.TaxonomyFramework)
	if len(fw) != 2 {
		t.Fatalf("framework filter kept %d hints, want 2", len(fw))
	}
	if fw[0].Label != taxonomy.React || fw[1].Label != taxonomy.Next {
		t.Error("filter should preserve input order")
	}
}
