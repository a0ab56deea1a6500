package taxonomy

import "testing"

func TestKnown_CoversAllMembers(t *testing.T) {
	for _, l := range Frameworks() {
		if !Known(TaxonomyFramework, l) {
			t.Errorf("framework %q not recognized by Known", l)
		}
	}
	for _, l := range StylingSystems() {
		if !Known(TaxonomyStyling, l) {
			t.Errorf("styling %q not recognized by Known", l)
		}
	}
	if Known(TaxonomyFramework, Tailwind) {
		t.Error("styling label should not be a known framework")
	}
	if Known(TaxonomyStyling, Label("jquery")) {
		t.Error("unregistered label should not be known")
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback(TaxonomyFramework); got != Vanilla {
		t.Errorf("framework fallback = %q, want %q", got, Vanilla)
	}
	if got := Fallback(TaxonomyStyling); got != PlainCSS {
		t.Errorf("styling fallback = %q, want %q", got, PlainCSS)
	}
}

func TestDisplay(t *testing.T) {
	cases := map[Label]string{
		React:            "React",
		Next:             "Next.js",
		MUI:              "Material UI",
		StyledComponents: "styled-components",
		PlainCSS:         "Plain CSS",
	}
	for label, want := range cases {
		if got := label.Display(); got != want {
			t.Errorf("Display(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestCatalogs_EveryLabelHasASet(t *testing.T) {
	fw := DefaultFrameworkCatalog()
	for _, l := range Frameworks() {
		if l == Vanilla {
			continue // fallback label detects by absence, not patterns
		}
		if _, ok := fw.Set(l); !ok {
			t.Errorf("framework catalog missing pattern set for %q", l)
		}
	}
	st := DefaultStylingCatalog()
	for _, l := range StylingSystems() {
		if l == PlainCSS {
			continue
		}
		if _, ok := st.Set(l); !ok {
			t.Errorf("styling catalog missing pattern set for %q", l)
		}
	}
}

func TestCatalog_ExclusiveKits(t *testing.T) {
	st := DefaultStylingCatalog()
	want := map[Label]bool{MUI: true, Chakra: true, AntDesign: true}
	if len(st.ExclusiveKits) != len(want) {
		t.Fatalf("exclusive kits = %v, want the three full UI kits", st.ExclusiveKits)
	}
	for _, l := range st.ExclusiveKits {
		if !want[l] {
			t.Errorf("unexpected exclusive kit %q", l)
		}
	}
}

func TestPairKey_OrientationIndependent(t *testing.T) {
	if PairKey(React, Vue) != PairKey(Vue, React) {
		t.Error("pair key should not depend on argument order")
	}
	if PairKey(React, Vue) == PairKey(React, Angular) {
		t.Error("distinct pairs should have distinct keys")
	}
}

func TestConflictRegistry_LookupSymmetric(t *testing.T) {
	r := DefaultStylingConflicts()
	a, okA := r.Lookup(MUI, Chakra)
	b, okB := r.Lookup(Chakra, MUI)
	if !okA || !okB {
		t.Fatal("mui/chakra conflict should resolve in both orientations")
	}
	if a.Severity != SeverityCritical || b.Severity != SeverityCritical {
		t.Errorf("mui/chakra severity = %s/%s, want critical", a.Severity, b.Severity)
	}
	if _, ok := r.Lookup(Tailwind, Emotion); ok {
		t.Error("tailwind/emotion has no declared conflict")
	}
}

func TestConflictRegistry_InfoPairsCarryNotes(t *testing.T) {
	r := DefaultStylingConflicts()
	for _, rule := range r.Rules() {
		if rule.Severity == SeverityInfo && rule.Note == "" {
			t.Errorf("info rule %s/%s missing note", rule.A, rule.B)
		}
	}
}

func TestNewConflictRegistry_RejectsMalformedRules(t *testing.T) {
	cases := []struct {
		name  string
		rules []ConflictRule
	}{
		{"unknown label", []ConflictRule{{A: React, B: Label("jquery"), Severity: SeverityCritical}}},
		{"self pair", []ConflictRule{{A: React, B: React, Severity: SeverityCritical}}},
		{"duplicate pair", []ConflictRule{
			{A: React, B: Vue, Severity: SeverityCritical},
			{A: Vue, B: React, Severity: SeverityWarning},
		}},
		{"info without note", []ConflictRule{{A: React, B: Vue, Severity: SeverityInfo}}},
	}
	for _, tc := range cases {
		if _, err := NewConflictRegistry(TaxonomyFramework, tc.rules); err == nil {
			t.Errorf("%s: expected construction error", tc.name)
		}
	}
}

func TestGuidance_NeverEmpty(t *testing.T) {
	for _, l := range StylingSystems() {
		if len(Guidance(l)) == 0 {
			t.Errorf("no guidance for styling label %q", l)
		}
	}
	if len(Guidance(Label("unknown"))) == 0 {
		t.Error("unknown label should fall back to plain-css guidance")
	}
}
