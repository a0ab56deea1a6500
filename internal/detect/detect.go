// Package detect runs the full detection pipeline: walk the project once,
// fan the scanners out, fold their hints into per-taxonomy classifications,
// settle conflicts, and assemble a single immutable decision.
//
// Scanners run concurrently purely as an optimization; every aggregation
// step operates on canonically ordered data, so the same tree always yields
// the same decision.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"golang.org/x/sync/errgroup"

	"uigen/internal/classifier"
	"uigen/internal/conflict"
	"uigen/internal/evidence"
	"uigen/internal/logging"
	"uigen/internal/scanner"
	"uigen/internal/taxonomy"
)

// ErrRootAccess marks the only fatal detection failure: the project root
// cannot be read at all. Everything below it degrades per scanner.
var ErrRootAccess = errors.New("project root not accessible")

// DecisionSchemaVersion is bumped when the decision layout changes shape.
const DecisionSchemaVersion = 1

// Pick is the chosen label for one taxonomy, with its audit trail.
type Pick struct {
	Label      taxonomy.Label     `json:"label"`
	Confidence float64            `json:"confidence"`
	Fallback   bool               `json:"fallback,omitempty"`
	Evidence   []string           `json:"evidence,omitempty"`
	Secondary  []classifier.Score `json:"secondary,omitempty"`
	Table      []classifier.Score `json:"table,omitempty"`
}

// Decision is the pipeline's single output. It is built once and never
// mutated; downstream stages read it and the store persists it verbatim.
type Decision struct {
	SchemaVersion   int                `json:"schema_version"`
	Root            string             `json:"root"`
	Framework       Pick               `json:"framework"`
	Styling         Pick               `json:"styling"`
	Conflicts       []conflict.Finding `json:"conflicts,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Confidence      float64            `json:"confidence"`
	Unresolved      bool               `json:"unresolved,omitempty"`
}

// Detector owns the catalogs, registries, and scanner set for one pipeline
// configuration.
type Detector struct {
	fwCatalog   *taxonomy.Catalog
	stCatalog   *taxonomy.Catalog
	fwConflicts *conflict.Resolver
	stConflicts *conflict.Resolver
	scanners    []scanner.Scanner
	log         *slog.Logger
}

// Option adjusts a Detector at construction.
type Option func(*Detector)

// WithLogger replaces the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// WithCatalogs swaps in custom pattern catalogs. The scanner set is rebuilt
// over them unless WithScanners overrides it too.
func WithCatalogs(fw, st *taxonomy.Catalog) Option {
	return func(d *Detector) {
		d.fwCatalog, d.stCatalog = fw, st
		d.scanners = scanner.All(fw, st)
	}
}

// WithConflictRegistries swaps in custom conflict tables.
func WithConflictRegistries(fw, st *taxonomy.ConflictRegistry) Option {
	return func(d *Detector) {
		d.fwConflicts = conflict.NewResolver(fw)
		d.stConflicts = conflict.NewResolver(st)
	}
}

// WithScanners replaces the scanner set entirely.
func WithScanners(s ...scanner.Scanner) Option {
	return func(d *Detector) { d.scanners = s }
}

// New builds a Detector over the default catalogs and conflict tables.
func New(opts ...Option) *Detector {
	fw := taxonomy.DefaultFrameworkCatalog()
	st := taxonomy.DefaultStylingCatalog()
	d := &Detector{
		fwCatalog:   fw,
		stCatalog:   st,
		fwConflicts: conflict.NewResolver(taxonomy.DefaultFrameworkConflicts()),
		stConflicts: conflict.NewResolver(taxonomy.DefaultStylingConflicts()),
		scanners:    scanner.All(fw, st),
		log:         logging.New("detect"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies the project at root and returns its decision. The only
// error cases are an unreadable root and context cancellation; individual
// scanner failures just mute their source.
func (d *Detector) Detect(ctx context.Context, root string) (*Decision, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootAccess, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootAccess, root)
	}

	tree, err := scanner.BuildTree(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootAccess, err)
	}
	d.log.Debug("tree built", "root", root, "files", len(tree.Files))

	hints, err := d.gather(ctx, tree)
	if err != nil {
		return nil, err
	}
	d.log.Debug("evidence gathered", "hints", len(hints))

	fwOut := classifier.Classify(taxonomy.TaxonomyFramework, hints)
	stOut := classifier.Classify(taxonomy.TaxonomyStyling, hints)

	fwOut, fwFindings := d.fwConflicts.Resolve(fwOut, hints)
	stOut, stFindings := d.stConflicts.Resolve(stOut, hints)
	findings := append(fwFindings, stFindings...)

	dec := &Decision{
		SchemaVersion: DecisionSchemaVersion,
		Root:          root,
		Framework:     pickFrom(fwOut),
		Styling:       pickFrom(stOut),
		Conflicts:     findings,
		Unresolved:    conflict.Unresolved(findings),
	}
	dec.Warnings = warningsFrom(dec.Framework, dec.Styling, findings)
	dec.Recommendations = recommendationsFrom(dec.Styling.Label, findings)
	dec.Confidence = overallConfidence(dec.Framework.Confidence, dec.Styling.Confidence, findings)

	d.log.Info("decision made",
		"framework", dec.Framework.Label,
		"styling", dec.Styling.Label,
		"confidence", dec.Confidence,
		"conflicts", len(findings),
		"unresolved", dec.Unresolved)
	return dec, nil
}

// gather fans the scanners out and merges their hints in canonical scanner
// order. A failed scanner contributes nothing; cancellation aborts the run.
func (d *Detector) gather(ctx context.Context, tree *scanner.Tree) ([]evidence.Hint, error) {
	results := make([][]evidence.Hint, len(d.scanners))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range d.scanners {
		g.Go(func() error {
			hints, err := s.Scan(gctx, tree)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				d.log.Debug("scanner failed", "source", s.Kind(), "error", err)
				return nil
			}
			results[i] = hints
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []evidence.Hint
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

func pickFrom(out classifier.Outcome) Pick {
	return Pick{
		Label:      out.Primary.Label,
		Confidence: out.Primary.Value,
		Fallback:   out.Fallback,
		Evidence:   out.Primary.Evidence,
		Secondary:  out.Secondary,
		Table:      out.Table,
	}
}

// warningsFrom explains every weak spot of the decision: fallback picks and
// conflict noise. A low confidence never ships without a line saying why.
func warningsFrom(fw, st Pick, findings []conflict.Finding) []string {
	var out []string
	if fw.Fallback {
		out = append(out, fmt.Sprintf("no framework evidence found; defaulting to %s", fw.Label))
	}
	if st.Fallback {
		out = append(out, fmt.Sprintf("no styling evidence found; defaulting to %s", st.Label))
	}
	for _, f := range findings {
		switch {
		case f.Status == conflict.StatusUnresolved:
			out = append(out, fmt.Sprintf("could not decide between %s and %s: %s", f.A, f.B, f.Basis))
		case f.Severity == taxonomy.SeverityWarning:
			out = append(out, fmt.Sprintf("%s and %s overlap; projects rarely intend both", f.A, f.B))
		case f.Severity == taxonomy.SeverityInfo:
			out = append(out, fmt.Sprintf("%s and %s detected together: %s", f.A, f.B, f.Note))
		}
	}
	return out
}

func recommendationsFrom(styling taxonomy.Label, findings []conflict.Finding) []string {
	recs := taxonomy.Guidance(styling)
	for _, f := range findings {
		if f.Severity == taxonomy.SeverityCritical && f.Status == conflict.StatusUnresolved {
			recs = append(recs, fmt.Sprintf("remove either %s or %s so detection can settle on one", f.A, f.B))
		}
	}
	return recs
}

// overallConfidence blends the two picks and discounts for conflict noise.
// A weak side drags the blend below a bare average, so one strong signal
// cannot mask a missing one, and an unresolved critical conflict caps the
// whole decision low: the caller should not trust generation built on it.
func overallConfidence(fw, st float64, findings []conflict.Finding) float64 {
	overall := (fw + st) / 2
	if low := math.Min(fw, st); low < classifier.TrustThreshold {
		overall = (overall + low) / 2
	}
	unresolved := false
	for _, f := range findings {
		if f.Severity == taxonomy.SeverityWarning && f.Status == conflict.StatusNoted {
			overall -= 0.05
		}
		if f.Severity == taxonomy.SeverityCritical && f.Status == conflict.StatusUnresolved {
			unresolved = true
		}
	}
	if unresolved && overall > 0.25 {
		overall = 0.25
	}
	return evidence.Clamp01(overall)
}
