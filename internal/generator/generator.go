// Package generator turns a detection decision and a component request into
// validated source files: strategy selection, one writer call, schema
// validation, styling-quality fixes, and at most a bounded number of repair
// rounds before files reach disk.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"uigen/internal/detect"
	"uigen/internal/knowledge"
	"uigen/internal/logging"
	"uigen/internal/quality"
	"uigen/internal/strategy"
)

// ProgressFunc receives stage updates as the pipeline runs. The server uses
// it to stream generation progress to clients.
type ProgressFunc func(stage, detail string)

// Generator owns the strategy table, prompt builder, and code writer for
// component generation.
type Generator struct {
	selector *strategy.Selector
	writer   knowledge.CodeWriter
	prompts  knowledge.PromptBuilder
	progress ProgressFunc
	repairs  int
	log      *slog.Logger
}

// Option adjusts a Generator at construction.
type Option func(*Generator)

// WithLogger replaces the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithProgress registers a callback invoked as stages begin.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.progress = fn }
}

// WithRepairRounds bounds how many repair prompts a low-quality result may
// trigger. Zero disables repair entirely.
func WithRepairRounds(n int) Option {
	return func(g *Generator) { g.repairs = n }
}

// New builds a Generator around a code writer.
func New(writer knowledge.CodeWriter, opts ...Option) (*Generator, error) {
	if writer == nil {
		return nil, errors.New("generator needs a code writer")
	}
	selector, err := strategy.NewSelector()
	if err != nil {
		return nil, err
	}
	g := &Generator{
		selector: selector,
		writer:   writer,
		repairs:  1,
		log:      logging.New("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Result carries everything a generation run produced.
type Result struct {
	Component knowledge.ComponentPayload `json:"component"`
	Strategy  strategy.Strategy          `json:"strategy"`
	Quality   quality.Result             `json:"quality"`
	FixNotes  []string                   `json:"fix_notes,omitempty"`
	Written   []string                   `json:"written,omitempty"`
	Report    *Report                    `json:"report"`
}

// Generate runs the full pipeline. When outDir is empty no files are
// written; callers get the payload and write it themselves. On failure the
// returned Result still carries the report accumulated so far.
func (g *Generator) Generate(ctx context.Context, decision *detect.Decision, req knowledge.ComponentRequest, outDir string) (*Result, error) {
	if decision == nil {
		return nil, errors.New("generate needs a detection decision")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("component request needs a name")
	}

	report := NewReport(req.Name, decision.Root)
	report.OutputDir = outDir

	// strategy
	g.emitProgress("strategy", fmt.Sprintf("resolving %s + %s", decision.Framework.Label, decision.Styling.Label))
	stage := report.BeginStage("strategy")
	strat := g.selector.Select(decision.Framework.Label, decision.Styling.Label)
	profile := knowledge.ProfileFor(decision.Styling.Label)
	if decision.Unresolved {
		report.AddSignal("unresolved_decision", "strategy", "warning",
			"detection left a critical conflict unresolved; generation follows the current primary picks", decision.Confidence)
	}
	report.EndStage(stage, "ok", map[string]float64{"decision_confidence": decision.Confidence},
		[]string{fmt.Sprintf("%s + %s -> %s", strat.Framework, strat.Styling, strat.FileExt)}, nil)

	// write
	prompt := g.prompts.BuildComponentPrompt(req, strat, profile)
	g.emitProgress("write", "asking the code writer")
	stage = report.BeginStage("write")
	raw, err := g.writer.GenerateComponent(ctx, prompt)
	report.EndStage(stage, "", map[string]float64{
		"prompt_chars":   float64(len(prompt)),
		"response_chars": float64(len(raw)),
	}, nil, err)
	if err != nil {
		report.AddSignal("writer_failed", "write", "critical", err.Error(), 0)
		report.Finalize()
		return &Result{Strategy: strat, Report: report}, fmt.Errorf("code writer: %w", err)
	}

	// parse
	g.emitProgress("parse", "validating the response payload")
	stage = report.BeginStage("parse")
	payload, err := ParsePayload(raw)
	report.EndStage(stage, "", nil, nil, err)
	if err != nil {
		report.AddSignal("invalid_payload", "parse", "critical", err.Error(), 0)
		report.Finalize()
		return &Result{Strategy: strat, Report: report}, err
	}

	// quality
	g.emitProgress("quality", "applying styling fixes")
	stage = report.BeginStage("quality")
	payload.Files, _ = normalizeFirstFile(payload.Files, req.Name, strat.FileExt)
	fixed, notes := quality.Fix(payload.Files, profile)
	payload.Files = fixed
	graded := quality.Assess(req, payload.Files, profile)
	for _, n := range notes {
		report.AddSignal("styling_fix_applied", "quality", "info", n, 0)
	}
	for _, issue := range graded.Issues {
		report.AddSignal(issue, "quality", "warning", "quality check flagged "+issue, graded.Score)
	}
	report.EndStage(stage, "", map[string]float64{
		"score": graded.Score,
		"fixes": float64(len(notes)),
	}, nil, nil)

	// repair
	for round := 0; graded.Score < quality.Acceptable && round < g.repairs; round++ {
		g.emitProgress("repair", fmt.Sprintf("quality %.2f is below %.2f, asking for a repair", graded.Score, quality.Acceptable))
		stage = report.BeginStage("repair")
		repaired, rerr := g.repair(ctx, payload.Files, graded.Issues, profile)
		if rerr != nil {
			report.EndStage(stage, "error", nil, nil, rerr)
			report.AddSignal("repair_failed", "repair", "warning", rerr.Error(), 0)
			break
		}
		repaired.Files, _ = normalizeFirstFile(repaired.Files, req.Name, strat.FileExt)
		fixedAgain, repairNotes := quality.Fix(repaired.Files, profile)
		repaired.Files = fixedAgain
		rescored := quality.Assess(req, repaired.Files, profile)
		report.EndStage(stage, "", map[string]float64{"score": rescored.Score}, nil, nil)
		if rescored.Score <= graded.Score {
			report.AddSignal("repair_not_better", "repair", "info",
				fmt.Sprintf("repair scored %.2f, keeping the %.2f original", rescored.Score, graded.Score), rescored.Score)
			break
		}
		payload, graded = repaired, rescored
		notes = append(notes, repairNotes...)
	}
	if graded.Score < quality.Acceptable {
		report.AddSignal("low_quality_output", "quality", "warning",
			fmt.Sprintf("final quality %.2f is below the %.2f bar", graded.Score, quality.Acceptable), graded.Score)
	}

	// emit
	var written []string
	if outDir != "" {
		g.emitProgress("emit", fmt.Sprintf("writing %d file(s) under %s", len(payload.Files), outDir))
		stage = report.BeginStage("emit")
		written, err = writeFiles(outDir, payload.Files)
		report.EndStage(stage, "", map[string]float64{"files": float64(len(written))}, written, err)
		if err != nil {
			report.AddSignal("emit_failed", "emit", "critical", err.Error(), 0)
			report.Finalize()
			return &Result{Component: *payload, Strategy: strat, Quality: graded, FixNotes: notes, Written: written, Report: report}, err
		}
	}

	report.Quality = graded.Score
	report.Finalize()
	g.emitProgress("done", fmt.Sprintf("generated %s at quality %.2f", payload.ComponentName, graded.Score))
	g.log.Info("component generated",
		"component", payload.ComponentName,
		"framework", strat.Framework,
		"styling", strat.Styling,
		"quality", graded.Score,
		"files", len(payload.Files),
	)

	return &Result{
		Component: *payload,
		Strategy:  strat,
		Quality:   graded,
		FixNotes:  notes,
		Written:   written,
		Report:    report,
	}, nil
}

func (g *Generator) repair(ctx context.Context, files []knowledge.ComponentFile, issues []string, profile knowledge.StackProfile) (*knowledge.ComponentPayload, error) {
	prompt := g.prompts.BuildRepairPrompt(files, issues, profile)
	raw, err := g.writer.GenerateComponent(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParsePayload(raw)
}

func (g *Generator) emitProgress(stage, detail string) {
	if g.progress != nil {
		g.progress(stage, detail)
	}
	g.log.Debug("pipeline stage", "stage", stage, "detail", detail)
}

// normalizeFirstFile makes sure the lead file carries the strategy's
// extension and the requested name, so `Button` lands in Button.tsx even
// when the writer picked a generic filename.
func normalizeFirstFile(files []knowledge.ComponentFile, name, ext string) ([]knowledge.ComponentFile, bool) {
	if len(files) == 0 || name == "" || ext == "" {
		return files, false
	}
	first := files[0]
	base := path.Base(filepath.ToSlash(first.Path))
	if strings.HasSuffix(base, ext) {
		return files, false
	}
	dir := path.Dir(filepath.ToSlash(first.Path))
	renamed := name + ext
	if dir != "." {
		renamed = path.Join(dir, renamed)
	}
	files[0].Path = renamed
	return files, true
}

func writeFiles(dir string, files []knowledge.ComponentFile) ([]string, error) {
	var written []string
	for _, f := range files {
		rel, err := safeRelPath(f.Path)
		if err != nil {
			return written, err
		}
		dst := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return written, err
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0644); err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	return written, nil
}

// safeRelPath rejects payload paths that would land outside the output
// directory. Writer output is untrusted input.
func safeRelPath(p string) (string, error) {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return "", errors.New("file has an empty path")
	}
	clean := path.Clean(p)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("file path escapes the output directory: %s", p)
	}
	return filepath.FromSlash(clean), nil
}
