package generator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uigen/internal/detect"
	"uigen/internal/knowledge"
	"uigen/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWriter replays canned responses and records the prompts it saw.
type scriptedWriter struct {
	responses []string
	errs      []error
	prompts   []string
}

func (w *scriptedWriter) GenerateComponent(_ context.Context, prompt string) (string, error) {
	i := len(w.prompts)
	w.prompts = append(w.prompts, prompt)
	if i < len(w.errs) && w.errs[i] != nil {
		return "", w.errs[i]
	}
	if i >= len(w.responses) {
		i = len(w.responses) - 1
	}
	return w.responses[i], nil
}

func payloadJSON(t *testing.T, name string, files ...knowledge.ComponentFile) string {
	t.Helper()
	b, err := json.Marshal(knowledge.ComponentPayload{ComponentName: name, Files: files})
	require.NoError(t, err)
	return string(b)
}

func reactTailwindDecision() *detect.Decision {
	return &detect.Decision{
		SchemaVersion: detect.DecisionSchemaVersion,
		Root:          "/proj/web",
		Framework:     detect.Pick{Label: taxonomy.React, Confidence: 0.9},
		Styling:       detect.Pick{Label: taxonomy.Tailwind, Confidence: 0.85},
		Confidence:    0.87,
	}
}

const cleanTailwindButton = `import React from 'react';

export function SaveButton({ label }: { label: string }) {
  return <button className="rounded bg-blue-600 px-4 py-2 text-white">{label}</button>;
}
`

func TestGenerate_HappyPathWritesFiles(t *testing.T) {
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: cleanTailwindButton}),
	}}
	gen, err := New(writer)
	require.NoError(t, err)

	outDir := t.TempDir()
	req := knowledge.ComponentRequest{Name: "SaveButton", Description: "primary action button", Props: []string{"label"}}
	res, err := gen.Generate(context.Background(), reactTailwindDecision(), req, outDir)
	require.NoError(t, err)

	assert.Equal(t, "SaveButton", res.Component.ComponentName)
	assert.InDelta(t, 1.0, res.Quality.Score, 1e-9)
	require.Len(t, res.Written, 1)
	data, err := os.ReadFile(res.Written[0])
	require.NoError(t, err)
	assert.Equal(t, cleanTailwindButton, string(data))

	var stages []string
	for _, s := range res.Report.Stages {
		stages = append(stages, s.Name)
	}
	assert.Equal(t, []string{"strategy", "write", "parse", "quality", "emit"}, stages)
	assert.Zero(t, res.Report.Summary.FailedStages)
	assert.Zero(t, res.Report.Summary.RepairRounds)
	assert.Len(t, writer.prompts, 1)
	assert.Contains(t, writer.prompts[0], "Framework: React")
	assert.Contains(t, writer.prompts[0], "Styling: Tailwind CSS")
}

func TestGenerate_RepairRoundRecoversQuality(t *testing.T) {
	drifted := "import styled from 'styled-components';\n" +
		"const B = styled.button([] as any);\n" +
		"export function SaveButton({ label }: { label: string }) {\n" +
		"  return <B className=\"px-2\">{label}</B>;\n" +
		"}\n"
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: drifted}),
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: cleanTailwindButton}),
	}}
	gen, err := New(writer)
	require.NoError(t, err)

	req := knowledge.ComponentRequest{Name: "SaveButton", Props: []string{"label"}}
	res, err := gen.Generate(context.Background(), reactTailwindDecision(), req, "")
	require.NoError(t, err)

	require.Len(t, writer.prompts, 2, "low quality must trigger exactly one repair call")
	assert.Contains(t, writer.prompts[1], "ISSUES TO FIX")
	assert.Contains(t, writer.prompts[1], "foreign_styling_import")
	assert.InDelta(t, 1.0, res.Quality.Score, 1e-9)
	assert.Equal(t, 1, res.Report.Summary.RepairRounds)
	assert.Empty(t, res.Written, "empty outDir must not touch disk")
}

func TestGenerate_KeepsOriginalWhenRepairIsWorse(t *testing.T) {
	drifted := "import styled from 'styled-components';\n" +
		"const B = styled.button([] as any);\n" +
		"export function SaveButton() { return <B className=\"px-2\">Save</B>; }\n"
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: drifted}),
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: drifted}),
	}}
	gen, err := New(writer)
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton"}, "")
	require.NoError(t, err)

	assert.Contains(t, res.Quality.Issues, "foreign_styling_import")
	var codes []string
	for _, s := range res.Report.Signals {
		codes = append(codes, s.Code)
	}
	assert.Contains(t, codes, "repair_not_better")
	assert.Contains(t, codes, "low_quality_output")
}

func TestGenerate_WriterFailureIsCritical(t *testing.T) {
	writer := &scriptedWriter{errs: []error{errors.New("quota exceeded")}, responses: []string{""}}
	gen, err := New(writer)
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton"}, "")
	require.Error(t, err)
	require.NotNil(t, res, "the report so far must survive a writer failure")
	require.NotEmpty(t, res.Report.Signals)
	assert.Equal(t, "writer_failed", res.Report.Signals[0].Code)
	assert.Equal(t, "critical", res.Report.Signals[0].Severity)
}

func TestGenerate_RejectsProseResponse(t *testing.T) {
	writer := &scriptedWriter{responses: []string{"Sure! Here is your component: ..."}}
	gen, err := New(writer)
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton"}, "")
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "invalid_payload", res.Report.Signals[0].Code)
}

func TestGenerate_RejectsEscapingPaths(t *testing.T) {
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "../../outside.tsx", Content: cleanTailwindButton}),
	}}
	gen, err := New(writer)
	require.NoError(t, err)

	outDir := t.TempDir()
	_, err = gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton"}, outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be written outside or inside on a rejected path")
}

func TestGenerate_NormalizesLeadFileName(t *testing.T) {
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "component.jsx", Content: cleanTailwindButton}),
	}}
	gen, err := New(writer)
	require.NoError(t, err)

	outDir := t.TempDir()
	res, err := gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton", Props: []string{"label"}}, outDir)
	require.NoError(t, err)

	require.Len(t, res.Written, 1)
	assert.Equal(t, "SaveButton.tsx", filepath.Base(res.Written[0]))
}

func TestGenerate_ProgressCallbackSeesStages(t *testing.T) {
	writer := &scriptedWriter{responses: []string{
		payloadJSON(t, "SaveButton", knowledge.ComponentFile{Path: "SaveButton.tsx", Content: cleanTailwindButton}),
	}}
	var seen []string
	gen, err := New(writer, WithProgress(func(stage, _ string) { seen = append(seen, stage) }))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), reactTailwindDecision(),
		knowledge.ComponentRequest{Name: "SaveButton", Props: []string{"label"}}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"strategy", "write", "parse", "quality", "done"}, seen)
}

func TestParsePayload_SchemaViolations(t *testing.T) {
	bad := []struct {
		name string
		raw  string
	}{
		{"missing files", `{"component_name":"X"}`},
		{"empty files", `{"component_name":"X","files":[]}`},
		{"empty content", `{"component_name":"X","files":[{"path":"a.tsx","content":""}]}`},
		{"unknown field", `{"component_name":"X","files":[{"path":"a.tsx","content":"x"}],"extra":1}`},
		{"bad name", `{"component_name":"save button","files":[{"path":"a.tsx","content":"x"}]}`},
		{"not json", `hello`},
		{"empty response", ``},
		{"array not object", `[1,2,3]`},
	}
	for _, tc := range bad {
		if _, err := ParsePayload(tc.raw); err == nil {
			t.Errorf("%s: ParsePayload accepted %q", tc.name, tc.raw)
		}
	}

	ok := `{"component_name":"SaveButton","files":[{"path":"SaveButton.tsx","content":"export {}"}],"notes":"wrap in a form"}`
	payload, err := ParsePayload(ok)
	require.NoError(t, err)
	assert.Equal(t, "SaveButton", payload.ComponentName)
	assert.Equal(t, "wrap in a form", payload.Notes)
}

func TestReport_FinalizeOrdersSignalsBySeverity(t *testing.T) {
	r := NewReport("X", "/proj")
	r.AddSignal("minor", "quality", "info", "note", 0)
	r.AddSignal("bad", "emit", "critical", "boom", 0)
	r.AddSignal("meh", "quality", "warning", "hmm", 0)
	r.AddSignal("", "quality", "warning", "dropped for empty code", 0)
	r.Finalize()

	require.Len(t, r.Signals, 3)
	assert.Equal(t, "critical", r.Signals[0].Severity)
	assert.Equal(t, "warning", r.Signals[1].Severity)
	assert.Equal(t, "info", r.Signals[2].Severity)
	assert.Equal(t, 1, r.Summary.SignalsBySeverity["critical"])
}

func TestReport_SaveWritesJSON(t *testing.T) {
	r := NewReport("X", "/proj")
	h := r.BeginStage("strategy")
	r.EndStage(h, "", map[string]float64{"decision_confidence": 0.9}, nil, nil)

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"))

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1, back.Summary.StageCount)
}
