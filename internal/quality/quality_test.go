package quality

import (
	"testing"

	"uigen/internal/knowledge"
	"uigen/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tsx(path, content string) knowledge.ComponentFile {
	return knowledge.ComponentFile{Path: path, Content: content}
}

func TestFix_RemovesUnusedForeignImport(t *testing.T) {
	files := []knowledge.ComponentFile{tsx("src/SaveButton.tsx", `import React from 'react';
import styled from 'styled-components';
import 'antd/dist/reset.css';

export function SaveButton() {
  return <button className="rounded bg-blue-600 px-4 py-2">Save</button>;
}
`)}

	fixed, notes := Fix(files, knowledge.ProfileFor(taxonomy.Tailwind))
	require.Len(t, fixed, 1)
	assert.NotContains(t, fixed[0].Content, "styled-components")
	assert.NotContains(t, fixed[0].Content, "antd")
	assert.Contains(t, fixed[0].Content, "import React from 'react';")
	assert.Len(t, notes, 2)
}

func TestFix_KeepsForeignImportWhenBindingIsUsed(t *testing.T) {
	content := `import styled from 'styled-components';

const Btn = styled.button` + "`color: red;`" + `;
export function SaveButton() {
  return <Btn>Save</Btn>;
}
`
	fixed, notes := Fix([]knowledge.ComponentFile{tsx("src/SaveButton.tsx", content)}, knowledge.ProfileFor(taxonomy.Tailwind))

	// A used binding is the repair round's job, not a text rewrite's.
	assert.Contains(t, fixed[0].Content, "styled-components")
	assert.Empty(t, notes)
}

func TestFix_EmotionIsNotForeignToMUI(t *testing.T) {
	content := `import { Button } from '@mui/material';
import { css } from '@emotion/react';

export function SaveButton() {
  return <Button variant="contained">Save</Button>;
}
`
	fixed, notes := Fix([]knowledge.ComponentFile{tsx("src/SaveButton.tsx", content)}, knowledge.ProfileFor(taxonomy.MUI))

	assert.Contains(t, fixed[0].Content, "@emotion/react")
	assert.Contains(t, fixed[0].Content, "@mui/material")
	assert.Empty(t, notes)
}

func TestAssess_CleanTailwindComponentScoresFull(t *testing.T) {
	req := knowledge.ComponentRequest{
		Name:        "SaveButton",
		Description: "primary action button",
		Props:       []string{"label"},
	}
	files := []knowledge.ComponentFile{tsx("src/SaveButton.tsx", `import React from 'react';

export function SaveButton({ label }: { label: string }) {
  return <button className="rounded bg-blue-600 px-4 py-2 text-white">{label}</button>;
}
`)}

	res := Assess(req, files, knowledge.ProfileFor(taxonomy.Tailwind))
	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.Empty(t, res.Issues)
	assert.GreaterOrEqual(t, res.Score, Acceptable)
}

func TestAssess_FlagsForeignImportAndFenceLeak(t *testing.T) {
	files := []knowledge.ComponentFile{tsx("src/SaveButton.tsx", "```tsx\nimport styled from 'styled-components';\nconst B = styled.button``;\nexport const SaveButton = () => <B className=\"px-2\">Save</B>;\n```")}

	res := Assess(knowledge.ComponentRequest{Name: "SaveButton"}, files, knowledge.ProfileFor(taxonomy.Tailwind))
	assert.Contains(t, res.Issues, "foreign_styling_import")
	assert.Contains(t, res.Issues, "markdown_fence_leak")
	assert.Less(t, res.Score, Acceptable)
}

func TestAssess_EmptyOutput(t *testing.T) {
	res := Assess(knowledge.ComponentRequest{Name: "X"}, nil, knowledge.ProfileFor(taxonomy.PlainCSS))
	assert.Zero(t, res.Score)
	assert.Equal(t, []string{"empty_output"}, res.Issues)

	res = Assess(knowledge.ComponentRequest{Name: "X"},
		[]knowledge.ComponentFile{tsx("a.tsx", "   \n")}, knowledge.ProfileFor(taxonomy.PlainCSS))
	assert.Zero(t, res.Score)
	assert.Equal(t, []string{"empty_file"}, res.Issues)
}

func TestAssess_MissingKitImport(t *testing.T) {
	files := []knowledge.ComponentFile{tsx("src/SaveButton.tsx", `export function SaveButton() {
  return <button>Save</button>;
}
`)}

	res := Assess(knowledge.ComponentRequest{Name: "SaveButton"}, files, knowledge.ProfileFor(taxonomy.Chakra))
	assert.Contains(t, res.Issues, "missing_kit_import")
}

func TestAssess_IgnoredPropsAndPlaceholders(t *testing.T) {
	req := knowledge.ComponentRequest{
		Name:  "UserCard",
		Props: []string{"name", "avatarUrl", "subtitle", "onClick"},
	}
	files := []knowledge.ComponentFile{tsx("src/UserCard.tsx", `export function UserCard({ name }: { name: string }) {
  // TODO: placeholder
  return <div className="p-4">{name}</div>;
}
`)}

	res := Assess(req, files, knowledge.ProfileFor(taxonomy.Tailwind))
	assert.Contains(t, res.Issues, "props_ignored")
	assert.Contains(t, res.Issues, "placeholder_text")
	assert.Less(t, res.Score, 1.0)
}
