package knowledge

import (
	"fmt"
	"strings"

	"uigen/internal/strategy"
)

// PromptBuilder constructs standardized prompts for component generation
// and repair.
type PromptBuilder struct{}

const outputContract = `Respond with a single JSON object and nothing else. No prose, no code fences. Shape:
{
  "component_name": "<PascalCase name>",
  "files": [{"path": "<relative path>", "content": "<full file content>"}],
  "notes": "<one short line about usage, or empty>"
}
The first file must be the component itself.`

// BuildComponentPrompt assembles the generation prompt from the request,
// the selected strategy, and the styling profile.
func (pb *PromptBuilder) BuildComponentPrompt(req ComponentRequest, strat strategy.Strategy, profile StackProfile) string {
	var sb strings.Builder
	sb.WriteString("Role: Senior UI Engineer. Task: Write one production-quality UI component for an existing codebase.\n")

	sb.WriteString("\n==================================================================\n")
	sb.WriteString("### TARGET STACK\n")
	sb.WriteString("==================================================================\n")
	fmt.Fprintf(&sb, "Framework: %s\n", strat.Framework.Display())
	fmt.Fprintf(&sb, "Styling: %s\n", strat.Styling.Display())
	fmt.Fprintf(&sb, "Component shape: %s\n", strat.SyntaxHint)
	fmt.Fprintf(&sb, "Styling approach: %s\n", strat.StyleHint)
	fmt.Fprintf(&sb, "Component file extension: %s\n", strat.FileExt)

	sb.WriteString("\n==================================================================\n")
	sb.WriteString("### STYLING RULES\n")
	sb.WriteString("==================================================================\n")
	if len(profile.Packages) > 0 {
		fmt.Fprintf(&sb, "Styling packages you may import: %s\n", strings.Join(profile.Packages, ", "))
	}
	if len(profile.Imports) > 0 {
		sb.WriteString("Canonical imports:\n")
		for _, line := range profile.Imports {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}
	if profile.Snippet != "" {
		sb.WriteString("Reference snippet:\n")
		fmt.Fprintf(&sb, "%s\n", profile.Snippet)
	}
	if len(profile.Forbidden) > 0 {
		sb.WriteString("Never use:\n")
		for _, f := range profile.Forbidden {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	sb.WriteString("\n==================================================================\n")
	sb.WriteString("### COMPONENT REQUEST\n")
	sb.WriteString("==================================================================\n")
	fmt.Fprintf(&sb, "Name: %s\n", req.Name)
	fmt.Fprintf(&sb, "Description: %s\n", req.Description)
	if len(req.Props) > 0 {
		fmt.Fprintf(&sb, "Props: %s\n", strings.Join(req.Props, ", "))
	}

	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("1. Implement exactly the requested component, nothing more.\n")
	sb.WriteString("2. Follow the styling approach above strictly.\n")
	sb.WriteString("3. Keep the component accessible: semantic elements, labels, keyboard handling where relevant.\n")
	sb.WriteString("\n" + outputContract + "\n")

	return sb.String()
}

// BuildRepairPrompt asks the writer to fix specific issues in files it
// produced earlier, without changing anything else.
func (pb *PromptBuilder) BuildRepairPrompt(files []ComponentFile, issues []string, profile StackProfile) string {
	var sb strings.Builder
	sb.WriteString("Role: Senior UI Engineer. Task: Repair the component files below. Change only what the issues require.\n")

	sb.WriteString("\n==================================================================\n")
	sb.WriteString("### ISSUES TO FIX\n")
	sb.WriteString("==================================================================\n")
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	if len(profile.Forbidden) > 0 {
		sb.WriteString("Reminder, never use:\n")
		for _, f := range profile.Forbidden {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	sb.WriteString("\n==================================================================\n")
	sb.WriteString("### CURRENT FILES\n")
	sb.WriteString("==================================================================\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", f.Path, f.Content)
	}

	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Return every file, fixed, in the same JSON shape as before.\n")
	sb.WriteString("\n" + outputContract + "\n")

	return sb.String()
}
