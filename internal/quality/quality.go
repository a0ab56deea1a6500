// Package quality post-processes generated component code. Fix applies
// text-level rewrites for leaks of foreign styling systems; Assess grades
// the result with issue codes so the generator can decide whether a repair
// round is worth an extra writer call.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"uigen/internal/knowledge"
	"uigen/internal/taxonomy"
)

// Result is a graded assessment of generated files.
type Result struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// Acceptable is the Assess score at or above which the generator skips the
// repair round.
const Acceptable = 0.7

// stylingPackages maps each kit to the npm package prefixes that betray its
// presence in an import line.
var stylingPackages = map[taxonomy.Label][]string{
	taxonomy.StyledComponents: {"styled-components"},
	taxonomy.Emotion:          {"@emotion/"},
	taxonomy.MUI:              {"@mui/"},
	taxonomy.Chakra:           {"@chakra-ui/"},
	taxonomy.AntDesign:        {"antd", "@ant-design/"},
	taxonomy.Bootstrap:        {"bootstrap", "react-bootstrap"},
}

// importLine matches one ES import statement on its own line, capturing the
// binding clause (may be empty for side-effect imports) and the module path.
var importLine = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:([^'"]+?)\s+from\s+)?['"]([^'"]+)['"];?[ \t]*\r?\n?`)

var identifier = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// Fix rewrites each file to drop imports of styling systems foreign to the
// profile, when the import's bindings are unused. Used bindings are left for
// the repair round; deleting them would break more than the stray import
// does. Returns the fixed files and one note per applied rewrite.
func Fix(files []knowledge.ComponentFile, profile knowledge.StackProfile) ([]knowledge.ComponentFile, []string) {
	foreign := foreignPrefixes(profile.Styling)
	if len(foreign) == 0 {
		return files, nil
	}

	fixed := make([]knowledge.ComponentFile, len(files))
	var notes []string
	for i, f := range files {
		content := f.Content
		for _, m := range importLine.FindAllStringSubmatch(content, -1) {
			full, clause, pkg := m[0], m[1], m[2]
			if !matchesPrefix(pkg, foreign) {
				continue
			}
			rest := strings.Replace(content, full, "", 1)
			if bindingsUsed(clause, rest) {
				continue
			}
			content = rest
			notes = append(notes, fmt.Sprintf("%s: removed unused %s import (foreign to %s)", f.Path, pkg, profile.Styling))
		}
		fixed[i] = knowledge.ComponentFile{Path: f.Path, Content: content}
	}
	return fixed, notes
}

// Assess grades generated files against the request and the styling profile.
// The score starts at 1.0 and loses points per detected issue; codes name
// the problems for report signals and repair prompts.
func Assess(req knowledge.ComponentRequest, files []knowledge.ComponentFile, profile knowledge.StackProfile) Result {
	if len(files) == 0 {
		return Result{Score: 0, Issues: []string{"empty_output"}}
	}

	score := 1.0
	issues := make([]string, 0, 6)
	var all strings.Builder
	for _, f := range files {
		if strings.TrimSpace(f.Content) == "" {
			return Result{Score: 0, Issues: []string{"empty_file"}}
		}
		all.WriteString(f.Content)
		all.WriteString("\n")
	}
	text := all.String()
	lower := strings.ToLower(text)

	if foreignImportPresent(text, profile.Styling) {
		score -= 0.35
		issues = append(issues, "foreign_styling_import")
	}
	if strings.Contains(text, "```") {
		score -= 0.3
		issues = append(issues, "markdown_fence_leak")
	}
	for _, token := range []string{"your code here", "implement me", "placeholder", "tbd"} {
		if strings.Contains(lower, token) {
			score -= 0.2
			issues = append(issues, "placeholder_text")
			break
		}
	}
	if req.Name != "" && !strings.Contains(text, req.Name) {
		score -= 0.2
		issues = append(issues, "component_name_missing")
	}
	if unused := unusedProps(req.Props, text); len(req.Props) > 0 && unused*2 > len(req.Props) {
		score -= 0.15
		issues = append(issues, "props_ignored")
	}

	score, issues = assessStyling(text, profile, score, issues)

	if score < 0 {
		score = 0
	}
	return Result{Score: score, Issues: issues}
}

func assessStyling(text string, profile knowledge.StackProfile, score float64, issues []string) (float64, []string) {
	switch profile.Styling {
	case taxonomy.Tailwind:
		if strings.Contains(text, "style={{") {
			score -= 0.2
			issues = append(issues, "inline_style_objects")
		}
		if !strings.Contains(text, "className=") && !strings.Contains(text, "class=") {
			score -= 0.15
			issues = append(issues, "missing_utility_classes")
		}
	case taxonomy.StyledComponents:
		if !strings.Contains(text, "styled.") && !strings.Contains(text, "styled(") {
			score -= 0.25
			issues = append(issues, "missing_styled_usage")
		}
	case taxonomy.Emotion:
		if !strings.Contains(text, "css") {
			score -= 0.25
			issues = append(issues, "missing_css_prop_usage")
		}
	case taxonomy.CSSModules:
		if !strings.Contains(text, ".module.css") {
			score -= 0.25
			issues = append(issues, "missing_module_stylesheet")
		}
	case taxonomy.MUI, taxonomy.Chakra, taxonomy.AntDesign:
		if !kitImportPresent(text, profile.Styling) {
			score -= 0.25
			issues = append(issues, "missing_kit_import")
		}
	}
	return score, issues
}

func foreignPrefixes(styling taxonomy.Label) []string {
	var out []string
	for label, prefixes := range stylingPackages {
		if label == styling {
			continue
		}
		// MUI v5 styles through Emotion, so Emotion imports are not
		// foreign to an MUI project.
		if styling == taxonomy.MUI && label == taxonomy.Emotion {
			continue
		}
		out = append(out, prefixes...)
	}
	return out
}

func matchesPrefix(pkg string, prefixes []string) bool {
	for _, p := range prefixes {
		if pkg == p || strings.HasPrefix(pkg, p) || strings.HasPrefix(pkg, p+"/") {
			return true
		}
	}
	return false
}

// bindingsUsed reports whether any identifier bound by an import clause
// appears in the remaining content.
func bindingsUsed(clause, rest string) bool {
	var names []string
	for _, ident := range identifier.FindAllString(clause, -1) {
		switch ident {
		case "type", "as", "default":
			continue
		}
		names = append(names, regexp.QuoteMeta(ident))
	}
	if len(names) == 0 {
		return false
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`).MatchString(rest)
}

func foreignImportPresent(text string, styling taxonomy.Label) bool {
	foreign := foreignPrefixes(styling)
	for _, m := range importLine.FindAllStringSubmatch(text, -1) {
		if matchesPrefix(m[2], foreign) {
			return true
		}
	}
	return false
}

func kitImportPresent(text string, kit taxonomy.Label) bool {
	for _, m := range importLine.FindAllStringSubmatch(text, -1) {
		if matchesPrefix(m[2], stylingPackages[kit]) {
			return true
		}
	}
	return false
}

func unusedProps(props []string, text string) int {
	unused := 0
	for _, p := range props {
		if p == "" {
			continue
		}
		if !regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`).MatchString(text) {
			unused++
		}
	}
	return unused
}
