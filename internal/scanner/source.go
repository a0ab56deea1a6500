package scanner

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

// sourceExts are the file types worth sampling for import and usage
// analysis. Stylesheets are included because directives like @tailwind live
// there.
var sourceExts = map[string]struct{}{
	".js":     {},
	".jsx":    {},
	".ts":     {},
	".tsx":    {},
	".mjs":    {},
	".cjs":    {},
	".vue":    {},
	".svelte": {},
	".css":    {},
	".scss":   {},
}

// sourceScan is the shared engine behind the import and usage scanners: a
// deterministic file sample, a regexp set per label, and a confidence that
// grows with the fraction of sampled files that match.
type sourceScan struct {
	kind     evidence.SourceKind
	catalogs []*taxonomy.Catalog
	sample   func(*Tree) []string
	read     func(*Tree, string) ([]byte, error)
	patterns func(taxonomy.PatternSet) []*regexp.Regexp
	base     float64
	slope    float64
	ceiling  float64
}

func (s *sourceScan) Kind() evidence.SourceKind { return s.kind }

func (s *sourceScan) Scan(ctx context.Context, tree *Tree) ([]evidence.Hint, error) {
	files := s.sample(tree)
	if len(files) == 0 {
		return nil, nil
	}

	contents := make([][]byte, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.read(tree, f)
		if err != nil {
			continue // a single unreadable file should not mute the source
		}
		contents[i] = data
	}

	var hints []evidence.Hint
	for _, cat := range s.catalogs {
		for _, set := range cat.Sets {
			pats := s.patterns(set)
			if len(pats) == 0 {
				continue
			}
			var matched int
			var samples []string
			for i, f := range files {
				if contents[i] == nil {
					continue
				}
				for _, p := range pats {
					if p.Match(contents[i]) {
						matched++
						if len(samples) < 4 {
							samples = append(samples, f)
						}
						break
					}
				}
			}
			if matched == 0 {
				continue
			}
			ratio := float64(matched) / float64(len(files))
			conf := s.base + s.slope*ratio
			if conf > s.ceiling {
				conf = s.ceiling
			}
			samples = append(samples, fmt.Sprintf("%d of %d sampled files", matched, len(files)))
			hints = append(hints, evidence.Hint{
				Source:     s.kind,
				Taxonomy:   cat.Taxonomy,
				Label:      set.Label,
				Confidence: evidence.Clamp01(conf),
				Evidence:   samples,
			})
		}
	}
	return hints, nil
}

const (
	importSampleCap    = 40
	importLeadingLines = 80

	usageSampleCap = 30
)

// NewImportScanner samples source files and matches each label's import
// patterns against their leading lines, where import statements live.
func NewImportScanner(catalogs []*taxonomy.Catalog) Scanner {
	return &sourceScan{
		kind:     evidence.SourceImportPattern,
		catalogs: catalogs,
		sample: func(t *Tree) []string {
			return sampleFiles(t, importSampleCap, isSourceFile)
		},
		read: func(t *Tree, rel string) ([]byte, error) {
			data, err := t.Read(rel, 0)
			if err != nil {
				return nil, err
			}
			return leadingLines(data, importLeadingLines), nil
		},
		patterns: func(set taxonomy.PatternSet) []*regexp.Regexp { return set.ImportPatterns },
		base:     0.25,
		slope:    0.60,
		ceiling:  0.85,
	}
}

// NewUsageScanner samples component-like files in full and matches each
// label's usage idioms. Usage is the only source that proves a library is
// exercised rather than merely installed, so its ceiling is the highest.
func NewUsageScanner(catalogs []*taxonomy.Catalog) Scanner {
	return &sourceScan{
		kind:     evidence.SourceUsagePattern,
		catalogs: catalogs,
		sample: func(t *Tree) []string {
			return sampleFiles(t, usageSampleCap, isComponentLike)
		},
		read: func(t *Tree, rel string) ([]byte, error) {
			return t.Read(rel, 0)
		},
		patterns: func(set taxonomy.PatternSet) []*regexp.Regexp { return set.UsagePatterns },
		base:     0.35,
		slope:    0.60,
		ceiling:  0.95,
	}
}

// sampleFiles takes the lexically-first tree paths passing the filter, up to
// cap. Lexical order keeps the sample identical between runs.
func sampleFiles(t *Tree, cap int, keep func(string) bool) []string {
	var out []string
	for _, f := range t.Files {
		if !keep(f) {
			continue
		}
		out = append(out, f)
		if len(out) >= cap {
			break
		}
	}
	return out
}

func isSourceFile(rel string) bool {
	_, ok := sourceExts[path.Ext(rel)]
	return ok
}

// isComponentLike picks files likely to contain component definitions: a
// capitalized basename, a single-file-component extension, or a home in a
// conventional UI directory.
func isComponentLike(rel string) bool {
	ext := path.Ext(rel)
	if ext == ".vue" || ext == ".svelte" {
		return true
	}
	if _, ok := sourceExts[ext]; !ok || ext == ".css" || ext == ".scss" {
		return false
	}
	base := path.Base(rel)
	if r := []rune(base); len(r) > 0 && unicode.IsUpper(r[0]) {
		return true
	}
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		switch seg {
		case "components", "pages", "app", "views", "layouts":
			return true
		}
	}
	return false
}

// leadingLines truncates data after n newline-terminated lines.
func leadingLines(data []byte, n int) []byte {
	idx := 0
	for i := 0; i < n; i++ {
		j := bytes.IndexByte(data[idx:], '\n')
		if j < 0 {
			return data
		}
		idx += j + 1
	}
	return data[:idx]
}
