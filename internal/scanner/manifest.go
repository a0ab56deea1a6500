package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

const (
	manifestFile     = "package.json"
	maxManifestBytes = 512 * 1024

	// A declared dependency starts at 0.3 and gains 0.25 per matching
	// package, capped below certainty: declared is not used.
	manifestBase    = 0.3
	manifestPerPkg  = 0.25
	manifestCeiling = 0.9
)

// ManifestScanner reads the project manifest and matches declared
// dependencies against each catalog's package lists.
type ManifestScanner struct {
	catalogs []*taxonomy.Catalog
}

func NewManifestScanner(catalogs []*taxonomy.Catalog) *ManifestScanner {
	return &ManifestScanner{catalogs: catalogs}
}

func (s *ManifestScanner) Kind() evidence.SourceKind { return evidence.SourceManifest }

func (s *ManifestScanner) Scan(ctx context.Context, tree *Tree) ([]evidence.Hint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !tree.Has(manifestFile) {
		return nil, nil
	}
	data, err := tree.Read(manifestFile, maxManifestBytes)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestFile, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s is not valid JSON", manifestFile)
	}

	deps := declaredDependencies(data)
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var hints []evidence.Hint
	for _, cat := range s.catalogs {
		labelHints := map[taxonomy.Label]int{}
		for _, set := range cat.Sets {
			var matched []string
			for _, want := range set.Packages {
				matched = append(matched, matchPackages(names, deps, want)...)
			}
			if len(matched) == 0 {
				continue
			}
			conf := manifestBase + manifestPerPkg*float64(len(matched))
			if conf > manifestCeiling {
				conf = manifestCeiling
			}
			labelHints[set.Label] = len(hints)
			hints = append(hints, evidence.Hint{
				Source:     evidence.SourceManifest,
				Taxonomy:   cat.Taxonomy,
				Label:      set.Label,
				Confidence: evidence.Clamp01(conf),
				Evidence:   matched,
			})
		}
		annotateCompetingKits(cat, labelHints, hints)
	}
	return hints, nil
}

// declaredDependencies flattens the manifest dependency sections into one
// name→version map.
func declaredDependencies(data []byte) map[string]string {
	deps := make(map[string]string)
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		gjson.GetBytes(data, section).ForEach(func(key, value gjson.Result) bool {
			deps[key.String()] = value.String()
			return true
		})
	}
	return deps
}

// matchPackages resolves one catalog package entry against the sorted
// dependency names. A trailing '*' matches by prefix.
func matchPackages(names []string, deps map[string]string, want string) []string {
	var out []string
	if prefix, ok := strings.CutSuffix(want, "*"); ok {
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				out = append(out, manifestFile+": "+name+"@"+deps[name])
			}
		}
		return out
	}
	if ver, ok := deps[want]; ok {
		out = append(out, manifestFile+": "+want+"@"+ver)
	}
	return out
}

// annotateCompetingKits marks manifest hints for exclusive UI kits that are
// declared side by side, so the conflict stage can show the user where the
// contradiction started.
func annotateCompetingKits(cat *taxonomy.Catalog, labelHints map[taxonomy.Label]int, hints []evidence.Hint) {
	var present []taxonomy.Label
	for _, kit := range cat.ExclusiveKits {
		if _, ok := labelHints[kit]; ok {
			present = append(present, kit)
		}
	}
	if len(present) < 2 {
		return
	}
	for _, kit := range present {
		others := make([]string, 0, len(present)-1)
		for _, o := range present {
			if o != kit {
				others = append(others, string(o))
			}
		}
		idx := labelHints[kit]
		hints[idx].Evidence = append(hints[idx].Evidence,
			manifestFile+" also declares competing kit(s): "+strings.Join(others, ", "))
	}
}
