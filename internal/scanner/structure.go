package scanner

import (
	"context"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

const (
	// Directory conventions are circumstantial, so each matched glob adds
	// a small step and the total stays well below the trustable range.
	structurePerGlob = 0.2
	structureCeiling = 0.6

	// structureSample caps how many matching paths a glob contributes to
	// the evidence list.
	structureSample = 3
)

// StructureScanner matches each label's directory and file-layout
// conventions against the project tree.
type StructureScanner struct {
	catalogs []*taxonomy.Catalog
}

func NewStructureScanner(catalogs []*taxonomy.Catalog) *StructureScanner {
	return &StructureScanner{catalogs: catalogs}
}

func (s *StructureScanner) Kind() evidence.SourceKind { return evidence.SourceFileStructure }

func (s *StructureScanner) Scan(ctx context.Context, tree *Tree) ([]evidence.Hint, error) {
	var hints []evidence.Hint
	for _, cat := range s.catalogs {
		for _, set := range cat.Sets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var matchedGlobs int
			var samples []string
			for _, glob := range set.StructureGlobs {
				paths := tree.Match(glob, structureSample)
				if len(paths) == 0 {
					continue
				}
				matchedGlobs++
				samples = append(samples, paths...)
			}
			if matchedGlobs == 0 {
				continue
			}
			conf := structurePerGlob * float64(matchedGlobs)
			if conf > structureCeiling {
				conf = structureCeiling
			}
			hints = append(hints, evidence.Hint{
				Source:     evidence.SourceFileStructure,
				Taxonomy:   cat.Taxonomy,
				Label:      set.Label,
				Confidence: evidence.Clamp01(conf),
				Evidence:   samples,
			})
		}
	}
	return hints, nil
}
