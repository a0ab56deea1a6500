package scanner

import (
	"context"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

// A dedicated config file at the project root is the strongest single
// signal a scanner can see: nobody commits tailwind.config.js by accident.
const configFileConfidence = 0.9

// ConfigFileScanner looks for each label's canonical configuration files at
// the project root.
type ConfigFileScanner struct {
	catalogs []*taxonomy.Catalog
}

func NewConfigFileScanner(catalogs []*taxonomy.Catalog) *ConfigFileScanner {
	return &ConfigFileScanner{catalogs: catalogs}
}

func (s *ConfigFileScanner) Kind() evidence.SourceKind { return evidence.SourceConfigFile }

func (s *ConfigFileScanner) Scan(ctx context.Context, tree *Tree) ([]evidence.Hint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var hints []evidence.Hint
	for _, cat := range s.catalogs {
		for _, set := range cat.Sets {
			var found []string
			for _, name := range set.ConfigFiles {
				if tree.Has(name) {
					found = append(found, name)
				}
			}
			if len(found) == 0 {
				continue
			}
			hints = append(hints, evidence.Hint{
				Source:     evidence.SourceConfigFile,
				Taxonomy:   cat.Taxonomy,
				Label:      set.Label,
				Confidence: configFileConfidence,
				Evidence:   found,
			})
		}
	}
	return hints, nil
}
