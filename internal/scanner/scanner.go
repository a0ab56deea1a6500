// Package scanner turns a project tree into evidence hints. Five scanners
// cover the five evidence sources; each is a pure function of the tree and
// its pattern catalogs, so a re-run over an unchanged tree produces
// identical hints.
package scanner

import (
	"context"

	"uigen/internal/evidence"
	"uigen/internal/taxonomy"
)

// Scanner inspects a project tree for signals of one evidence source.
// Implementations never fail the detection: a scanner error means that one
// source contributes nothing, and the caller decides how loudly to log it.
type Scanner interface {
	Kind() evidence.SourceKind
	Scan(ctx context.Context, tree *Tree) ([]evidence.Hint, error)
}

// All assembles the full scanner set over the given catalogs, in canonical
// source order.
func All(fw, st *taxonomy.Catalog) []Scanner {
	catalogs := []*taxonomy.Catalog{fw, st}
	return []Scanner{
		NewManifestScanner(catalogs),
		NewConfigFileScanner(catalogs),
		NewStructureScanner(catalogs),
		NewImportScanner(catalogs),
		NewUsageScanner(catalogs),
	}
}
