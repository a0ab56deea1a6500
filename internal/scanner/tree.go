package scanner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoredDirs are pruned during the walk. Build output and dependency trees
// would otherwise dominate the sample and skew every density signal.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"out":          {},
	"coverage":     {},
	"vendor":       {},
	".next":        {},
	".nuxt":        {},
	".svelte-kit":  {},
	".angular":     {},
	".turbo":       {},
	".cache":       {},
}

const (
	// maxTreeFiles bounds how many paths a walk records. Projects larger
	// than this still classify fine from the lexically-first slice.
	maxTreeFiles = 5000

	// maxFileBytes caps how much of any sampled source file is read.
	maxFileBytes = 64 * 1024
)

// Tree is a bounded snapshot of a project's file paths, taken once and
// shared by every scanner. Paths are slash-separated, relative to Root, and
// sorted, so anything derived from the tree is order-stable.
type Tree struct {
	Root  string
	Files []string
}

// BuildTree walks the project root, pruning ignored directories and
// recording up to maxTreeFiles relative paths.
func BuildTree(root string) (*Tree, error) {
	t := &Tree{Root: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable entries inside the tree are skipped
		}
		if d.IsDir() {
			if _, skip := ignoredDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		t.Files = append(t.Files, filepath.ToSlash(rel))
		if len(t.Files) >= maxTreeFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(t.Files)
	return t, nil
}

// Has reports whether an exact relative path exists in the tree.
func (t *Tree) Has(rel string) bool {
	i := sort.SearchStrings(t.Files, rel)
	return i < len(t.Files) && t.Files[i] == rel
}

// Match returns the tree paths matching a pattern, up to limit. A pattern
// without glob metacharacters matches the exact file or any file under a
// directory of that name.
func (t *Tree) Match(pattern string, limit int) []string {
	var out []string
	literal := !strings.ContainsAny(pattern, "*?[{")
	for _, f := range t.Files {
		var ok bool
		if literal {
			ok = f == pattern || strings.HasPrefix(f, pattern+"/")
		} else {
			ok, _ = doublestar.Match(pattern, f)
		}
		if ok {
			out = append(out, f)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Read returns up to limit bytes of a file in the tree. Zero limit uses the
// default per-file cap.
func (t *Tree) Read(rel string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxFileBytes
	}
	f, err := os.Open(filepath.Join(t.Root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, err
	}
	return data, nil
}
