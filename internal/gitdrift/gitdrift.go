// Package gitdrift answers whether the files a stored analysis was based on
// have changed in git since the analysis ran. It shells out to the git
// binary; anything that prevents an answer (no git, not a repository, an
// unknown ref) degrades to unknown drift rather than an error.
package gitdrift

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"uigen/internal/logging"
	"uigen/internal/taxonomy"
)

// State says how much is known about drift.
type State string

const (
	// StateUnknown means git could not answer; callers treat the cached
	// analysis as possibly stale, not as wrong.
	StateUnknown State = "unknown"

	// StateClean means nothing the detector reads has changed.
	StateClean State = "clean"

	// StateDrifted means at least one watched path changed.
	StateDrifted State = "drifted"
)

// Drift classifies what changed between a recorded ref and the working
// tree. Only paths the detector actually reads count: the manifest,
// registered config files, and source files.
type Drift struct {
	State    State    `json:"state"`
	Manifest bool     `json:"manifest"`
	Config   bool     `json:"config"`
	Source   bool     `json:"source"`
	Paths    []string `json:"paths,omitempty"`
}

// maxPaths caps how many changed paths a Drift carries; past that the count
// no longer changes the answer.
const maxPaths = 24

// sourceExts mirrors the file types the source scanners sample.
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

// Checker classifies git-reported changes using the same config-file
// catalogs the scanners run on.
type Checker struct {
	catalogs []*taxonomy.Catalog
	log      *slog.Logger
	run      func(ctx context.Context, root string, args ...string) ([]byte, error)
}

// New builds a Checker over the given pattern catalogs.
func New(catalogs ...*taxonomy.Catalog) *Checker {
	return &Checker{
		catalogs: catalogs,
		log:      logging.New("gitdrift"),
		run:      runGit,
	}
}

func runGit(ctx context.Context, root string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", root}, args...)...)
	return cmd.Output()
}

// Head returns the commit the working tree is on, or "" when root is not a
// git repository or git is unavailable.
func (c *Checker) Head(ctx context.Context, root string) string {
	out, err := c.run(ctx, root, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Since reports what changed between ref (typically the commit recorded
// with an analysis) and the current working tree, untracked files included.
func (c *Checker) Since(ctx context.Context, root, ref string) Drift {
	if strings.TrimSpace(ref) == "" {
		return Drift{State: StateUnknown}
	}

	diff, err := c.run(ctx, root, "diff", "--name-only", ref)
	if err != nil {
		c.log.Debug("git diff unavailable", "root", root, "ref", ref, "error", err)
		return Drift{State: StateUnknown}
	}
	changed := splitLines(diff)
	if untracked, uerr := c.run(ctx, root, "ls-files", "--others", "--exclude-standard"); uerr == nil {
		changed = append(changed, splitLines(untracked)...)
	}

	d := Drift{State: StateClean}
	for _, p := range changed {
		manifest, config, source := c.classify(p)
		if !manifest && !config && !source {
			continue
		}
		d.Manifest = d.Manifest || manifest
		d.Config = d.Config || config
		d.Source = d.Source || source
		if len(d.Paths) < maxPaths {
			d.Paths = append(d.Paths, p)
		}
	}
	if d.Manifest || d.Config || d.Source {
		d.State = StateDrifted
	}
	return d
}

func (c *Checker) classify(p string) (manifest, config, source bool) {
	base := path.Base(p)
	if base == "package.json" {
		return true, false, false
	}
	for _, cat := range c.catalogs {
		for _, set := range cat.Sets {
			for _, glob := range set.ConfigFiles {
				if ok, _ := doublestar.Match(glob, base); ok {
					return false, true, false
				}
			}
		}
	}
	if _, ok := sourceExts[path.Ext(base)]; ok {
		return false, false, true
	}
	return false, false, false
}

func splitLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
