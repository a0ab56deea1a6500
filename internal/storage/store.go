// Package storage persists detection decisions and generated components, so
// repeated runs against an unchanged project can reuse earlier answers and
// the CLI can show history.
package storage

import (
	"context"
	"errors"
	"time"

	"uigen/internal/detect"
	"uigen/internal/knowledge"
)

// ErrNotFound is returned when a lookup matches no stored record.
var ErrNotFound = errors.New("storage: not found")

// Store combines analysis history and component persistence capabilities.
type Store interface {
	AnalysisStore
	ComponentStore
	Close() error
}

// Analysis is one persisted detection run, keyed by project root and the
// manifest hash current at detection time. Head records the commit the tree
// was on, when available, so later runs can check for drift.
type Analysis struct {
	ID           int64            `json:"id"`
	Root         string           `json:"root"`
	ManifestHash string           `json:"manifest_hash"`
	Head         string           `json:"head,omitempty"`
	Decision     *detect.Decision `json:"decision"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// AnalysisStore defines operations for persisting detection decisions.
type AnalysisStore interface {
	// SaveAnalysis upserts the decision for (root, manifest hash). A rerun
	// on an unchanged manifest refreshes the existing row.
	SaveAnalysis(ctx context.Context, a *Analysis) error

	// LatestAnalysis returns the newest analysis for a project root, or
	// ErrNotFound.
	LatestAnalysis(ctx context.Context, root string) (*Analysis, error)

	// ListAnalyses returns recent analyses across all roots, newest first.
	ListAnalyses(ctx context.Context, limit int) ([]*Analysis, error)
}

// ComponentRecord is one persisted generation result.
type ComponentRecord struct {
	ID        string                     `json:"id"`
	Root      string                     `json:"root"`
	Name      string                     `json:"name"`
	Request   knowledge.ComponentRequest `json:"request"`
	Files     []knowledge.ComponentFile  `json:"files"`
	Quality   float64                    `json:"quality"`
	Signals   []string                   `json:"signals,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// ComponentStore defines operations for persisting generated components.
type ComponentStore interface {
	// SaveComponent records one generation run.
	SaveComponent(ctx context.Context, rec *ComponentRecord) error

	// ListComponents returns a root's generated components, newest first.
	// An empty root lists across all projects.
	ListComponents(ctx context.Context, root string, limit int) ([]*ComponentRecord, error)
}
