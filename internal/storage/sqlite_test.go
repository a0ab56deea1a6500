package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"uigen/internal/detect"
	"uigen/internal/knowledge"
	"uigen/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SaveAnalysis_UpsertByRootAndHash(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	first := testAnalysis("/proj/web", "sha256:aaa", taxonomy.React, 0.8)
	require.NoError(t, store.SaveAnalysis(ctx, first))

	// Same root and manifest hash: the row refreshes instead of duplicating.
	second := testAnalysis("/proj/web", "sha256:aaa", taxonomy.Next, 0.9)
	require.NoError(t, store.SaveAnalysis(ctx, second))

	all, err := store.ListAnalyses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, taxonomy.Next, all[0].Decision.Framework.Label)
	assert.InDelta(t, 0.9, all[0].Decision.Confidence, 1e-9)
}

func TestSQLiteStore_LatestAnalysis_PicksNewestForRoot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.SaveAnalysis(ctx, testAnalysis("/proj/web", "sha256:aaa", taxonomy.React, 0.7)))
	require.NoError(t, store.SaveAnalysis(ctx, testAnalysis("/proj/other", "sha256:bbb", taxonomy.Vue, 0.8)))

	newest := testAnalysis("/proj/web", "sha256:ccc", taxonomy.Next, 0.9)
	newest.Head = "4f1c2ab"
	require.NoError(t, store.SaveAnalysis(ctx, newest))

	latest, err := store.LatestAnalysis(ctx, "/proj/web")
	require.NoError(t, err)
	assert.Equal(t, "sha256:ccc", latest.ManifestHash)
	assert.Equal(t, "4f1c2ab", latest.Head)
	assert.Equal(t, taxonomy.Next, latest.Decision.Framework.Label)
	assert.False(t, latest.CreatedAt.IsZero())
}

func TestSQLiteStore_LatestAnalysis_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LatestAnalysis(context.Background(), "/nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Components_RoundTripAndFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	older := &ComponentRecord{
		ID:   "run-1",
		Root: "/proj/web",
		Name: "UserCard",
		Request: knowledge.ComponentRequest{
			Name:        "UserCard",
			Description: "card with avatar and name",
			Props:       []string{"name", "avatarUrl"},
		},
		Files: []knowledge.ComponentFile{
			{Path: "src/components/UserCard.tsx", Content: "export function UserCard() {}"},
		},
		Quality:   0.85,
		Signals:   []string{"removed a forbidden styled-components import"},
		CreatedAt: base,
	}
	newer := &ComponentRecord{
		ID:        "run-2",
		Root:      "/proj/web",
		Name:      "NavBar",
		Request:   knowledge.ComponentRequest{Name: "NavBar", Description: "top navigation"},
		Files:     []knowledge.ComponentFile{{Path: "src/components/NavBar.tsx", Content: "export function NavBar() {}"}},
		Quality:   0.95,
		CreatedAt: base.Add(time.Minute),
	}
	elsewhere := &ComponentRecord{
		ID:        "run-3",
		Root:      "/proj/other",
		Name:      "Footer",
		Request:   knowledge.ComponentRequest{Name: "Footer", Description: "page footer"},
		Files:     []knowledge.ComponentFile{{Path: "src/Footer.vue", Content: "<template></template>"}},
		Quality:   0.9,
		CreatedAt: base.Add(2 * time.Minute),
	}
	for _, rec := range []*ComponentRecord{older, newer, elsewhere} {
		require.NoError(t, store.SaveComponent(ctx, rec))
	}

	webOnly, err := store.ListComponents(ctx, "/proj/web", 10)
	require.NoError(t, err)
	require.Len(t, webOnly, 2)
	assert.Equal(t, "NavBar", webOnly[0].Name)
	assert.Equal(t, "UserCard", webOnly[1].Name)

	got := webOnly[1]
	assert.Equal(t, older.Request.Props, got.Request.Props)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "src/components/UserCard.tsx", got.Files[0].Path)
	assert.Equal(t, older.Signals, got.Signals)
	assert.InDelta(t, 0.85, got.Quality, 1e-9)

	everything, err := store.ListComponents(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}

func testAnalysis(root, hash string, fw taxonomy.Label, conf float64) *Analysis {
	return &Analysis{
		Root:         root,
		ManifestHash: hash,
		Decision: &detect.Decision{
			SchemaVersion: detect.DecisionSchemaVersion,
			Root:          root,
			Framework:     detect.Pick{Label: fw, Confidence: conf},
			Styling:       detect.Pick{Label: taxonomy.Tailwind, Confidence: conf},
			Confidence:    conf,
		},
	}
}
