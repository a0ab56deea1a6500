package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"uigen/internal/detect"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			manifest_hash TEXT NOT NULL,
			head TEXT NOT NULL DEFAULT '',
			decision JSON NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (root, manifest_hash)
		);`,
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			name TEXT NOT NULL,
			request JSON NOT NULL,
			files JSON NOT NULL,
			quality REAL NOT NULL,
			signals JSON,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_root ON analyses(root, updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_components_root ON components(root, created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- AnalysisStore Implementation ---

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *Analysis) error {
	if a.Decision == nil {
		return errors.New("analysis has no decision")
	}
	decision, err := json.Marshal(a.Decision)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (root, manifest_hash, head, decision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(root, manifest_hash) DO UPDATE SET
			head=excluded.head,
			decision=excluded.decision,
			updated_at=excluded.updated_at
	`, a.Root, a.ManifestHash, a.Head, decision, a.CreatedAt, a.UpdatedAt)

	return err
}

func (s *SQLiteStore) LatestAnalysis(ctx context.Context, root string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, manifest_hash, head, decision, created_at, updated_at
		FROM analyses WHERE root = ?
		ORDER BY updated_at DESC, id DESC LIMIT 1
	`, root)

	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no analysis for %s", ErrNotFound, root)
	}
	return a, err
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, manifest_hash, head, decision, created_at, updated_at
		FROM analyses
		ORDER BY updated_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(scan func(dest ...any) error) (*Analysis, error) {
	var (
		a        Analysis
		decision []byte
	)
	if err := scan(&a.ID, &a.Root, &a.ManifestHash, &a.Head, &decision, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Decision = &detect.Decision{}
	if err := json.Unmarshal(decision, a.Decision); err != nil {
		return nil, fmt.Errorf("unmarshal stored decision: %w", err)
	}
	return &a, nil
}

// --- ComponentStore Implementation ---

func (s *SQLiteStore) SaveComponent(ctx context.Context, rec *ComponentRecord) error {
	request, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	files, err := json.Marshal(rec.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	signals, err := json.Marshal(rec.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO components (id, root, name, request, files, quality, signals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root=excluded.root,
			name=excluded.name,
			request=excluded.request,
			files=excluded.files,
			quality=excluded.quality,
			signals=excluded.signals
	`, rec.ID, rec.Root, rec.Name, request, files, rec.Quality, signals, rec.CreatedAt)

	return err
}

func (s *SQLiteStore) ListComponents(ctx context.Context, root string, limit int) ([]*ComponentRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, root, name, request, files, quality, signals, created_at
		FROM components
	`
	args := []any{}
	if root != "" {
		query += ` WHERE root = ?`
		args = append(args, root)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ComponentRecord
	for rows.Next() {
		var (
			rec     ComponentRecord
			request []byte
			files   []byte
			signals []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Root, &rec.Name, &request, &files, &rec.Quality, &signals, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(request, &rec.Request); err != nil {
			return nil, fmt.Errorf("unmarshal stored request: %w", err)
		}
		if err := json.Unmarshal(files, &rec.Files); err != nil {
			return nil, fmt.Errorf("unmarshal stored files: %w", err)
		}
		if len(signals) > 0 {
			_ = json.Unmarshal(signals, &rec.Signals)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
