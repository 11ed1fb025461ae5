package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key TEXT PRIMARY KEY,
    domain TEXT NOT NULL,
    mesh_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    snapshot_id TEXT NOT NULL DEFAULT '',
    etag TEXT NOT NULL DEFAULT '',
    extra TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_mesh ON snapshots(mesh_id);
`

// SQLiteStore keeps one row per Ref in a sqlite database.
type SQLiteStore[T any] struct {
	conn *sql.DB
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore[T any](path string) (*SQLiteStore[T], error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("init schema: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore[T]{conn: conn}, nil
}

// Close closes the database connection.
func (s *SQLiteStore[T]) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	var (
		payload, extra string
		updatedAt      int64
		meta           Meta
	)
	err = s.conn.QueryRowContext(ctx,
		`SELECT payload, snapshot_id, etag, extra, updated_at FROM snapshots WHERE key = ?`, key,
	).Scan(&payload, &meta.SnapshotID, &meta.ETag, &extra, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, Meta{}, false, nil
	}
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("query %s: %w", key, err)
	}

	var snapshot T
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return zero, Meta{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if extra != "" {
		if err := json.Unmarshal([]byte(extra), &meta.Extra); err != nil {
			return zero, Meta{}, false, fmt.Errorf("decode %s extra: %w", key, err)
		}
	}
	if updatedAt != 0 {
		meta.UpdatedAt = time.Unix(0, updatedAt).UTC()
	}
	return snapshot, meta, true, nil
}

func (s *SQLiteStore[T]) Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Meta{}, fmt.Errorf("encode %s: %w", key, err)
	}
	var extra []byte
	if len(meta.Extra) > 0 {
		if extra, err = json.Marshal(meta.Extra); err != nil {
			return Meta{}, fmt.Errorf("encode %s extra: %w", key, err)
		}
	}
	var updatedAt int64
	if !meta.UpdatedAt.IsZero() {
		updatedAt = meta.UpdatedAt.UnixNano()
	}

	_, err = s.conn.ExecContext(ctx, `
INSERT INTO snapshots (key, domain, mesh_id, payload, snapshot_id, etag, extra, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    payload = excluded.payload,
    snapshot_id = excluded.snapshot_id,
    etag = excluded.etag,
    extra = excluded.extra,
    updated_at = excluded.updated_at`,
		key, ref.Domain, ref.MeshID, string(payload), meta.SnapshotID, meta.ETag, string(extra), updatedAt,
	)
	if err != nil {
		return Meta{}, fmt.Errorf("upsert %s: %w", key, err)
	}
	return cloneMeta(meta), nil
}

// Meshes lists the mesh ids stored under domain.
func (s *SQLiteStore[T]) Meshes(ctx context.Context, domain string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT mesh_id FROM snapshots WHERE domain = ? ORDER BY mesh_id`, domain)
	if err != nil {
		return nil, fmt.Errorf("query meshes: %w", err)
	}
	defer rows.Close()

	var meshes []string
	for rows.Next() {
		var mesh string
		if err := rows.Scan(&mesh); err != nil {
			return nil, fmt.Errorf("scan mesh: %w", err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, rows.Err()
}
