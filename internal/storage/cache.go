/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "reportstudio/internal/log"
	"reportstudio/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CacheDirName stores per-project ephemeral data under the project root.
	CacheDirName  = ".rst"
	CacheFileName = "cache.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded cache.
	schemaVersion = 1
)

// CachePath returns the full path to the project's embedded cache database.
func CachePath(projectRoot string) string {
	return filepath.Join(projectRoot, CacheDirName, CacheFileName)
}

// InitOrOpenCache ensures the per-project SQLite cache exists at
// .rst/cache.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version and previews tables exist. Callers close the returned *sql.DB
// when no longer needed.
func InitOrOpenCache(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "cache_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, CacheDirName), 0o755); err != nil {
		l.Error("create .rst dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .rst dir: %w", err)
	}

	path := CachePath(projectRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := ensureCacheSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure cache schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("cache ready", slog.String("path", path))
	return db, nil
}

func ensureCacheSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id     INTEGER PRIMARY KEY CHECK(id=1),
			schema INTEGER NOT NULL,
			app    TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			component_id TEXT PRIMARY KEY,
			data_blob    BLOB,
			size         INTEGER NOT NULL DEFAULT 0,
			updated_at   TEXT NOT NULL,
			last_access  INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure cache schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO version(id, schema, app) VALUES(1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET schema=excluded.schema, app=excluded.app`,
		schemaVersion, version.String())
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// GetPreviewBlob returns the cached preview payload for a component id and
// updates last_access. A missing entry is (nil, nil).
func GetPreviewBlob(ctx context.Context, projectRoot, componentID string) ([]byte, error) {
	db, err := InitOrOpenCache(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT data_blob FROM previews WHERE component_id=?`, componentID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE component_id=?`, time.Now().UnixNano(), componentID)
	return blob, nil
}

// PutPreviewBlob upserts a preview payload for a component id and enforces
// the cache size cap via LRU eviction.
func PutPreviewBlob(ctx context.Context, projectRoot, componentID string, blob []byte) error {
	db, err := InitOrOpenCache(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	if componentID == "" {
		return errors.New("component id is required")
	}
	now := time.Now()
	_, err = db.ExecContext(ctx, `INSERT INTO previews(component_id,data_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?)
		ON CONFLICT(component_id) DO UPDATE SET data_blob=excluded.data_blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		componentID, blob, len(blob), now.UTC().Format(time.RFC3339), now.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewBytesFromEnv(); capBytes > 0 {
		if err := evictPreviewsToFit(ctx, db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// DeletePreviewBlob drops the cached preview of a component (called when the
// component is deleted from the page).
func DeletePreviewBlob(ctx context.Context, projectRoot, componentID string) error {
	db, err := InitOrOpenCache(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, `DELETE FROM previews WHERE component_id=?`, componentID); err != nil {
		return fmt.Errorf("delete preview: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size.
func TotalPreviewBytes(ctx context.Context, projectRoot string) (int64, error) {
	db, err := InitOrOpenCache(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// evictPreviewsToFit deletes least-recently-used rows until the tracked total
// is at most capBytes.
func evictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := db.QueryContext(ctx, `SELECT component_id, size FROM previews ORDER BY last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []string
	cur := total
	for rows.Next() {
		var id string
		var sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE component_id IN (` + strings.TrimRight(strings.Repeat("?,", len(victims)), ",") + `)`
	args := make([]any, len(victims))
	for i, v := range victims {
		args[i] = v
	}
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// MaxPreviewBytesFromEnv reads RST_PREVIEWS_MAX_BYTES, defaulting to 64MB.
func MaxPreviewBytesFromEnv() int64 {
	v := os.Getenv("RST_PREVIEWS_MAX_BYTES")
	if v == "" {
		return 64 * 1024 * 1024
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 64 * 1024 * 1024
	}
	return n
}
