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

	applog "pixelgallery/internal/log"
	"pixelgallery/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	PrefsFileName = "prefs.sqlite"
	// MaxSidKey stores the highest item id ever allocated.
	MaxSidKey = "maxSid"

	prefsSchemaVersion = 1
)

// Prefs is the small key-value preference store of a gallery.
type Prefs struct {
	db *sql.DB
}

// PrefsPath returns <root>/.pixelgallery/prefs.sqlite.
func PrefsPath(root string) string {
	return filepath.Join(root, StateDirName, PrefsFileName)
}

// OpenPrefs opens (creating if needed) the preference store of the gallery at root.
func OpenPrefs(root string) (*Prefs, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "prefs_open").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		l.Error("create state dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := PrefsPath(root)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
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
	if err := ensurePrefsSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure prefs schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("prefs ready", slog.String("path", path))
	return &Prefs{db: db}, nil
}

func ensurePrefsSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS prefs (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			prefsSchemaVersion, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (p *Prefs) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Int returns the integer stored under key, or def when the key is absent.
func (p *Prefs) Int(ctx context.Context, key string, def int) (int, error) {
	v, ok, err := lookupInt(ctx, p.db, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetInt stores v under key.
func (p *Prefs) SetInt(ctx context.Context, key string, v int) error {
	return upsertInt(ctx, p.db, key, v)
}

// MaxSid returns the persisted upper bound of the id space, 0 when unset.
func (p *Prefs) MaxSid(ctx context.Context) (int, error) {
	return p.Int(ctx, MaxSidKey, 0)
}

// NextID allocates a fresh item id: 0 for an empty gallery, maxSid+1 otherwise.
// The new value is persisted before it is returned.
func (p *Prefs) NextID(ctx context.Context) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	cur, ok, err := lookupInt(ctx, tx, MaxSidKey)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	next := 0
	if ok {
		next = cur + 1
	}
	if err := upsertInt(ctx, tx, MaxSidKey, next); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func lookupInt(ctx context.Context, q queryer, key string) (int, bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key=?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read pref %s: %w", key, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, fmt.Errorf("pref %s is not an integer: %w", key, err)
	}
	return n, true, nil
}

func upsertInt(ctx context.Context, q queryer, key string, v int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := q.ExecContext(ctx, `INSERT INTO prefs(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, strconv.Itoa(v), now)
	if err != nil {
		return fmt.Errorf("write pref %s: %w", key, err)
	}
	return nil
}
