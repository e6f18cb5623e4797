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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestIndexInitCreatesWALAndMetaVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','recents')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 3 {
		t.Fatalf("expected 3 tables, got %d", cnt)
	}
	var schema int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema: got %d want %d", schema, schemaVersion)
	}
}

func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	dir := t.TempDir()
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(IndexPath(dir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE recents (path TEXT PRIMARY KEY, opened_at TEXT NOT NULL, strokes INTEGER NOT NULL DEFAULT 0, thumb_blob BLOB);`,
		`INSERT INTO recents(path, opened_at, strokes) VALUES('/old.draw', '2020-01-01T00:00:00Z', 3);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	list, err := ListRecents(ctx, dir, 10)
	if err != nil {
		t.Fatalf("ListRecents after migration: %v", err)
	}
	if len(list) != 1 || list[0].Path != "/old.draw" || list[0].Strokes != 3 || list[0].ThumbW != 0 {
		t.Fatalf("unexpected rows: %+v", list)
	}
	mdb, err := InitOrOpenIndex(dir)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer mdb.Close()
	var schema int
	if err := mdb.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", schema)
	}
}
