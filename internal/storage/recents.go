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
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	applog "freedraw/internal/log"
)

// Recent is one entry of the recently used drawings list.
type Recent struct {
	Path     string
	OpenedAt time.Time
	Strokes  int
	// Thumb is a PNG thumbnail of ThumbW x ThumbH pixels, nil if unknown.
	Thumb          []byte
	ThumbW, ThumbH int
}

// language=SQL
const upsertRecentSQL = `INSERT INTO recents(path, opened_at, strokes, w, h, thumb_blob)
	VALUES(?,?,?,?,?,?)
	ON CONFLICT(path) DO UPDATE SET opened_at=excluded.opened_at, strokes=excluded.strokes,
		w=excluded.w, h=excluded.h, thumb_blob=COALESCE(excluded.thumb_blob, recents.thumb_blob)`

// language=SQL
const listRecentsSQL = `SELECT path, opened_at, strokes, w, h, thumb_blob FROM recents
	ORDER BY opened_at DESC, path LIMIT ?`

// language=SQL
const pruneRecentsSQL = `DELETE FROM recents WHERE path NOT IN (
	SELECT path FROM recents ORDER BY opened_at DESC, path LIMIT ?)`

// RecordRecent upserts r into the index in dataDir. The path is stored
// absolute; a zero OpenedAt means now. A nil thumbnail keeps the old one.
func RecordRecent(ctx context.Context, dataDir string, r Recent) error {
	db, err := InitOrOpenIndex(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	p, err := filepath.Abs(r.Path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	at := r.OpenedAt
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := db.ExecContext(ctx, upsertRecentSQL, p, at.UTC().Format(time.RFC3339Nano), r.Strokes, r.ThumbW, r.ThumbH, r.Thumb); err != nil {
		return fmt.Errorf("record recent: %w", err)
	}
	applog.WithComponent("storage").DebugContext(ctx, "recent recorded", slog.Int("strokes", r.Strokes), slog.Bool("thumb", r.Thumb != nil))
	return nil
}

// ListRecents returns up to limit entries, most recently opened first.
func ListRecents(ctx context.Context, dataDir string, limit int) ([]Recent, error) {
	if limit <= 0 {
		limit = -1
	}
	db, err := InitOrOpenIndex(dataDir)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, listRecentsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recents: %w", err)
	}
	defer rows.Close()
	var out []Recent
	for rows.Next() {
		var r Recent
		var at string
		if err := rows.Scan(&r.Path, &at, &r.Strokes, &r.ThumbW, &r.ThumbH, &r.Thumb); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			r.OpenedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneRecents keeps only the keep most recent entries and reports how many
// were removed.
func PruneRecents(ctx context.Context, dataDir string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	db, err := InitOrOpenIndex(dataDir)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	res, err := db.ExecContext(ctx, pruneRecentsSQL, keep)
	if err != nil {
		return 0, fmt.Errorf("prune recents: %w", err)
	}
	return res.RowsAffected()
}

// ForgetRecent removes path from the index, e.g. after the file vanished.
func ForgetRecent(ctx context.Context, dataDir, path string) error {
	db, err := InitOrOpenIndex(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	p, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM recents WHERE path=?`, p); err != nil {
		return fmt.Errorf("forget recent: %w", err)
	}
	return nil
}
