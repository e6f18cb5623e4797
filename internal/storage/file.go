/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"freedraw/internal/codec"
	applog "freedraw/internal/log"
)

const (
	BackupsDirName = ".draw-backups"
	// MaxFileSize bounds what ReadDrawing accepts.
	MaxFileSize = 256 << 20
	// DefaultKeepBackups is used when WriteDrawing gets keep <= 0.
	DefaultKeepBackups = 5
)

// ErrTooLarge is returned by ReadDrawing for files above MaxFileSize.
var ErrTooLarge = errors.New("file too large")

// WithExt appends the .draw extension unless path already has it.
func WithExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), codec.Ext) {
		return path
	}
	return path + codec.Ext
}

// WriteDrawing stores data at path (the .draw extension is added if
// missing) and returns the final path. An existing file is copied into
// <dir>/.draw-backups first; only the newest keep backups of that file
// survive.
func WriteDrawing(path string, data []byte, keep int) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is required")
	}
	if keep <= 0 {
		keep = DefaultKeepBackups
	}
	path = WithExt(path)
	l := applog.WithOperation(applog.WithComponent("storage"), "write").With(slog.String("path", path))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if err := copyFile(path, bpath); err != nil {
			return "", fmt.Errorf("backup current drawing: %w", err)
		}
		if err := pruneBackups(bdir, filepath.Base(path), keep); err != nil {
			l.Warn("prune backups failed", slog.Any("err", err))
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return "", fmt.Errorf("write temp drawing: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return "", fmt.Errorf("replace drawing: %w", err)
	}
	l.Debug("drawing written", slog.Int("bytes", len(data)))
	return path, nil
}

// ReadDrawing returns the raw bytes of a drawing file.
func ReadDrawing(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read drawing: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	return data, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// ReadLatestValid returns the content of path if it decodes, otherwise the
// newest backup that does. The returned string names the file used.
func ReadLatestValid(path string) ([]byte, string, error) {
	data, err := ReadDrawing(path)
	if err == nil {
		if _, err = codec.Decode(data); err == nil {
			return data, path, nil
		}
	}
	backups, berr := Backups(path)
	if berr != nil {
		return nil, "", fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	for i := len(backups) - 1; i >= 0; i-- {
		b, rerr := ReadDrawing(backups[i])
		if rerr != nil {
			continue
		}
		if _, derr := codec.Decode(b); derr == nil {
			return b, backups[i], nil
		}
	}
	return nil, "", fmt.Errorf("%w; no usable backup", err)
}

func pruneBackups(bdir, base string, keep int) error {
	all, err := Backups(filepath.Join(filepath.Dir(bdir), base))
	if err != nil {
		return err
	}
	for len(all) > keep {
		if err := os.Remove(all[0]); err != nil {
			return err
		}
		all = all[1:]
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
