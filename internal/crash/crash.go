/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the process edge into a report file plus an
// autosave of the live drawing.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "freedraw/internal/log"
	"freedraw/internal/storage"
	"freedraw/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Source is the live document to rescue. *board.Board satisfies it.
type Source interface {
	ID() string
	Save() ([]byte, error)
}

// Recover captures a panic, logs it with the stack, writes crash-<stamp>.log
// into dir (the temp dir when empty), autosaves src as autosave-<stamp>.draw
// next to it and exits with code 2.
//
// Usage: defer crash.Recover(dataDir, b)
func Recover(dir string, src Source) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		if dir == "" {
			dir = os.TempDir()
		}
		stamp := time.Now().Format("20060102-150405")
		reportPath, err := writeReport(dir, stamp, src, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if src != nil {
			if path, err := autosave(dir, stamp, src); err != nil {
				l.Error("autosave failed", slog.Any("err", err))
			} else {
				l.Info("autosave written", slog.String("path", path))
				_, _ = fmt.Fprintf(os.Stderr, "Your drawing was autosaved to: %s\n", path)
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

// autosave saves src, itself guarding against a second panic from a
// document left inconsistent by the first.
func autosave(dir, stamp string, src Source) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("save panicked: %v", r)
		}
	}()
	data, err := src.Save()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("autosave-%s-%s", stamp, shortID(src.ID()))
	return storage.WriteDrawing(filepath.Join(dir, name), data, 1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeReport(dir, stamp string, src Source, panicVal any, stack []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "FreeDraw Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if src != nil {
		_, _ = fmt.Fprintf(&buf, "Session: %s\n", src.ID())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
