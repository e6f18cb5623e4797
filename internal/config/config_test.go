/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	applog "freedraw/internal/log"
)

// isolate points the config file into a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfig, p)
	for _, k := range []string{EnvStrokeWidth, EnvCloseThreshold, EnvDataDir, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Drawing.StrokeWidth != 2 || cfg.Drawing.CloseThreshold != 10 || cfg.Drawing.OutlineColor != "#000000" {
		t.Fatalf("unexpected drawing defaults: %#v", cfg.Drawing)
	}
}

func TestEnvOverridesDrawing(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStrokeWidth, "4.5")
	t.Setenv(EnvCloseThreshold, "bogus")
	t.Setenv(EnvDataDir, "/tmp/fd-data")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Drawing.StrokeWidth != 4.5 {
		t.Fatalf("StrokeWidth = %v, want 4.5", cfg.Drawing.StrokeWidth)
	}
	if cfg.Drawing.CloseThreshold != 10 {
		t.Fatalf("bad env value should be ignored, got %v", cfg.Drawing.CloseThreshold)
	}
	if dir, _ := cfg.Storage.ResolveDataDir(); dir != "/tmp/fd-data" {
		t.Fatalf("data dir = %q", dir)
	}
	if env, ok := EnvOverrideFor("drawing.stroke_width"); !ok || env != EnvStrokeWidth {
		t.Fatalf("EnvOverrideFor stroke_width = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("drawing.width"); ok {
		t.Fatalf("drawing.width has no env override")
	}
}

func TestEntriesMarkEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	seen := map[string]Entry{}
	for _, e := range cfg.Entries() {
		seen[e.Key] = e
	}
	if e := seen["logging.level"]; e.Value != "debug" || e.Env != EnvLogLevel {
		t.Fatalf("logging.level entry = %+v", e)
	}
	if e := seen["drawing.close_threshold"]; e.Value != "10" || e.Env != "" {
		t.Fatalf("close_threshold entry = %+v", e)
	}
	if len(seen) != 16 {
		t.Fatalf("expected 16 settings, got %d", len(seen))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Drawing.DefaultFill = "tomato"
	cfg.Drawing.Width = 1024
	cfg.Storage.KeepBackups = 9
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Drawing.DefaultFill != "tomato" || got.Drawing.Width != 1024 || got.Storage.KeepBackups != 9 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	p := isolate(t)
	if err := os.WriteFile(p, []byte("drawing: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := os.WriteFile(p, []byte("drawing:\n  outline_color: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for bad outline color")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/fd.log"
	src.Logging.MaxBackups = 7
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/fd.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	if o := dst.Logging.LogOptions(); o.Rotate.MaxBackups != 7 || o.File != "C:/tmp/fd.log" {
		t.Fatalf("log options: %#v", o)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/fd.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/fd.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestDrawingStyle(t *testing.T) {
	st := Defaults().Drawing.Style()
	if st.StrokeWidth != 2 || st.CloseThreshold != 10 || st.OutlineColor != "#000000" {
		t.Fatalf("style: %#v", st)
	}
}

func TestLoggingSectionReachesLogger(t *testing.T) {
	p := isolate(t)
	logFile := filepath.Join(t.TempDir(), "fd.log")
	yaml := "logging:\n  level: debug\n  format: json\n  file: " + logFile + "\n  max_size_mb: 3\n  max_backups: 9\n"
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	opts := cfg.Logging.LogOptions()
	if opts.File != logFile || opts.Level != "debug" || opts.Format != "json" {
		t.Fatalf("options = %+v", opts)
	}
	// max_age_days keeps its default
	want := applog.Rotate{MaxSizeMB: 3, MaxBackups: 9, MaxAgeDays: Defaults().Logging.MaxAgeDays}
	if opts.Rotate != want {
		t.Fatalf("rotate = %+v, want %+v", opts.Rotate, want)
	}

	applog.Init(opts)
	t.Cleanup(func() { applog.Init(applog.Options{Level: "error"}) })
	applog.WithComponent("config").Debug("configured from yaml")
	b, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"configured from yaml"`) {
		t.Fatalf("debug record missing from file: %s", b)
	}
}
