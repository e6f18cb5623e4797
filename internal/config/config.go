/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"freedraw/internal/geom"
	applog "freedraw/internal/log"
	"freedraw/internal/render"
	"freedraw/internal/surface"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type DrawingConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	StrokeWidth    float64 `yaml:"stroke_width"`
	OutlineColor   string  `yaml:"outline_color"`
	CloseThreshold float64 `yaml:"close_threshold"`
	DefaultFill    string  `yaml:"default_fill"`
}

type StorageConfig struct {
	// DataDir holds the recents index, crash reports and autosaves. Empty
	// means the per-OS default from DefaultDataDir.
	DataDir      string `yaml:"data_dir"`
	KeepBackups  int    `yaml:"keep_backups"`
	RecentsLimit int    `yaml:"recents_limit"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Drawing       DrawingConfig `yaml:"drawing"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Drawing: DrawingConfig{
			Width:          800,
			Height:         600,
			StrokeWidth:    render.DefaultStrokeWidth,
			OutlineColor:   render.DefaultOutlineColor,
			CloseThreshold: geom.CloseThreshold,
			DefaultFill:    "#000000",
		},
		Storage: StorageConfig{KeepBackups: 5, RecentsLimit: 20},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfig         = "FD_CONFIG"
	EnvStrokeWidth    = "FD_STROKE_WIDTH"
	EnvCloseThreshold = "FD_CLOSE_THRESHOLD"
	EnvDataDir        = "FD_DATA_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

func userBase() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "FreeDraw")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "FreeDraw")
	default:
		return ""
	}
}

// ConfigPath returns the per-user config file path. FD_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	base := userBase()
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "freedraw")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() (string, error) {
	base := userBase()
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve data directory")
		}
		if x := os.Getenv("XDG_DATA_HOME"); x != "" {
			return filepath.Join(x, "freedraw"), nil
		}
		base = filepath.Join(home, ".local", "share", "freedraw")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A file that exists but does not parse is an error.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports settings no component could work with.
func (c AppConfig) Validate() error {
	d := c.Drawing
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("drawing size %dx%d must be positive", d.Width, d.Height)
	}
	if d.StrokeWidth <= 0 {
		return fmt.Errorf("stroke_width %v must be positive", d.StrokeWidth)
	}
	if d.CloseThreshold <= 0 {
		return fmt.Errorf("close_threshold %v must be positive", d.CloseThreshold)
	}
	if _, err := surface.ParseColor(d.OutlineColor); err != nil {
		return fmt.Errorf("outline_color: %w", err)
	}
	if _, err := surface.ParseColor(d.DefaultFill); err != nil {
		return fmt.Errorf("default_fill: %w", err)
	}
	return nil
}

// Style returns the renderer style configured in the drawing section.
func (d DrawingConfig) Style() render.Style {
	return render.Style{StrokeWidth: d.StrokeWidth, OutlineColor: d.OutlineColor, CloseThreshold: d.CloseThreshold}
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     l.Level,
		Format:    l.Format,
		AddSource: l.Source,
		File:      l.File,
		Rotate:    applog.Rotate{MaxSizeMB: l.MaxSizeMB, MaxBackups: l.MaxBackups, MaxAgeDays: l.MaxAgeDays},
	}
}

// ResolveDataDir returns the configured data dir or the per-OS default.
func (s StorageConfig) ResolveDataDir() (string, error) {
	if d := strings.TrimSpace(s.DataDir); d != "" {
		return d, nil
	}
	return DefaultDataDir()
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// drawing
	if src.Drawing.Width > 0 {
		dst.Drawing.Width = src.Drawing.Width
	}
	if src.Drawing.Height > 0 {
		dst.Drawing.Height = src.Drawing.Height
	}
	if src.Drawing.StrokeWidth > 0 {
		dst.Drawing.StrokeWidth = src.Drawing.StrokeWidth
	}
	if strings.TrimSpace(src.Drawing.OutlineColor) != "" {
		dst.Drawing.OutlineColor = strings.TrimSpace(src.Drawing.OutlineColor)
	}
	if src.Drawing.CloseThreshold > 0 {
		dst.Drawing.CloseThreshold = src.Drawing.CloseThreshold
	}
	if strings.TrimSpace(src.Drawing.DefaultFill) != "" {
		dst.Drawing.DefaultFill = strings.TrimSpace(src.Drawing.DefaultFill)
	}
	// storage
	if strings.TrimSpace(src.Storage.DataDir) != "" {
		dst.Storage.DataDir = strings.TrimSpace(src.Storage.DataDir)
	}
	if src.Storage.KeepBackups > 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
	}
	if src.Storage.RecentsLimit > 0 {
		dst.Storage.RecentsLimit = src.Storage.RecentsLimit
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
	if src.Logging.MaxAgeDays > 0 {
		dst.Logging.MaxAgeDays = src.Logging.MaxAgeDays
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStrokeWidth)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Drawing.StrokeWidth = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCloseThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Drawing.CloseThreshold = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "drawing.stroke_width":
		env = EnvStrokeWidth
	case "drawing.close_threshold":
		env = EnvCloseThreshold
	case "storage.data_dir":
		env = EnvDataDir
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// Entry is one effective setting. Env names the variable overriding it, if any.
type Entry struct {
	Key   string
	Value string
	Env   string
}

// Entries lists every setting of c by its YAML key, in file order.
func (c AppConfig) Entries() []Entry {
	d, s, l := c.Drawing, c.Storage, c.Logging
	out := []Entry{
		{Key: "drawing.width", Value: strconv.Itoa(d.Width)},
		{Key: "drawing.height", Value: strconv.Itoa(d.Height)},
		{Key: "drawing.stroke_width", Value: strconv.FormatFloat(d.StrokeWidth, 'g', -1, 64)},
		{Key: "drawing.outline_color", Value: d.OutlineColor},
		{Key: "drawing.close_threshold", Value: strconv.FormatFloat(d.CloseThreshold, 'g', -1, 64)},
		{Key: "drawing.default_fill", Value: d.DefaultFill},
		{Key: "storage.data_dir", Value: s.DataDir},
		{Key: "storage.keep_backups", Value: strconv.Itoa(s.KeepBackups)},
		{Key: "storage.recents_limit", Value: strconv.Itoa(s.RecentsLimit)},
		{Key: "logging.level", Value: l.Level},
		{Key: "logging.format", Value: l.Format},
		{Key: "logging.source", Value: strconv.FormatBool(l.Source)},
		{Key: "logging.file", Value: l.File},
		{Key: "logging.max_size_mb", Value: strconv.Itoa(l.MaxSizeMB)},
		{Key: "logging.max_backups", Value: strconv.Itoa(l.MaxBackups)},
		{Key: "logging.max_age_days", Value: strconv.Itoa(l.MaxAgeDays)},
	}
	for i := range out {
		if env, ok := EnvOverrideFor(out[i].Key); ok {
			out[i].Env = env
		}
	}
	return out
}
