/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"freedraw/internal/codec"
	"freedraw/internal/config"
	"freedraw/internal/export"
	"freedraw/internal/geom"
	applog "freedraw/internal/log"
	"freedraw/internal/storage"
)

type cli struct {
	cfg     config.AppConfig
	dataDir string
	out     io.Writer
	l       *slog.Logger
}

func (c *cli) run(cmd string, args []string) error {
	switch cmd {
	case "new":
		return c.newDrawing(args)
	case "info":
		if len(args) < 1 {
			return fmt.Errorf("%w: info requires <file>", errUsage)
		}
		return c.info(args[0])
	case "render":
		if len(args) < 2 {
			return fmt.Errorf("%w: render requires <file> and <out.png>", errUsage)
		}
		return c.render(args[0], args[1])
	case "pdf":
		if len(args) < 2 {
			return fmt.Errorf("%w: pdf requires <file> and <out.pdf>", errUsage)
		}
		return c.pdf(args[0], args[1])
	case "recents":
		n := c.cfg.Storage.RecentsLimit
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: recents count %q", errUsage, args[0])
			}
			n = v
		}
		return c.recents(n)
	case "config":
		return c.showConfig()
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (c *cli) newDrawing(args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return fmt.Errorf("%w: new requires <file> [w h]", errUsage)
	}
	bg := ""
	if len(args) == 3 {
		w, werr := strconv.Atoi(args[1])
		h, herr := strconv.Atoi(args[2])
		if werr != nil || herr != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("%w: bad size %sx%s", errUsage, args[1], args[2])
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return err
		}
		bg = codec.EncodeDataURL(buf.Bytes())
	}
	data, err := codec.Encode(bg, nil)
	if err != nil {
		return err
	}
	path, err := storage.WriteDrawing(args[0], data, c.cfg.Storage.KeepBackups)
	if err != nil {
		return err
	}
	c.remember(path, 0)
	fmt.Fprintln(c.out, "Created", path)
	return nil
}

// load reads path, falling back to the newest backup that decodes when the
// file itself is unreadable or malformed.
func (c *cli) load(path string) (codec.Document, error) {
	data, used, err := storage.ReadLatestValid(path)
	if err != nil {
		return codec.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if used != path {
		c.l.Warn("drawing unusable, recovered from backup", slog.String("path", path), slog.String("backup", used))
		fmt.Fprintf(c.out, "Warning: %s is damaged, using backup %s\n", filepath.Base(path), used)
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return codec.Document{}, fmt.Errorf("%s: %w", used, err)
	}
	return doc, nil
}

func (c *cli) info(path string) error {
	doc, err := c.load(path)
	if err != nil {
		return err
	}
	closed := 0
	var bounds geom.Rect
	for i, s := range doc.Strokes {
		if s.Closed(c.cfg.Drawing.CloseThreshold) {
			closed++
		}
		p := geom.FromPoints(s.Effective(), false)
		if i == 0 {
			bounds = p.Bounds()
		} else {
			bounds = bounds.Union(p.Bounds())
		}
	}
	fmt.Fprintf(c.out, "File: %s\n", path)
	fmt.Fprintf(c.out, "Strokes: %d (%d closed)\n", len(doc.Strokes), closed)
	if len(doc.Strokes) > 0 {
		fmt.Fprintf(c.out, "Bounds: %.1f,%.1f %.1fx%.1f\n", bounds.X, bounds.Y, bounds.W, bounds.H)
	}
	if doc.Background != nil {
		b := doc.Background.Bounds()
		fmt.Fprintf(c.out, "Background: %dx%d\n", b.Dx(), b.Dy())
	} else {
		fmt.Fprintln(c.out, "Background: none")
	}
	return nil
}

func (c *cli) render(path, out string) error {
	doc, err := c.load(path)
	if err != nil {
		return err
	}
	if err := export.PNGFile(doc, out, export.PNGOptions{Flatten: true, Style: c.cfg.Drawing.Style()}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Rendered", out)
	return nil
}

func (c *cli) pdf(path, out string) error {
	doc, err := c.load(path)
	if err != nil {
		return err
	}
	opt := export.PDFOptions{Style: c.cfg.Drawing.Style(), Title: filepath.Base(path)}
	if err := export.PDFFile(doc, out, opt); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported", out)
	return nil
}

func (c *cli) recents(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	list, err := storage.ListRecents(ctx, c.dataDir, n)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No recent drawings.")
		return nil
	}
	for _, r := range list {
		fmt.Fprintf(c.out, "%s  %s  %d strokes\n", r.OpenedAt.Local().Format("2006-01-02 15:04"), r.Path, r.Strokes)
	}
	return nil
}

func (c *cli) remember(path string, strokes int) {
	if c.dataDir == "" {
		return
	}
	ctx, cancel := context.WithTimeout(applog.ContextWithDocument(context.Background(), path), 5*time.Second)
	defer cancel()
	if err := storage.RecordRecent(ctx, c.dataDir, storage.Recent{Path: path, Strokes: strokes}); err != nil {
		c.l.WarnContext(ctx, "record recent failed", slog.Any("err", err))
	}
}

// showConfig prints the effective settings and marks env overrides.
func (c *cli) showConfig() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Config file:", path)
	for _, e := range c.cfg.Entries() {
		v := e.Value
		if v == "" {
			v = `""`
		}
		if e.Env != "" {
			fmt.Fprintf(c.out, "  %-24s %s  (from %s)\n", e.Key, v, e.Env)
			continue
		}
		fmt.Fprintf(c.out, "  %-24s %s\n", e.Key, v)
	}
	return nil
}
