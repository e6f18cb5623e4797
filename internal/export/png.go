/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders drawings into one-way output formats (PNG, PDF).
// Exports are never read back.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"freedraw/internal/codec"
	"freedraw/internal/geom"
	"freedraw/internal/render"
	"freedraw/internal/surface"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
	// margin added around stroke bounds when no size is known
	margin = 16
)

// PNGOptions controls PNG export behavior.
// Width and Height default to the background size, then to the stroke
// bounds plus a margin. Flatten composites the result onto white.
type PNGOptions struct {
	Width, Height int
	Flatten       bool
	Style         render.Style
}

// CanvasSize picks the output size for doc.
func CanvasSize(doc codec.Document, w, h int) (int, int) {
	if w > 0 && h > 0 {
		return w, h
	}
	if doc.Background != nil {
		b := doc.Background.Bounds()
		return b.Dx(), b.Dy()
	}
	if len(doc.Strokes) == 0 {
		return DefaultWidth, DefaultHeight
	}
	var r geom.Rect
	for i, s := range doc.Strokes {
		p := geom.FromPoints(s.Effective(), false)
		if i == 0 {
			r = p.Bounds()
			continue
		}
		r = r.Union(p.Bounds())
	}
	// strokes live in canvas space starting at the origin
	return int(math.Ceil(max(r.X+r.W, 1))) + margin, int(math.Ceil(max(r.Y+r.H, 1))) + margin
}

// Render paints doc onto a fresh raster and returns a copy of the pixels.
func Render(doc codec.Document, opt PNGOptions) (*image.NRGBA, error) {
	w, h := CanvasSize(doc, opt.Width, opt.Height)
	rend, err := render.New(opt.Style)
	if err != nil {
		return nil, err
	}
	rs := surface.NewRaster(w, h)
	defer rs.Close()
	rend.Attach(rs)
	rend.SetBackground(doc.Background)
	rend.Redraw(doc.Strokes)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if opt.Flatten {
		draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		draw.Draw(out, out.Bounds(), rs.Image(), image.Point{}, draw.Over)
	} else {
		draw.Draw(out, out.Bounds(), rs.Image(), image.Point{}, draw.Src)
	}
	return out, nil
}

// PNG renders doc and writes it PNG encoded to w.
func PNG(doc codec.Document, w io.Writer, opt PNGOptions) error {
	img, err := Render(doc, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGFile is PNG writing to outPath, creating parent directories.
func PNGFile(doc codec.Document, outPath string, opt PNGOptions) (err error) {
	if outPath == "" {
		return errors.New("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close png: %w", cerr)
		}
	}()
	return PNG(doc, f, opt)
}
