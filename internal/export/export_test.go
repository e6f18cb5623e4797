/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"freedraw/internal/codec"
	"freedraw/internal/geom"
	"freedraw/internal/strokes"
)

func sampleDoc() codec.Document {
	return codec.Document{Strokes: []strokes.Stroke{
		{Points: []geom.Point{geom.Pt(10, 10), geom.Pt(60, 10), geom.Pt(60, 60), geom.Pt(10, 60), geom.Pt(11, 11)}, Color: "#00ff00"},
		{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(30, 5)}, Color: "red", Position: geom.Pt(100, 100)},
	}}
}

func TestCanvasSize(t *testing.T) {
	if w, h := CanvasSize(codec.Document{}, 0, 0); w != DefaultWidth || h != DefaultHeight {
		t.Fatalf("empty doc: %dx%d", w, h)
	}
	if w, h := CanvasSize(sampleDoc(), 0, 0); w != 130+margin || h != 105+margin {
		t.Fatalf("stroke bounds: %dx%d", w, h)
	}
	bg := codec.Document{Background: image.NewNRGBA(image.Rect(0, 0, 321, 123))}
	if w, h := CanvasSize(bg, 0, 0); w != 321 || h != 123 {
		t.Fatalf("background size: %dx%d", w, h)
	}
	if w, h := CanvasSize(bg, 50, 40); w != 50 || h != 40 {
		t.Fatalf("explicit size: %dx%d", w, h)
	}
}

func TestPNGRendersFillAndFlattens(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(sampleDoc(), &buf, PNGOptions{Width: 200, Height: 200, Flatten: true}); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Fatalf("width: %d", img.Bounds().Dx())
	}
	r, g, b, a := img.At(35, 35).RGBA()
	if g>>8 < 200 || r>>8 > 40 || b>>8 > 40 || a>>8 != 255 {
		t.Fatalf("expected green fill, got %v", img.At(35, 35))
	}
	r, g, b, _ = img.At(180, 20).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Fatalf("expected white background, got %v", img.At(180, 20))
	}
}

func TestPNGKeepsTransparencyAndBackground(t *testing.T) {
	bg := image.NewNRGBA(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 40; x++ {
			bg.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	img, err := Render(codec.Document{Background: bg}, PNGOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c := img.NRGBAAt(10, 10); c.B != 255 || c.A != 255 {
		t.Fatalf("background pixel: %v", c)
	}
	if c := img.NRGBAAt(70, 10); c.A != 0 {
		t.Fatalf("expected transparent pixel, got %v", c)
	}
}

func TestPDFFileCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "drawing.pdf")
	doc := sampleDoc()
	doc.Background = image.NewNRGBA(image.Rect(0, 0, 200, 150))
	if err := PDFFile(doc, out, PDFOptions{Title: "test"}); err != nil {
		t.Fatalf("PDFFile: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatalf("not a pdf: %q", data[:8])
	}
}

func TestPDFRejectsBadOutline(t *testing.T) {
	var buf bytes.Buffer
	opt := PDFOptions{}
	opt.Style.OutlineColor = "not-a-color"
	if err := PDF(sampleDoc(), &buf, opt); err == nil {
		t.Fatalf("expected error for bad outline color")
	}
}
