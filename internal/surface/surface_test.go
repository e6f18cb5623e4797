/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func square(r *Raster, x, y, s float64) {
	r.BeginPath()
	r.MoveTo(x, y)
	r.LineTo(x+s, y)
	r.LineTo(x+s, y+s)
	r.LineTo(x, y+s)
	r.ClosePath()
}

func TestRaster_IsPointInPath(t *testing.T) {
	r := NewRaster(200, 200)
	defer r.Close()
	square(r, 20, 20, 100)
	if !r.IsPointInPath(70, 70) {
		t.Fatalf("center should be inside")
	}
	if r.IsPointInPath(150, 150) {
		t.Fatalf("far point should be outside")
	}
	if r.IsPointInPath(10, 70) {
		t.Fatalf("point left of the square should be outside")
	}
}

func TestRaster_EmptyPathContainsNothing(t *testing.T) {
	r := NewRaster(10, 10)
	defer r.Close()
	r.BeginPath()
	if r.IsPointInPath(5, 5) {
		t.Fatalf("empty path contains a point")
	}
}

func TestRaster_FillAndSnapshot(t *testing.T) {
	r := NewRaster(64, 64)
	defer r.Close()
	square(r, 8, 8, 48)
	if err := r.Fill(color.NRGBA{R: 255, A: 255}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	// path survives the fill
	if !r.IsPointInPath(32, 32) {
		t.Fatalf("path was dropped by Fill")
	}
	var buf bytes.Buffer
	if err := r.Snapshot(&buf); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("unexpected snapshot bounds %v", b)
	}
	cr, _, _, ca := img.At(32, 32).RGBA()
	if ca < 0xf000 || cr < 0xf000 {
		t.Fatalf("center not filled red: r=%x a=%x", cr, ca)
	}
	_, _, _, oa := img.At(2, 2).RGBA()
	if oa != 0 {
		t.Fatalf("outside pixel painted: a=%x", oa)
	}

	r.Clear()
	_, _, _, a := r.Image().At(32, 32).RGBA()
	if a != 0 {
		t.Fatalf("Clear left alpha %x", a)
	}
}

func TestRaster_DrawImageRestoresPixels(t *testing.T) {
	src := NewRaster(32, 32)
	defer src.Close()
	square(src, 0, 0, 32)
	_ = src.Fill(color.NRGBA{B: 255, A: 255})

	dst := NewRaster(32, 32)
	defer dst.Close()
	dst.DrawImage(src.Image())
	_, _, b, a := dst.Image().At(16, 16).RGBA()
	if a < 0xf000 || b < 0xf000 {
		t.Fatalf("image not drawn: b=%x a=%x", b, a)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#f00":                 {R: 255, A: 255},
		"#00FF00":              {G: 255, A: 255},
		"#0000ff80":            {B: 255, A: 128},
		"red":                  {R: 255, A: 255},
		" CornflowerBlue ":     {R: 100, G: 149, B: 237, A: 255},
		"rgb(1, 2, 3)":         {R: 1, G: 2, B: 3, A: 255},
		"rgba(255,255,255,0)":  {R: 255, G: 255, B: 255, A: 0},
		"rgb(100%, 0%, 0%)":    {R: 255, A: 255},
		"transparent":          {},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "#ggg", "notacolor", "rgb(1,2)", "rgba(1,2,3,4)", "rgb(300,0,0)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) expected error", bad)
		}
	}
}
