/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package surface defines the rendering-surface capabilities the drawing core
// consumes and provides a software raster implementation of them.
package surface

import (
	"image"
	"image/color"
	"io"
)

// StrokeStyle describes how an outline is painted. Caps and joins are always
// round.
type StrokeStyle struct {
	Color color.Color
	Width float64
}

// Surface is a 2D drawing target with canvas-style path semantics: the
// current path survives Stroke and Fill and is discarded only by BeginPath.
type Surface interface {
	Size() (w, h int)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()

	Stroke(st StrokeStyle) error
	Fill(c color.Color) error
	// IsPointInPath reports whether (x, y) lies inside the filled region of
	// the current path under the surface's fill rule.
	IsPointInPath(x, y float64) bool

	// Clear resets every pixel to transparent.
	Clear()
	// Snapshot encodes the current pixels as PNG.
	Snapshot(w io.Writer) error
	// DrawImage paints img with its top-left corner at the surface origin.
	DrawImage(img image.Image)
}
