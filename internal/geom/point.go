/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the small amount of plane geometry the drawing surface
// needs: points in canvas pixel space, closure detection and containment
// queries delegated to a path tester.
package geom

import "math"

// CloseThreshold is the largest distance in pixels between the first and the
// last point of a stroke for which the stroke counts as closed.
const CloseThreshold = 10.0

// Point is a position in canvas pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// IsClosed reports whether a stroke ending at its last point should be treated
// as a closed shape. Fewer than two points never close.
func IsClosed(points []Point, threshold float64) bool {
	if len(points) < 2 {
		return false
	}
	return points[0].Dist(points[len(points)-1]) < threshold
}

// Offset returns a new slice with every point shifted by pos.
func Offset(points []Point, pos Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Add(pos)
	}
	return out
}

// PathTester is the part of a rendering surface that can build a path and
// answer whether a point falls inside its filled region.
type PathTester interface {
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	IsPointInPath(x, y float64) bool
}

// IsPointInside builds the closed path through pts on t and asks t whether
// (x, y) lies within it, using whatever fill rule t applies by default.
func IsPointInside(t PathTester, pts []Point, x, y float64) bool {
	if t == nil || len(pts) < 2 {
		return false
	}
	t.BeginPath()
	t.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		t.LineTo(p.X, p.Y)
	}
	t.ClosePath()
	return t.IsPointInPath(x, y)
}
