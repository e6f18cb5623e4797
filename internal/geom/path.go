/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Path commands for polyline shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	Pt Point // unused for Close
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Pt: Pt(x, y)}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Pt: Pt(x, y)}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }
func (p *Path) Reset()              { p.Cmds = p.Cmds[:0] }
func (p *Path) Empty() bool         { return len(p.Cmds) == 0 }

// FromPoints builds a polyline through pts, closing it when closed is set.
func FromPoints(pts []Point, closed bool) Path {
	var p Path
	if len(pts) == 0 {
		return p
	}
	p.Cmds = make([]PathCmd, 0, len(pts)+1)
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.LineTo(q.X, q.Y)
	}
	if closed {
		p.Close()
	}
	return p
}

// Bounds returns the axis-aligned box around all vertices.
func (p *Path) Bounds() Rect {
	first := true
	var r Rect
	for _, c := range p.Cmds {
		if c.Op == Close {
			continue
		}
		if first {
			r = Rect{X: c.Pt.X, Y: c.Pt.Y}
			first = false
			continue
		}
		r = r.Union(Rect{X: c.Pt.X, Y: c.Pt.Y})
	}
	return r
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
