/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints the stroke list onto a surface. A full redraw runs
// whenever the committed list changes; during an active draw single segments
// are painted on top without clearing.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"freedraw/internal/geom"
	applog "freedraw/internal/log"
	"freedraw/internal/strokes"
	"freedraw/internal/surface"
)

// Style holds the fixed painting parameters shared by every stroke.
type Style struct {
	StrokeWidth    float64
	OutlineColor   string
	CloseThreshold float64
}

const (
	DefaultStrokeWidth  = 2.0
	DefaultOutlineColor = "#000000"
)

func DefaultStyle() Style {
	return Style{StrokeWidth: DefaultStrokeWidth, OutlineColor: DefaultOutlineColor, CloseThreshold: geom.CloseThreshold}
}

// Renderer owns the optional surface. With no surface attached every paint
// and hit-test call is a no-op.
type Renderer struct {
	surf       surface.Surface
	style      Style
	outline    color.NRGBA
	background image.Image
	l          *slog.Logger
}

// New validates style and fills zero fields from DefaultStyle.
func New(style Style) (*Renderer, error) {
	def := DefaultStyle()
	if style.StrokeWidth <= 0 {
		style.StrokeWidth = def.StrokeWidth
	}
	if style.OutlineColor == "" {
		style.OutlineColor = def.OutlineColor
	}
	if style.CloseThreshold <= 0 {
		style.CloseThreshold = def.CloseThreshold
	}
	oc, err := surface.ParseColor(style.OutlineColor)
	if err != nil {
		return nil, fmt.Errorf("outline color: %w", err)
	}
	return &Renderer{style: style, outline: oc, l: applog.WithComponent("render")}, nil
}

func (r *Renderer) Style() Style { return r.style }

func (r *Renderer) Attach(s surface.Surface) { r.surf = s }
func (r *Renderer) Detach()                  { r.surf = nil }

// Surface returns the attached surface or nil.
func (r *Renderer) Surface() surface.Surface { return r.surf }

// SetBackground installs the image painted beneath all strokes on every
// full redraw. nil removes it.
func (r *Renderer) SetBackground(img image.Image) { r.background = img }

func (r *Renderer) Background() image.Image { return r.background }

// Observe redraws on every change of the store's list.
func (r *Renderer) Observe(s *strokes.Store) (stop func()) {
	return s.Subscribe(func(snap strokes.Snapshot) { r.Redraw(snap.Strokes) })
}

// Redraw clears the surface and paints background and strokes in list order.
func (r *Renderer) Redraw(list []strokes.Stroke) {
	s := r.surf
	if s == nil {
		return
	}
	s.Clear()
	if r.background != nil {
		s.DrawImage(r.background)
	}
	for i, st := range list {
		if err := r.paint(s, st); err != nil {
			r.l.Warn("paint stroke failed", slog.Int("index", i), slog.Any("err", err))
		}
	}
}

func (r *Renderer) paint(s surface.Surface, st strokes.Stroke) error {
	pts := st.Effective()
	if len(pts) == 0 {
		return nil
	}
	s.BeginPath()
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
	if err := s.Stroke(surface.StrokeStyle{Color: r.outline, Width: r.style.StrokeWidth}); err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	if !st.Closed(r.style.CloseThreshold) {
		return nil
	}
	fill, err := surface.ParseColor(st.Color)
	if err != nil {
		r.l.Warn("skip fill", slog.String("color", st.Color), slog.Any("err", err))
		return nil
	}
	s.ClosePath()
	if err := s.Fill(fill); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	return nil
}

// Segment paints one outline segment on top of the current pixels.
func (r *Renderer) Segment(from, to geom.Point) {
	s := r.surf
	if s == nil {
		return
	}
	s.BeginPath()
	s.MoveTo(from.X, from.Y)
	s.LineTo(to.X, to.Y)
	if err := s.Stroke(surface.StrokeStyle{Color: r.outline, Width: r.style.StrokeWidth}); err != nil {
		r.l.Warn("live segment failed", slog.Any("err", err))
	}
}

// HitTest returns the index of the topmost stroke containing p, or -1.
// ok is false when no surface is attached and the question cannot be asked.
func (r *Renderer) HitTest(list []strokes.Stroke, p geom.Point) (index int, ok bool) {
	s := r.surf
	if s == nil {
		return -1, false
	}
	for i := len(list) - 1; i >= 0; i-- {
		if geom.IsPointInside(s, list[i].Effective(), p.X, p.Y) {
			return i, true
		}
	}
	return -1, true
}
