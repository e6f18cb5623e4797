/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/gogpu/gg"

	"freedraw/internal/geom"
	applog "freedraw/internal/log"
)

// Raster is a Surface backed by the gg software rasterizer.
//
// Containment is answered with the same rasterizer: the current path is
// filled into a 1x1 probe whose pixel centre sits on the query point, so a
// point counts as inside exactly when rendering would cover at least half of
// that pixel. The fill rule is non-zero for both painting and probing.
type Raster struct {
	dc    *gg.Context
	probe *gg.Context
	path  geom.Path
	w, h  int
	l     *slog.Logger
}

var _ Surface = (*Raster)(nil)

// NewRaster returns a transparent w x h surface.
func NewRaster(w, h int) *Raster {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Raster{
		dc:    gg.NewContext(w, h),
		probe: gg.NewContext(1, 1),
		w:     w,
		h:     h,
		l:     applog.WithComponent("surface"),
	}
}

func (r *Raster) Size() (int, int) { return r.w, r.h }

func (r *Raster) BeginPath()          { r.path.Reset() }
func (r *Raster) MoveTo(x, y float64) { r.path.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.path.LineTo(x, y) }
func (r *Raster) ClosePath()          { r.path.Close() }

func (r *Raster) Stroke(st StrokeStyle) error {
	if r.path.Empty() {
		return nil
	}
	r.dc.SetColor(st.Color)
	r.dc.SetLineWidth(st.Width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	replay(r.dc, &r.path)
	return r.dc.Stroke()
}

func (r *Raster) Fill(c color.Color) error {
	if r.path.Empty() {
		return nil
	}
	r.dc.SetFillRule(gg.FillRuleNonZero)
	r.dc.SetColor(c)
	replay(r.dc, &r.path)
	return r.dc.Fill()
}

func (r *Raster) IsPointInPath(x, y float64) bool {
	if r.path.Empty() {
		return false
	}
	if !r.path.Bounds().Inset(-1, -1).Contains(geom.Pt(x, y)) {
		return false
	}
	r.probe.Clear()
	r.probe.Identity()
	r.probe.Translate(0.5-x, 0.5-y)
	r.probe.SetFillRule(gg.FillRuleNonZero)
	r.probe.SetColor(color.Black)
	replay(r.probe, &r.path)
	if err := r.probe.Fill(); err != nil {
		r.l.Warn("containment probe failed", slog.Any("err", err))
		return false
	}
	_, _, _, a := r.probe.Image().At(0, 0).RGBA()
	return a >= 0x8000
}

func (r *Raster) Clear() { r.dc.Clear() }

func (r *Raster) Snapshot(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) DrawImage(img image.Image) {
	if img == nil {
		return
	}
	r.dc.DrawImage(gg.ImageBufFromImage(img), 0, 0)
}

// Image exposes the current pixels for display.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// Close releases the rasterizer contexts. Close is idempotent.
func (r *Raster) Close() error {
	_ = r.probe.Close()
	return r.dc.Close()
}

func replay(dc *gg.Context, p *geom.Path) {
	dc.ClearPath()
	for _, c := range p.Cmds {
		switch c.Op {
		case geom.MoveTo:
			dc.MoveTo(c.Pt.X, c.Pt.Y)
		case geom.LineTo:
			dc.LineTo(c.Pt.X, c.Pt.Y)
		case geom.Close:
			dc.ClosePath()
		}
	}
}

// RouteRasterizerLogs sends the rasterizer's own diagnostics to l.
func RouteRasterizerLogs(l *slog.Logger) { gg.SetLogger(l) }
