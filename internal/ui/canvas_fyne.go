//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"freedraw/internal/board"
	"freedraw/internal/geom"
	"freedraw/internal/input"
	"freedraw/internal/surface"
)

// DrawingCanvas shows a board's raster surface and feeds pointer input into
// it. Mouse, drag and touch callbacks all end up as input events in local
// canvas coordinates.
type DrawingCanvas struct {
	widget.BaseWidget

	board  *board.Board
	raster *surface.Raster
	w, h   int

	// last move forwarded, Dragged and MouseMoved may report the same point
	last    geom.Point
	hasLast bool

	img *canvas.Image
	// OnChange runs after every handled event, e.g. to update a status line.
	OnChange func()
}

var (
	_ desktop.Mouseable = (*DrawingCanvas)(nil)
	_ desktop.Hoverable = (*DrawingCanvas)(nil)
	_ fyne.Draggable    = (*DrawingCanvas)(nil)
	_ mobile.Touchable  = (*DrawingCanvas)(nil)
)

// NewDrawingCanvas attaches a fresh w x h raster to b.
func NewDrawingCanvas(b *board.Board, w, h int) *DrawingCanvas {
	d := &DrawingCanvas{board: b, raster: surface.NewRaster(w, h), w: w, h: h}
	b.Attach(d.raster)
	d.img = canvas.NewImageFromImage(d.raster.Image())
	d.img.FillMode = canvas.ImageFillOriginal
	d.img.ScaleMode = canvas.ImageScalePixels
	d.ExtendBaseWidget(d)
	return d
}

// Snapshot returns a copy of the current pixels.
func (d *DrawingCanvas) Snapshot() image.Image { return d.raster.Image() }

// Sync copies the raster into the displayed image. Call after any board
// change that did not come through pointer input (load, undo, clear).
func (d *DrawingCanvas) Sync() {
	d.img.Image = d.raster.Image()
	d.img.Refresh()
	if d.OnChange != nil {
		d.OnChange()
	}
}

// Close detaches and releases the raster.
func (d *DrawingCanvas) Close() {
	d.board.Detach()
	_ = d.raster.Close()
}

func (d *DrawingCanvas) handle(ev input.Event) {
	if ev.Phase() == input.Move {
		p := ev.Local()
		if d.hasLast && p == d.last {
			return
		}
		d.last, d.hasLast = p, true
	} else {
		d.hasLast = false
	}
	d.board.Handle(ev)
	d.Sync()
}

func local(p fyne.Position) geom.Point { return geom.Pt(float64(p.X), float64(p.Y)) }

func (d *DrawingCanvas) mouse(phase input.Phase, p fyne.Position) {
	d.handle(input.MouseEvent{Kind: phase, Offset: local(p)})
}

func (d *DrawingCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	d.mouse(input.Down, e.Position)
}

func (d *DrawingCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	d.mouse(input.Up, e.Position)
}

func (d *DrawingCanvas) MouseIn(*desktop.MouseEvent) {}

func (d *DrawingCanvas) MouseMoved(e *desktop.MouseEvent) { d.mouse(input.Move, e.Position) }

func (d *DrawingCanvas) MouseOut() { d.handle(input.MouseEvent{Kind: input.Leave}) }

func (d *DrawingCanvas) Dragged(e *fyne.DragEvent) { d.mouse(input.Move, e.Position) }

// DragEnd is followed by MouseUp on desktop; ending twice is harmless.
func (d *DrawingCanvas) DragEnd() { d.handle(input.MouseEvent{Kind: input.Up, Offset: d.last}) }

func (d *DrawingCanvas) touch(phase input.Phase, e *mobile.TouchEvent) {
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(d)
	d.handle(input.TouchEvent{Kind: phase, Page: local(e.AbsolutePosition), Origin: local(origin)})
}

func (d *DrawingCanvas) TouchDown(e *mobile.TouchEvent)   { d.touch(input.Down, e) }
func (d *DrawingCanvas) TouchUp(e *mobile.TouchEvent)     { d.touch(input.Up, e) }
func (d *DrawingCanvas) TouchCancel(e *mobile.TouchEvent) { d.touch(input.Cancel, e) }

func (d *DrawingCanvas) MinSize() fyne.Size { return fyne.NewSize(float32(d.w), float32(d.h)) }

func (d *DrawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	paper := canvas.NewRectangle(color.White)
	paper.StrokeColor = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	paper.StrokeWidth = 1
	return &drawingCanvasRenderer{d: d, paper: paper, objects: []fyne.CanvasObject{paper, d.img}}
}

type drawingCanvasRenderer struct {
	d       *DrawingCanvas
	paper   *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *drawingCanvasRenderer) Destroy()                     {}
func (r *drawingCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *drawingCanvasRenderer) MinSize() fyne.Size           { return r.d.MinSize() }
func (r *drawingCanvasRenderer) Refresh()                     { canvas.Refresh(r.d) }

func (r *drawingCanvasRenderer) Layout(fyne.Size) {
	sz := r.d.MinSize()
	for _, o := range r.objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(sz)
	}
}
