/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package input turns pointer and touch events into stroke store mutations.
//
// A session is Idle, Drawing or Dragging. Down picks the topmost stroke under
// the pointer and starts a drag, or starts a new stroke when nothing is hit.
// Move extends the stroke or moves the dragged one. Up, Leave and Cancel end
// the session.
package input

import (
	"log/slog"

	"freedraw/internal/geom"
	applog "freedraw/internal/log"
	"freedraw/internal/strokes"
)

// State is one of Idle, Drawing or Dragging.
type State interface{ isState() }

type Idle struct{}

// Drawing is active while the store's draw buffer collects points.
type Drawing struct{}

// Dragging moves Index so that it keeps Offset to the pointer.
type Dragging struct {
	Index  int
	Offset geom.Point
}

func (Idle) isState()     {}
func (Drawing) isState()  {}
func (Dragging) isState() {}

// Canvas is what the interpreter needs from the rendering side.
type Canvas interface {
	// HitTest returns the topmost stroke containing p or -1; ok is false when
	// no surface is available to answer.
	HitTest(list []strokes.Stroke, p geom.Point) (index int, ok bool)
	// Segment paints live feedback for the newest part of an active draw.
	Segment(from, to geom.Point)
}

type Interpreter struct {
	store  *strokes.Store
	canvas Canvas
	fill   func() string
	state  State
	l      *slog.Logger
}

// New returns an idle interpreter. fill is asked for the current fill color
// each time a stroke is committed.
func New(store *strokes.Store, canvas Canvas, fill func() string) *Interpreter {
	return &Interpreter{store: store, canvas: canvas, fill: fill, state: Idle{}, l: applog.WithComponent("input")}
}

func (in *Interpreter) State() State { return in.state }

// Handle runs the transition for ev.
func (in *Interpreter) Handle(ev Event) {
	p := ev.Local()
	switch ev.Phase() {
	case Down:
		in.down(p)
	case Move:
		in.move(p)
	case Up, Leave, Cancel:
		in.end()
	}
}

func (in *Interpreter) down(p geom.Point) {
	if _, idle := in.state.(Idle); !idle {
		// a second press without release: close the running session first
		in.end()
	}
	list := in.store.Strokes()
	idx, ok := in.canvas.HitTest(list, p)
	if !ok {
		in.l.Debug("pointer down ignored, no surface")
		return
	}
	if idx >= 0 {
		in.state = Dragging{Index: idx, Offset: p.Sub(list[idx].Position)}
		return
	}
	in.store.Begin(p)
	in.state = Drawing{}
}

func (in *Interpreter) move(p geom.Point) {
	switch st := in.state.(type) {
	case Dragging:
		if err := in.store.Reposition(st.Index, p.Sub(st.Offset)); err != nil {
			in.l.Warn("drag target vanished", slog.Int("index", st.Index), slog.Any("err", err))
			in.state = Idle{}
		}
	case Drawing:
		prev, ok := in.store.Last()
		if !in.store.Append(p) {
			return
		}
		if ok {
			in.canvas.Segment(prev, p)
		}
	}
}

func (in *Interpreter) end() {
	switch in.state.(type) {
	case Drawing:
		color := ""
		if in.fill != nil {
			color = in.fill()
		}
		if !in.store.Commit(color) {
			in.l.Debug("degenerate stroke discarded")
		}
	}
	in.state = Idle{}
}

// Reset drops any running session without committing it.
func (in *Interpreter) Reset() {
	if _, drawing := in.state.(Drawing); drawing {
		in.store.Abort()
	}
	in.state = Idle{}
}
