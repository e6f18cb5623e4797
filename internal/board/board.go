/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board is the host-facing drawing surface: it wires the stroke
// store, the input interpreter and the renderer together and exposes the
// save/load contract used by the desktop UI and the CLI.
package board

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"freedraw/internal/codec"
	"freedraw/internal/input"
	applog "freedraw/internal/log"
	"freedraw/internal/render"
	"freedraw/internal/strokes"
	"freedraw/internal/surface"
)

// DefaultFill is the initial fill color of new strokes.
const DefaultFill = "#000000"

// Options configure a Board. Zero values fall back to defaults.
type Options struct {
	Style     render.Style
	FillColor string
	// Post runs fn on the goroutine that owns the board. LoadAsync hands its
	// state update to it. nil runs fn inline.
	Post func(fn func())
}

type Board struct {
	id       string
	store    *strokes.Store
	renderer *render.Renderer
	interp   *input.Interpreter
	fill     string
	post     func(func())
	stop     func()
	closed   atomic.Bool
	l        *slog.Logger
}

// New builds an empty board with no surface attached.
func New(opts Options) (*Board, error) {
	r, err := render.New(opts.Style)
	if err != nil {
		return nil, err
	}
	fill := opts.FillColor
	if fill == "" {
		fill = DefaultFill
	}
	if _, err := surface.ParseColor(fill); err != nil {
		return nil, fmt.Errorf("fill color: %w", err)
	}
	post := opts.Post
	if post == nil {
		post = func(fn func()) { fn() }
	}
	b := &Board{
		id:       uuid.NewString(),
		store:    strokes.NewStore(),
		renderer: r,
		fill:     fill,
		post:     post,
	}
	b.l = applog.WithComponent("board").With(slog.String("session", b.id))
	b.interp = input.New(b.store, r, b.FillColor)
	b.stop = r.Observe(b.store)
	return b, nil
}

// ID identifies this board instance in logs and autosave names.
func (b *Board) ID() string { return b.id }

// Attach makes s the drawing surface and paints the current document on it.
func (b *Board) Attach(s surface.Surface) {
	b.renderer.Attach(s)
	b.renderer.Redraw(b.store.Strokes())
}

// Detach removes the surface. Drawing, hit-testing and snapshots become no-ops.
func (b *Board) Detach() { b.renderer.Detach() }

func (b *Board) Surface() surface.Surface { return b.renderer.Surface() }

func (b *Board) Style() render.Style { return b.renderer.Style() }

// SetFillColor sets the color used for strokes committed from now on.
// Unparseable colors are rejected and the previous color stays in effect.
func (b *Board) SetFillColor(c string) error {
	if _, err := surface.ParseColor(c); err != nil {
		return fmt.Errorf("fill color %q: %w", c, err)
	}
	b.fill = c
	return nil
}

func (b *Board) FillColor() string { return b.fill }

// Undo removes the most recently committed stroke. It is ignored while a
// stroke is being drawn, since the redraw would wipe its live ink.
func (b *Board) Undo() {
	if _, drawing := b.interp.State().(input.Drawing); drawing {
		b.l.Debug("undo ignored during draw")
		return
	}
	if b.store.Undo() {
		b.l.Debug("undo", slog.Int("strokes", b.store.Len()))
	}
}

// Handle feeds a pointer event to the interpreter.
func (b *Board) Handle(ev input.Event) {
	if b.closed.Load() {
		return
	}
	b.interp.Handle(ev)
}

func (b *Board) State() input.State { return b.interp.State() }

// Strokes returns the committed list. Callers must not modify it.
func (b *Board) Strokes() []strokes.Stroke { return b.store.Strokes() }

// Document returns the in-memory document: the restored background layer
// and the committed strokes.
func (b *Board) Document() codec.Document {
	return codec.Document{Background: b.renderer.Background(), Strokes: b.store.Strokes()}
}

// Save encodes the current surface pixels as the background together with
// the full stroke list. Without a surface the background is left empty.
func (b *Board) Save() ([]byte, error) {
	bg := ""
	if s := b.renderer.Surface(); s != nil {
		var buf bytes.Buffer
		if err := s.Snapshot(&buf); err != nil {
			return nil, fmt.Errorf("snapshot surface: %w", err)
		}
		bg = codec.EncodeDataURL(buf.Bytes())
	}
	data, err := codec.Encode(bg, b.store.Strokes())
	if err != nil {
		return nil, err
	}
	b.l.Info("drawing saved", slog.Int("strokes", b.store.Len()), slog.Int("bytes", len(data)))
	return data, nil
}

// Load decodes data and, only if that succeeds, replaces the document. A
// failed load leaves strokes, background and interaction state untouched.
func (b *Board) Load(data []byte) error {
	doc, err := codec.Decode(data)
	if err != nil {
		b.l.Warn("load rejected", slog.Any("err", err))
		return err
	}
	b.apply(doc)
	return nil
}

// LoadAsync reads and decodes r on a new goroutine, then posts the document
// swap through Options.Post and reports the outcome to done on that same
// goroutine. r is closed after reading if it is an io.Closer. After Close
// the result is dropped and done is not called.
func (b *Board) LoadAsync(r io.Reader, done func(error)) {
	go func() {
		data, err := io.ReadAll(r)
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		var doc codec.Document
		if err == nil {
			doc, err = codec.Decode(data)
		} else {
			err = fmt.Errorf("read drawing: %w", err)
		}
		b.post(func() {
			if b.closed.Load() {
				return
			}
			if err != nil {
				b.l.Warn("load rejected", slog.Any("err", err))
			} else {
				b.apply(doc)
			}
			if done != nil {
				done(err)
			}
		})
	}()
}

// Clear starts a new empty document: no strokes and no background.
func (b *Board) Clear() {
	b.apply(codec.Document{})
}

func (b *Board) apply(doc codec.Document) {
	b.interp.Reset()
	b.renderer.SetBackground(doc.Background)
	// ReplaceAll notifies the renderer, which performs the single redraw.
	b.store.ReplaceAll(doc.Strokes)
	b.l.Info("drawing loaded", slog.Int("strokes", len(doc.Strokes)), slog.Bool("background", doc.Background != nil))
}

// Close detaches the surface and stops accepting events and async loads.
func (b *Board) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.stop()
	b.renderer.Detach()
}
