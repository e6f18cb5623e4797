/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package strokes is the single source of truth for what gets rendered and
// persisted: the ordered list of committed strokes plus the buffer of the
// stroke currently being drawn.
//
// The list is treated as an immutable value. Every mutation installs a fresh
// slice and bumps Version, so observers detect changes by version alone.
package strokes

import (
	"errors"
	"fmt"

	"freedraw/internal/geom"
)

// ErrNoSuchStroke is returned by Reposition for an out-of-range index.
var ErrNoSuchStroke = errors.New("no such stroke")

// Stroke is one user-drawn path with its fill color and position offset.
// Points stay in the space they were recorded in; Position is added at
// render and hit-test time.
type Stroke struct {
	Points   []geom.Point `json:"points"`
	Color    string       `json:"color"`
	Position geom.Point   `json:"position"`
}

// Effective returns the points shifted by the stroke position.
func (s Stroke) Effective() []geom.Point { return geom.Offset(s.Points, s.Position) }

// Closed reports whether the stroke is eligible for fill.
func (s Stroke) Closed(threshold float64) bool { return geom.IsClosed(s.Points, threshold) }

// Snapshot is what observers receive after each list mutation.
type Snapshot struct {
	Version uint64
	Strokes []Stroke
}

// Store is not safe for concurrent use; callers drive it from one event loop.
type Store struct {
	list    []Stroke
	version uint64

	buffer  []geom.Point
	drawing bool

	nextID    int
	observers map[int]func(Snapshot)
	order     []int
}

func NewStore() *Store {
	return &Store{observers: map[int]func(Snapshot){}}
}

// Strokes returns the current list. Callers must treat it as read-only.
func (s *Store) Strokes() []Stroke { return s.list }

func (s *Store) Len() int { return len(s.list) }

func (s *Store) Version() uint64 { return s.version }

// Drawing reports whether a draw buffer is active.
func (s *Store) Drawing() bool { return s.drawing }

// Buffer returns a copy of the in-progress points.
func (s *Store) Buffer() []geom.Point {
	return append([]geom.Point(nil), s.buffer...)
}

// Last returns the most recently buffered point.
func (s *Store) Last() (geom.Point, bool) {
	if len(s.buffer) == 0 {
		return geom.Point{}, false
	}
	return s.buffer[len(s.buffer)-1], true
}

// Begin resets the draw buffer to [p].
func (s *Store) Begin(p geom.Point) {
	s.buffer = []geom.Point{p}
	s.drawing = true
}

// Append adds p to the draw buffer. It reports false when no draw is active.
func (s *Store) Append(p geom.Point) bool {
	if !s.drawing {
		return false
	}
	s.buffer = append(s.buffer, p)
	return true
}

// Commit turns the draw buffer into a stroke with the given fill color when it
// holds at least two points. The buffer is cleared either way.
func (s *Store) Commit(color string) bool {
	buf := s.buffer
	s.buffer = nil
	s.drawing = false
	if len(buf) < 2 {
		return false
	}
	next := make([]Stroke, len(s.list), len(s.list)+1)
	copy(next, s.list)
	next = append(next, Stroke{Points: buf, Color: color})
	s.install(next)
	return true
}

// Abort drops the draw buffer without committing.
func (s *Store) Abort() {
	s.buffer = nil
	s.drawing = false
}

// Undo removes the most recently committed stroke. It reports false on an
// empty list.
func (s *Store) Undo() bool {
	if len(s.list) == 0 {
		return false
	}
	next := make([]Stroke, len(s.list)-1)
	copy(next, s.list)
	s.install(next)
	return true
}

// Reposition replaces the position of the stroke at index. The stroke's
// points are shared with the previous list, never copied.
func (s *Store) Reposition(index int, pos geom.Point) error {
	if index < 0 || index >= len(s.list) {
		return fmt.Errorf("reposition %d of %d: %w", index, len(s.list), ErrNoSuchStroke)
	}
	next := make([]Stroke, len(s.list))
	copy(next, s.list)
	next[index].Position = pos
	s.install(next)
	return nil
}

// ReplaceAll swaps in a whole new list, as done on document load.
func (s *Store) ReplaceAll(list []Stroke) {
	next := make([]Stroke, len(list))
	copy(next, list)
	s.install(next)
}

// Subscribe registers fn to be called after every list mutation. The returned
// func removes it again.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.order = append(s.order, id)
	return func() {
		delete(s.observers, id)
		for i, o := range s.order {
			if o == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) install(next []Stroke) {
	s.list = next
	s.version++
	snap := Snapshot{Version: s.version, Strokes: next}
	for _, id := range s.order {
		if fn := s.observers[id]; fn != nil {
			fn(snap)
		}
	}
}
