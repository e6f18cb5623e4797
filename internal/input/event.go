/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import "freedraw/internal/geom"

// Phase is the part of a pointer session an event belongs to.
type Phase uint8

const (
	Down Phase = iota
	Move
	Up
	Leave
	Cancel
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Leave:
		return "leave"
	case Cancel:
		return "cancel"
	}
	return "unknown"
}

// Event is a pointer event already reduced to canvas-local coordinates.
type Event interface {
	Phase() Phase
	Local() geom.Point
}

// MouseEvent carries an offset relative to the canvas origin.
type MouseEvent struct {
	Kind   Phase
	Offset geom.Point
}

func (e MouseEvent) Phase() Phase      { return e.Kind }
func (e MouseEvent) Local() geom.Point { return e.Offset }

// TouchEvent carries page coordinates plus the on-screen canvas origin.
type TouchEvent struct {
	Kind   Phase
	Page   geom.Point
	Origin geom.Point
}

func (e TouchEvent) Phase() Phase      { return e.Kind }
func (e TouchEvent) Local() geom.Point { return e.Page.Sub(e.Origin) }
