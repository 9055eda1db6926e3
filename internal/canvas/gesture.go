/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
)

// Gesture state machine for a single pointer interaction:
//
//	Idle -> (PointerDown on handle/body) -> Active -> (PointerMove)* -> (PointerUp) -> Idle
//
// While Active, PointerMove returns a preview rect for visual feedback only;
// the authoritative component list is updated once on PointerUp. Committing
// on release keeps each update atomic against concurrent external changes to
// the same component.

type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phaseActive
)

type gestureState struct {
	phase    gesturePhase
	targetID string
	handle   Handle // empty for a body drag (move)
	originX  float64
	originY  float64
	start    geom.Rect
}

// Active reports whether a gesture is in progress.
func (e *Engine) Active() bool { return e.gesture.phase == phaseActive }

// PointerDown begins a gesture on a component body (handle == "") or on one
// of its resize handles. Pointer coordinates are page-relative. Starting a
// gesture on an unknown id leaves the machine Idle.
func (e *Engine) PointerDown(id string, handle Handle, x, y float64) {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return
	}
	e.gesture = gestureState{
		phase:    phaseActive,
		targetID: id,
		handle:   handle,
		originX:  x,
		originY:  y,
		start:    e.components[i].Geometry.GeomRect(),
	}
}

// PointerMove returns the preview rect for the current pointer position.
// It never touches the component list. When no gesture is active it returns
// false.
func (e *Engine) PointerMove(x, y float64) (geom.Rect, bool) {
	if e.gesture.phase != phaseActive {
		return geom.Rect{}, false
	}
	dx := x - e.gesture.originX
	dy := y - e.gesture.originY
	g := e.gesture.start
	if e.gesture.handle == "" {
		g.X += dx
		g.Y += dy
		g = geom.Clamp(g, e.geomPage())
	} else {
		g = resizeRect(g, e.gesture.handle, dx, dy)
		g = geom.Clamp(g, e.geomPage())
	}
	return g, true
}

// PointerUp completes the gesture, committing a Move or Resize with the
// total delta since PointerDown, and returns the machine to Idle. If the
// component disappeared mid-gesture the commit is a silent no-op.
func (e *Engine) PointerUp(x, y float64) {
	if e.gesture.phase != phaseActive {
		return
	}
	dx := x - e.gesture.originX
	dy := y - e.gesture.originY
	id := e.gesture.targetID
	handle := e.gesture.handle
	e.gesture = gestureState{}
	if dx == 0 && dy == 0 {
		return
	}
	if handle == "" {
		e.Move(id, dx, dy)
	} else {
		e.Resize(id, handle, dx, dy)
	}
}

// CancelGesture aborts the active gesture without committing (Escape key).
func (e *Engine) CancelGesture() { e.gesture = gestureState{} }
