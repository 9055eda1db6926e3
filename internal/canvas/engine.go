/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the pointer-driven interaction engine for the
// report page: selection, move/resize with grid snapping, table auto-height,
// alignment/distribution over a selected set, and the preview cache that
// feeds auto-height. The engine is UI-agnostic; frontends translate pointer
// events into the operations here.
package canvas

import (
	"log/slog"
	"sort"

	applog "reportstudio/internal/log"

	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
)

// Handle names one of the eight resize handles.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Engine owns the selection and applies geometry operations to the component
// list. The host supplies the list via SetComponents and receives every
// authoritative change through OnComponentsChange; selection has a single
// owner (the engine) and is exposed to the host as a read-only projection
// through Selection and OnSelectionChange.
type Engine struct {
	page       domain.PageSettings
	components []domain.Component
	selection  map[string]struct{}

	// OnComponentsChange is invoked with the full replacement list after any
	// committed mutation. OnSelectionChange receives the sorted selected ids.
	OnComponentsChange func([]domain.Component)
	OnSelectionChange  func([]string)

	gesture  gestureState
	previews map[string]previewEntry
	// previewSeq is this engine's monotonic request counter. Per-id ordering
	// follows from a single counter: last request issued for an id wins.
	previewSeq uint64

	log *slog.Logger
}

// NewEngine creates an engine for the given page settings.
func NewEngine(page domain.PageSettings) *Engine {
	return &Engine{
		page:      page,
		selection: make(map[string]struct{}),
		previews:  make(map[string]previewEntry),
		log:       applog.WithComponent("canvas"),
	}
}

// Page returns the current page settings.
func (e *Engine) Page() domain.PageSettings { return e.page }

// SetPage replaces page settings (e.g. after a settings dialog).
func (e *Engine) SetPage(p domain.PageSettings) { e.page = p }

// SetComponents replaces the component list the engine operates on and
// prunes the selection so it remains a subset of the current id set.
// It does not emit OnComponentsChange: the host already knows this list.
func (e *Engine) SetComponents(list []domain.Component) {
	e.components = domain.CloneComponents(list)
	changed := false
	for id := range e.selection {
		if domain.FindComponent(e.components, id) < 0 {
			delete(e.selection, id)
			changed = true
		}
	}
	for id := range e.previews {
		if domain.FindComponent(e.components, id) < 0 {
			delete(e.previews, id)
		}
	}
	if changed {
		e.emitSelection()
	}
}

// Components returns a copy of the current list.
func (e *Engine) Components() []domain.Component {
	return domain.CloneComponents(e.components)
}

// Selection returns the selected ids in sorted order.
func (e *Engine) Selection() []string {
	ids := make([]string, 0, len(e.selection))
	for id := range e.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Selected reports whether the component is in the selection.
func (e *Engine) Selected(id string) bool {
	_, ok := e.selection[id]
	return ok
}

// Select updates the selection. Non-additive: selection becomes {id}, or
// empty if id was already the sole selection (toggle-off). Additive: id is
// added to or removed from the selection (XOR). Selecting never mutates
// geometry. Unknown ids are a no-op.
func (e *Engine) Select(id string, additive bool) {
	if domain.FindComponent(e.components, id) < 0 {
		return
	}
	if additive {
		if _, ok := e.selection[id]; ok {
			delete(e.selection, id)
		} else {
			e.selection[id] = struct{}{}
		}
		e.emitSelection()
		return
	}
	_, sole := e.selection[id]
	if sole && len(e.selection) == 1 {
		delete(e.selection, id)
	} else {
		e.selection = map[string]struct{}{id: {}}
	}
	e.emitSelection()
}

// DeselectAll clears the selection (background click).
func (e *Engine) DeselectAll() {
	if len(e.selection) == 0 {
		return
	}
	e.selection = make(map[string]struct{})
	e.emitSelection()
}

// Move translates a component by (dx, dy), snapping then clamping so the
// result is always fully inside the page and grid-aligned when snapping is
// enabled. A missing id is a no-op, not a fault.
func (e *Engine) Move(id string, dx, dy float64) {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return
	}
	g := e.components[i].Geometry.GeomRect()
	g.X = geom.Snap(g.X+dx, e.page.GridSize, e.page.SnapEnabled)
	g.Y = geom.Snap(g.Y+dy, e.page.GridSize, e.page.SnapEnabled)
	g = geom.Clamp(g, e.geomPage())
	e.components[i].Geometry = domain.RectFrom(g)
	e.log.Debug("move committed", slog.String("id", id), slog.Float64("x", g.X), slog.Float64("y", g.Y))
	e.emitComponents()
}

// Resize applies a handle drag of (dx, dy) to a component. Corner handles
// adjust two dimensions (and origin for n*/w* variants so the opposite edge
// stays fixed); edge handles adjust exactly one dimension (and origin for
// n/w). Width/height are floored at the minimums keeping the fixed edge in
// place, the rect is clamped into the page, then origin and size are snapped
// independently. Unaffected edges are never moved.
func (e *Engine) Resize(id string, h Handle, dx, dy float64) {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return
	}
	g := e.components[i].Geometry.GeomRect()
	g = resizeRect(g, h, dx, dy)
	g = geom.Clamp(g, e.geomPage())
	g = geom.SnapRect(g, e.page.GridSize, e.page.SnapEnabled)
	e.components[i].Geometry = domain.RectFrom(g)
	e.log.Debug("resize committed", slog.String("id", id), slog.String("handle", string(h)))
	e.emitComponents()
}

// resizeRect maps a handle delta onto the affected subset of {x,y,w,h} and
// floors sizes at the minimums without moving the edge opposite the handle.
func resizeRect(g geom.Rect, h Handle, dx, dy float64) geom.Rect {
	right := g.X + g.W
	bottom := g.Y + g.H
	switch h {
	case HandleE:
		g.W += dx
	case HandleW:
		g.X += dx
		g.W -= dx
	case HandleS:
		g.H += dy
	case HandleN:
		g.Y += dy
		g.H -= dy
	case HandleSE:
		g.W += dx
		g.H += dy
	case HandleSW:
		g.X += dx
		g.W -= dx
		g.H += dy
	case HandleNE:
		g.W += dx
		g.Y += dy
		g.H -= dy
	case HandleNW:
		g.X += dx
		g.W -= dx
		g.Y += dy
		g.H -= dy
	default:
		return g
	}
	if g.W < geom.MinWidth {
		g.W = geom.MinWidth
		if h == HandleW || h == HandleSW || h == HandleNW {
			g.X = right - g.W
		}
	}
	if g.H < geom.MinHeight {
		g.H = geom.MinHeight
		if h == HandleN || h == HandleNE || h == HandleNW {
			g.Y = bottom - g.H
		}
	}
	return g
}

// Delete removes the component from the list and from the selection. The
// zIndex of remaining components is not renumbered.
func (e *Engine) Delete(id string) {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return
	}
	e.components = append(e.components[:i], e.components[i+1:]...)
	delete(e.previews, id)
	if _, ok := e.selection[id]; ok {
		delete(e.selection, id)
		e.emitSelection()
	}
	e.log.Debug("component deleted", slog.String("id", id))
	e.emitComponents()
}

// Add creates a component of the given type at the next cascade slot and
// selects it.
func (e *Engine) Add(t domain.ComponentType) domain.Component {
	c := domain.NewComponent(t, e.components, e.page)
	e.components = append(e.components, c)
	e.selection = map[string]struct{}{c.ID: {}}
	e.emitComponents()
	e.emitSelection()
	return c
}

// Replace swaps in an entirely new component list (e.g. an applied layout
// suggestion) and clears the selection.
func (e *Engine) Replace(list []domain.Component) {
	e.components = domain.CloneComponents(list)
	e.previews = make(map[string]previewEntry)
	if len(e.selection) > 0 {
		e.selection = make(map[string]struct{})
		e.emitSelection()
	}
	e.emitComponents()
}

// AlignSelection applies an alignment operation to the selected set.
func (e *Engine) AlignSelection(op AlignOp) {
	out, changed := Align(e.components, e.selection, op, e.page.GridSize, e.page.SnapEnabled)
	if !changed {
		return
	}
	e.components = out
	e.emitComponents()
}

// DistributeSelection applies a distribution operation to the selected set.
func (e *Engine) DistributeSelection(axis Axis) {
	out, changed := Distribute(e.components, e.selection, axis, e.page.GridSize, e.page.SnapEnabled)
	if !changed {
		return
	}
	e.components = out
	e.emitComponents()
}

func (e *Engine) geomPage() geom.Page {
	return geom.Page{Width: e.page.Width, Height: e.page.Height, MinY: e.page.MinY}
}

func (e *Engine) emitComponents() {
	if e.OnComponentsChange != nil {
		e.OnComponentsChange(domain.CloneComponents(e.components))
	}
}

func (e *Engine) emitSelection() {
	if e.OnSelectionChange != nil {
		e.OnSelectionChange(e.Selection())
	}
}
