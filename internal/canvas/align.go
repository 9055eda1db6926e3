/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"sort"

	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
)

// Batch geometry transforms over a selected subset. Both Align and
// Distribute are pure: they return a new component list, touch only members
// of the selection, and preserve order and zIndex of everything else.

// AlignOp names an alignment operation.
type AlignOp string

const (
	AlignLeft    AlignOp = "left"
	AlignRight   AlignOp = "right"
	AlignCenterX AlignOp = "center"
	AlignTop     AlignOp = "top"
	AlignBottom  AlignOp = "bottom"
	AlignMiddleY AlignOp = "middle"
)

// Axis selects the distribution direction.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Align applies op to the selected members (at least 2 required) and returns
// the new list. The second return is false when nothing was applicable.
func Align(components []domain.Component, selected map[string]struct{}, op AlignOp, gridSize float64, snap bool) ([]domain.Component, bool) {
	idx := selectedIndexes(components, selected)
	if len(idx) < 2 {
		return components, false
	}

	// Reference value over the selected set S.
	var ref float64
	switch op {
	case AlignLeft:
		ref = minOver(components, idx, func(r domain.Rect) float64 { return r.X })
	case AlignRight:
		ref = maxOver(components, idx, func(r domain.Rect) float64 { return r.X + r.Width })
	case AlignCenterX:
		ref = meanOver(components, idx, func(r domain.Rect) float64 { return r.X + r.Width/2 })
	case AlignTop:
		ref = minOver(components, idx, func(r domain.Rect) float64 { return r.Y })
	case AlignBottom:
		ref = maxOver(components, idx, func(r domain.Rect) float64 { return r.Y + r.Height })
	case AlignMiddleY:
		ref = meanOver(components, idx, func(r domain.Rect) float64 { return r.Y + r.Height/2 })
	default:
		return components, false
	}

	out := domain.CloneComponents(components)
	for _, i := range idx {
		g := &out[i].Geometry
		switch op {
		case AlignLeft:
			g.X = geom.Snap(ref, gridSize, snap)
		case AlignRight:
			g.X = geom.Snap(ref-g.Width, gridSize, snap)
		case AlignCenterX:
			g.X = geom.Snap(ref-g.Width/2, gridSize, snap)
		case AlignTop:
			g.Y = geom.Snap(ref, gridSize, snap)
		case AlignBottom:
			g.Y = geom.Snap(ref-g.Height, gridSize, snap)
		case AlignMiddleY:
			g.Y = geom.Snap(ref-g.Height/2, gridSize, snap)
		}
	}
	return out, true
}

// Distribute spaces the selected members (at least 3 required) evenly along
// the axis. Members are sorted by leading coordinate; the first and last
// stay put (they define the span) and each member in between is placed at
// previousTrailing + gap, where gap = (span - usedSpace) / (n-1). Gaps are
// equal up to grid-snap rounding (at most one grid unit apart).
func Distribute(components []domain.Component, selected map[string]struct{}, axis Axis, gridSize float64, snap bool) ([]domain.Component, bool) {
	idx := selectedIndexes(components, selected)
	if len(idx) < 3 {
		return components, false
	}

	lead := func(r domain.Rect) float64 { return r.X }
	size := func(r domain.Rect) float64 { return r.Width }
	if axis == Vertical {
		lead = func(r domain.Rect) float64 { return r.Y }
		size = func(r domain.Rect) float64 { return r.Height }
	}

	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool {
		return lead(components[order[a]].Geometry) < lead(components[order[b]].Geometry)
	})

	first := components[order[0]].Geometry
	last := components[order[len(order)-1]].Geometry
	span := lead(last) + size(last) - lead(first)
	var used float64
	for _, i := range order {
		used += size(components[i].Geometry)
	}
	gap := (span - used) / float64(len(order)-1)

	out := domain.CloneComponents(components)
	prevTrailing := lead(first) + size(first)
	for k := 1; k < len(order)-1; k++ {
		i := order[k]
		pos := geom.Snap(prevTrailing+gap, gridSize, snap)
		if axis == Vertical {
			out[i].Geometry.Y = pos
		} else {
			out[i].Geometry.X = pos
		}
		prevTrailing = pos + size(out[i].Geometry)
	}
	return out, true
}

func selectedIndexes(components []domain.Component, selected map[string]struct{}) []int {
	var idx []int
	for i := range components {
		if _, ok := selected[components[i].ID]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

func minOver(cs []domain.Component, idx []int, f func(domain.Rect) float64) float64 {
	v := f(cs[idx[0]].Geometry)
	for _, i := range idx[1:] {
		if x := f(cs[i].Geometry); x < v {
			v = x
		}
	}
	return v
}

func maxOver(cs []domain.Component, idx []int, f func(domain.Rect) float64) float64 {
	v := f(cs[idx[0]].Geometry)
	for _, i := range idx[1:] {
		if x := f(cs[i].Geometry); x > v {
			v = x
		}
	}
	return v
}

func meanOver(cs []domain.Component, idx []int, f func(domain.Rect) float64) float64 {
	var sum float64
	for _, i := range idx {
		sum += f(cs[i].Geometry)
	}
	return sum / float64(len(idx))
}
