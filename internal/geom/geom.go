/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Basic 2D geometry and page-constraint helpers for the report canvas.
// These utilities are UI-agnostic and deterministic to enable unit testing
// and reuse across different frontends.

import "math"

// Minimum dimensions for a placed component. Any computed width/height below
// these values is raised to the minimum before snapping.
const (
	MinWidth  = 50.0
	MinHeight = 30.0
)

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt     { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt     { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt  { return Pt{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

func (r Rect) Intersection(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.W, o.X+o.W)
	y1 := math.Min(r.Y+r.H, o.Y+o.H)
	w := x1 - x0
	h := y1 - y0
	if w <= 0 || h <= 0 {
		return R(0, 0, 0, 0)
	}
	return R(x0, y0, w, h)
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Page describes the drawable page for clamping purposes. MinY is a small
// positive offset reserved for page chrome (ruler/toolbar strip).
type Page struct {
	Width  float64
	Height float64
	MinY   float64
}

// Snap rounds value to the nearest multiple of gridSize when enabled.
// It is a pure, total function; gridSize must be > 0 for snapping to apply.
func Snap(value, gridSize float64, enabled bool) float64 {
	if !enabled || gridSize <= 0 {
		return value
	}
	return math.Round(value/gridSize) * gridSize
}

// SnapRect snaps origin and size of r independently.
func SnapRect(r Rect, gridSize float64, enabled bool) Rect {
	return Rect{
		X: Snap(r.X, gridSize, enabled),
		Y: Snap(r.Y, gridSize, enabled),
		W: Snap(r.W, gridSize, enabled),
		H: Snap(r.H, gridSize, enabled),
	}
}

// Clamp constrains r to lie fully inside the page:
// x in [0, pageWidth-width], y in [minY, pageHeight-height].
// The rect's size is not changed here; callers floor it at the minimums
// first (see MinSize).
func Clamp(r Rect, page Page) Rect {
	maxX := page.Width - r.W
	if maxX < 0 {
		maxX = 0
	}
	maxY := page.Height - r.H
	if maxY < page.MinY {
		maxY = page.MinY
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.X > maxX {
		r.X = maxX
	}
	if r.Y < page.MinY {
		r.Y = page.MinY
	}
	if r.Y > maxY {
		r.Y = maxY
	}
	return r
}

// MinSize raises width/height below the hard minimums to the minimum.
func MinSize(r Rect) Rect {
	if r.W < MinWidth {
		r.W = MinWidth
	}
	if r.H < MinHeight {
		r.H = MinHeight
	}
	return r
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
