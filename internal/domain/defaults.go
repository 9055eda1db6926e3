/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"

	"github.com/google/uuid"

	"reportstudio/internal/geom"
)

// Default size for newly placed components.
const (
	DefaultWidth  = 300.0
	DefaultHeight = 200.0

	// cascadeStep is the offset between consecutively created components so
	// new ones never fully cover the previous one.
	cascadeStep = 20.0
)

// currentConfigVersion is stamped into every config bag this code produces.
const currentConfigVersion = 1

// NewComponent creates a component of the given type with a generated id,
// deterministic cascading placement relative to the components already on
// the page, default 300x200 size, and a type-appropriate default config.
// ZIndex is one above the current maximum.
func NewComponent(t ComponentType, existing []Component, page PageSettings) Component {
	c := Component{
		ID:        uuid.NewString(),
		Type:      t,
		Geometry:  placeCascading(len(existing), page),
		ZIndex:    nextZIndex(existing),
		IsVisible: true,
	}
	applyDefaultConfig(&c)
	return c
}

// placeCascading computes the n-th cascade slot: each new component is offset
// by cascadeStep from the previous, wrapping back to the top-left corner when
// the default-size rect would leave the page. Placement is reproducible for
// a given component count and page.
func placeCascading(n int, page PageSettings) Rect {
	maxX := page.Width - DefaultWidth
	maxY := page.Height - DefaultHeight
	if maxX < 0 {
		maxX = 0
	}
	if maxY < page.MinY {
		maxY = page.MinY
	}
	perCol := 1
	if maxY > page.MinY {
		perCol = int((maxY-page.MinY)/cascadeStep) + 1
	}
	col := n / perCol
	row := n % perCol
	x := float64(col)*cascadeStep + float64(row)*cascadeStep
	y := page.MinY + float64(row)*cascadeStep
	r := Rect{X: x, Y: y, Width: DefaultWidth, Height: DefaultHeight}
	g := geom.Clamp(geom.R(r.X, r.Y, r.Width, r.Height), geom.Page{Width: page.Width, Height: page.Height, MinY: page.MinY})
	g = geom.SnapRect(g, page.GridSize, page.SnapEnabled)
	return Rect{X: g.X, Y: g.Y, Width: g.W, Height: g.H}
}

func nextZIndex(existing []Component) int {
	maxZ := -1
	for _, c := range existing {
		if c.ZIndex > maxZ {
			maxZ = c.ZIndex
		}
	}
	return maxZ + 1
}

func applyDefaultConfig(c *Component) {
	switch c.Type {
	case TypeTable:
		c.Table = &TableConfig{ConfigVersion: currentConfigVersion, PageSize: 10, ShowHeaders: true}
		c.Data = &DataConfig{ConfigVersion: currentConfigVersion}
	case TypeChart:
		c.Chart = &ChartConfig{ConfigVersion: currentConfigVersion, ChartType: ChartBar, ShowLegend: true}
		c.Data = &DataConfig{ConfigVersion: currentConfigVersion}
	case TypeBarcode:
		c.Barcode = &BarcodeConfig{ConfigVersion: currentConfigVersion, BarcodeType: "code128", ShowText: true}
	case TypeText:
		c.Text = &TextConfig{ConfigVersion: currentConfigVersion, Content: "Double-click to edit text", Align: "left"}
	case TypeImage:
		c.Image = &ImageConfig{ConfigVersion: currentConfigVersion, Fit: "contain"}
	case TypeDrillDown:
		c.DrillDown = &DrillDownConfig{ConfigVersion: currentConfigVersion}
		c.Data = &DataConfig{ConfigVersion: currentConfigVersion}
	case TypeSubReport:
		c.SubReport = &SubReportConfig{ConfigVersion: currentConfigVersion}
	}
}

// Validate checks required fields and geometry minimums. It is used
// defensively (logging/diagnostics), not for control flow: geometry
// operations clamp rather than reject.
func Validate(c Component) error {
	if c.ID == "" {
		return fmt.Errorf("component has empty id")
	}
	valid := false
	for _, t := range ComponentTypes {
		if c.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("component %s: unknown type %q", c.ID, c.Type)
	}
	if c.Geometry.X < 0 || c.Geometry.Y < 0 {
		return fmt.Errorf("component %s: negative origin (%v,%v)", c.ID, c.Geometry.X, c.Geometry.Y)
	}
	if c.Geometry.Width < geom.MinWidth || c.Geometry.Height < geom.MinHeight {
		return fmt.Errorf("component %s: size %vx%v below minimum %vx%v",
			c.ID, c.Geometry.Width, c.Geometry.Height, geom.MinWidth, geom.MinHeight)
	}
	return nil
}

// FindComponent returns the index of the component with the given id, or -1.
func FindComponent(list []Component, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// MergeDatasources folds incoming datasources into an existing list: an
// incoming entry replaces the existing one with the same alias in place,
// otherwise it is appended. Existing order is preserved.
func MergeDatasources(existing, incoming []Datasource) []Datasource {
	out := append([]Datasource(nil), existing...)
	for _, in := range incoming {
		replaced := false
		for i := range out {
			if out[i].Alias == in.Alias {
				out[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, in)
		}
	}
	return out
}

// CloneComponents returns a deep-enough copy of the list for snapshot and
// pure-transform purposes: the slice and every config pointer are copied.
func CloneComponents(list []Component) []Component {
	out := make([]Component, len(list))
	copy(out, list)
	for i := range out {
		out[i] = cloneComponent(out[i])
	}
	return out
}

func cloneComponent(c Component) Component {
	if c.Data != nil {
		d := *c.Data
		d.Fields = append([]Field(nil), c.Data.Fields...)
		c.Data = &d
	}
	if c.Style != nil {
		s := *c.Style
		c.Style = &s
	}
	if c.Table != nil {
		t := *c.Table
		c.Table = &t
	}
	if c.Chart != nil {
		ch := *c.Chart
		c.Chart = &ch
	}
	if c.Barcode != nil {
		b := *c.Barcode
		c.Barcode = &b
	}
	if c.Text != nil {
		t := *c.Text
		c.Text = &t
	}
	if c.Image != nil {
		im := *c.Image
		c.Image = &im
	}
	if c.DrillDown != nil {
		d := *c.DrillDown
		c.DrillDown = &d
	}
	if c.SubReport != nil {
		s := *c.SubReport
		c.SubReport = &s
	}
	return c
}

// GeomRect converts component geometry to a geom.Rect.
func (r Rect) GeomRect() geom.Rect { return geom.R(r.X, r.Y, r.Width, r.Height) }

// RectFrom converts a geom.Rect back to component geometry.
func RectFrom(g geom.Rect) Rect { return Rect{X: g.X, Y: g.Y, Width: g.W, Height: g.H} }
