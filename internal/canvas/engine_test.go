/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package canvas

import (
	"math"
	"testing"

	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
)

func testPage() domain.PageSettings {
	return domain.PageSettings{Width: 800, Height: 600, GridSize: 10, SnapEnabled: true, MinY: 20}
}

func comp(id string, x, y, w, h float64) domain.Component {
	return domain.Component{
		ID:        id,
		Type:      domain.TypeText,
		Geometry:  domain.Rect{X: x, Y: y, Width: w, Height: h},
		IsVisible: true,
		Text:      &domain.TextConfig{ConfigVersion: 1, Content: id},
	}
}

func newTestEngine(cs ...domain.Component) *Engine {
	e := NewEngine(testPage())
	e.SetComponents(cs)
	return e
}

func gridAligned(t *testing.T, r domain.Rect, grid float64) {
	t.Helper()
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.Mod(v, grid) != 0 {
			t.Fatalf("value %v not a multiple of grid %v (rect %+v)", v, grid, r)
		}
	}
}

func TestSelectToggleAndXOR(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100), comp("b", 300, 100, 100, 100))

	e.Select("a", false)
	if got := e.Selection(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("selection = %v", got)
	}
	// selecting the sole selected id again toggles off
	e.Select("a", false)
	if got := e.Selection(); len(got) != 0 {
		t.Fatalf("toggle-off failed: %v", got)
	}
	// additive adds, then removes (XOR)
	e.Select("a", true)
	e.Select("b", true)
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("additive select = %v", got)
	}
	e.Select("a", true)
	if got := e.Selection(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("additive deselect = %v", got)
	}
	// non-additive replaces a multi-selection
	e.Select("a", true)
	e.Select("b", false)
	if got := e.Selection(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("replace selection = %v", got)
	}
}

func TestSelectUnknownIDIsNoop(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	e.Select("ghost", false)
	if len(e.Selection()) != 0 {
		t.Fatalf("unknown id selected")
	}
}

func TestSelectNeverMutatesGeometry(t *testing.T) {
	a := comp("a", 105, 105, 100, 100) // intentionally off-grid
	e := newTestEngine(a)
	e.Select("a", false)
	got := e.Components()[0].Geometry
	if got != a.Geometry {
		t.Fatalf("select mutated geometry: %+v", got)
	}
}

func TestMoveSnapsAndClamps(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	e.Move("a", 13, 27)
	g := e.Components()[0].Geometry
	if g.X != 110 || g.Y != 130 {
		t.Fatalf("move = (%v,%v), want (110,130)", g.X, g.Y)
	}
	gridAligned(t, g, 10)

	// drag far off the page: clamped to bounds
	e.Move("a", 10000, 10000)
	g = e.Components()[0].Geometry
	if g.X != 800-100 || g.Y != 600-100 {
		t.Fatalf("clamp failed: %+v", g)
	}
	e.Move("a", -10000, -10000)
	g = e.Components()[0].Geometry
	if g.X != 0 || g.Y != 20 {
		t.Fatalf("clamp to origin/minY failed: %+v", g)
	}
}

func TestMoveBoundsInvariant(t *testing.T) {
	page := testPage()
	e := newTestEngine(comp("a", 200, 200, 120, 80))
	for _, d := range []struct{ dx, dy float64 }{{5, 5}, {-500, 0}, {0, 900}, {643, -643}, {1, 1}} {
		e.Move("a", d.dx, d.dy)
		g := e.Components()[0].Geometry
		if g.X < 0 || g.X > page.Width-g.Width || g.Y < page.MinY || g.Y > page.Height-g.Height {
			t.Fatalf("out of bounds after move %+v: %+v", d, g)
		}
		gridAligned(t, g, page.GridSize)
	}
}

func TestMoveUnknownIDIsNoop(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	before := e.Components()
	e.Move("ghost", 50, 50)
	after := e.Components()
	if before[0].Geometry != after[0].Geometry {
		t.Fatalf("move of unknown id changed list")
	}
}

func TestResizeEastAdjustsOnlyWidth(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	e.Resize("a", HandleE, 55, 99)
	g := e.Components()[0].Geometry
	if g.X != 100 || g.Y != 100 || g.Height != 100 {
		t.Fatalf("east resize moved unaffected edges: %+v", g)
	}
	if g.Width != 160 {
		t.Fatalf("width = %v, want 160 (100+55 snapped)", g.Width)
	}
}

func TestResizeWestKeepsRightEdgeFixed(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 200, 100))
	e.Resize("a", HandleW, 50, 0)
	g := e.Components()[0].Geometry
	if g.X+g.Width != 300 {
		t.Fatalf("right edge moved: x=%v w=%v", g.X, g.Width)
	}
	if g.X != 150 || g.Width != 150 {
		t.Fatalf("west resize = %+v", g)
	}
}

func TestResizeNorthWestCorner(t *testing.T) {
	e := newTestEngine(comp("a", 200, 200, 200, 200))
	e.Resize("a", HandleNW, 30, 40)
	g := e.Components()[0].Geometry
	if g.X != 230 || g.Y != 240 {
		t.Fatalf("origin = (%v,%v)", g.X, g.Y)
	}
	if g.X+g.Width != 400 || g.Y+g.Height != 400 {
		t.Fatalf("opposite corner moved: %+v", g)
	}
}

func TestResizeMinimumSizeInvariant(t *testing.T) {
	for _, h := range []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW} {
		e := newTestEngine(comp("a", 200, 200, 100, 100))
		e.Resize("a", h, -5000, -5000)
		g := e.Components()[0].Geometry
		if g.Width < geom.MinWidth || g.Height < geom.MinHeight {
			t.Fatalf("handle %s produced %vx%v below minimum", h, g.Width, g.Height)
		}
		gridAligned(t, g, 10)
	}
}

func TestResizeMinimumKeepsFixedEdge(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 200, 200))
	e.Resize("a", HandleW, 5000, 0) // collapse from the left
	g := e.Components()[0].Geometry
	if g.Width != geom.MinWidth {
		t.Fatalf("width = %v, want min %v", g.Width, geom.MinWidth)
	}
	if g.X+g.Width != 300 {
		t.Fatalf("right edge moved when floored: %+v", g)
	}
}

func TestDeleteRemovesFromListAndSelection(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100), comp("b", 300, 100, 100, 100))
	e.Select("a", false)
	e.Select("b", true)
	e.Delete("a")
	if domain.FindComponent(e.Components(), "a") >= 0 {
		t.Fatalf("component still present after delete")
	}
	for _, id := range e.Selection() {
		if id == "a" {
			t.Fatalf("deleted id still selected")
		}
	}
	// zIndex of remaining components is untouched
	cs := []domain.Component{comp("x", 0, 20, 100, 100), comp("y", 200, 20, 100, 100)}
	cs[0].ZIndex = 5
	cs[1].ZIndex = 9
	e = newTestEngine(cs...)
	e.Delete("x")
	if got := e.Components()[0].ZIndex; got != 9 {
		t.Fatalf("zIndex renumbered: %d", got)
	}
}

func TestDeselectAllOnBackgroundClick(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	e.Select("a", false)
	e.DeselectAll()
	if len(e.Selection()) != 0 {
		t.Fatalf("selection not cleared")
	}
}

func TestSetComponentsPrunesSelection(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100), comp("b", 300, 100, 100, 100))
	e.Select("a", true)
	e.Select("b", true)
	e.SetComponents([]domain.Component{comp("b", 300, 100, 100, 100)})
	got := e.Selection()
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("selection not pruned to subset: %v", got)
	}
}

func TestCallbacksFire(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	var gotComponents []domain.Component
	var gotSelection []string
	e.OnComponentsChange = func(cs []domain.Component) { gotComponents = cs }
	e.OnSelectionChange = func(ids []string) { gotSelection = ids }
	e.Select("a", false)
	if len(gotSelection) != 1 {
		t.Fatalf("selection callback not fired")
	}
	e.Move("a", 10, 0)
	if gotComponents == nil {
		t.Fatalf("components callback not fired")
	}
	if gotComponents[0].Geometry.X != 110 {
		t.Fatalf("callback got stale list: %+v", gotComponents[0].Geometry)
	}
}

func TestAddCreatesAndSelects(t *testing.T) {
	e := newTestEngine()
	c := e.Add(domain.TypeChart)
	if c.Chart == nil {
		t.Fatalf("chart config missing")
	}
	if got := e.Selection(); len(got) != 1 || got[0] != c.ID {
		t.Fatalf("new component not selected: %v", got)
	}
	if len(e.Components()) != 1 {
		t.Fatalf("component not added")
	}
}

func TestReplaceClearsSelectionAndPreviews(t *testing.T) {
	e := newTestEngine(comp("a", 100, 100, 100, 100))
	e.Select("a", false)
	seq, _ := e.BeginPreview("a")
	e.ApplyPreview("a", seq, PreviewData{TotalRows: 1, Rows: []map[string]any{{"x": 1}}}, nil)
	e.Replace([]domain.Component{comp("z", 0, 20, 100, 100)})
	if len(e.Selection()) != 0 {
		t.Fatalf("selection survived replace")
	}
	if _, ok := e.Preview("a"); ok {
		t.Fatalf("preview cache survived replace")
	}
	if domain.FindComponent(e.Components(), "z") < 0 {
		t.Fatalf("replacement list not applied")
	}
}
