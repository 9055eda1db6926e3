//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"

	rcanvas "reportstudio/internal/canvas"
	"reportstudio/internal/domain"
)

func almostEqual(a, b, eps float32) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func testEngine() *rcanvas.Engine {
	page := domain.DefaultPage()
	eng := rcanvas.NewEngine(page)
	bottom := domain.NewComponent(domain.TypeTable, nil, page)
	bottom.ID = "bottom"
	bottom.Geometry = domain.Rect{X: 100, Y: 100, Width: 200, Height: 100}
	bottom.ZIndex = 1
	top := domain.NewComponent(domain.TypeChart, nil, page)
	top.ID = "top"
	top.Geometry = domain.Rect{X: 150, Y: 120, Width: 200, Height: 100}
	top.ZIndex = 2
	eng.SetComponents([]domain.Component{bottom, top})
	return eng
}

func TestDesignCanvas_Defaults(t *testing.T) {
	dc := NewDesignCanvas(testEngine())
	if dc.zoom != 0.8 {
		t.Fatalf("expected default zoom 0.8, got %v", dc.zoom)
	}
	sz := dc.PreferredSize()
	if sz.Width != 820 || sz.Height != 620 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
}

func TestDesignCanvas_CoordinateRoundTrip(t *testing.T) {
	dc := NewDesignCanvas(testEngine())
	dc.offsetX = 33
	dc.offsetY = -12
	pos := dc.toScreen(120, 340)
	x, y := dc.toPage(pos)
	if !almostEqual(float32(x), 120, 0.01) || !almostEqual(float32(y), 340, 0.01) {
		t.Fatalf("round trip mismatch: got (%v, %v)", x, y)
	}
}

func TestDesignCanvas_HitTestHonorsZOrder(t *testing.T) {
	dc := NewDesignCanvas(testEngine())
	// overlap region belongs to the higher z-index component
	if id := dc.hitTest(200, 150); id != "top" {
		t.Fatalf("expected top-most hit, got %q", id)
	}
	if id := dc.hitTest(110, 110); id != "bottom" {
		t.Fatalf("expected bottom component, got %q", id)
	}
	if id := dc.hitTest(700, 700); id != "" {
		t.Fatalf("expected no hit, got %q", id)
	}
}

func TestDesignCanvas_HandleAtSingleSelection(t *testing.T) {
	eng := testEngine()
	dc := NewDesignCanvas(eng)

	// no selection: no handles
	if _, _, ok := dc.handleAt(fyne.NewPos(0, 0)); ok {
		t.Fatalf("expected no handles without selection")
	}

	eng.Select("bottom", false)
	centers, id, ok := dc.handleScreenRects()
	if !ok || id != "bottom" {
		t.Fatalf("expected handles for single selection, got %q %v", id, ok)
	}
	h, hid, ok := dc.handleAt(centers[4]) // SE slot
	if !ok || hid != "bottom" || h != rcanvas.HandleSE {
		t.Fatalf("expected SE handle, got %v %q %v", h, hid, ok)
	}

	// multi selection disables handles
	eng.Select("top", true)
	if _, _, ok := dc.handleAt(centers[4]); ok {
		t.Fatalf("expected no handles for multi selection")
	}
}

func TestDesignCanvas_LayoutGeometry(t *testing.T) {
	eng := testEngine()
	dc := NewDesignCanvas(eng)
	r, ok := dc.CreateRenderer().(*designRenderer)
	if !ok {
		t.Fatalf("expected designRenderer, got %T", dc.CreateRenderer())
	}

	containerSize := fyne.NewSize(1200, 900)
	r.Layout(containerSize)

	page := eng.Page()
	expectedW := float32(page.Width) * dc.zoom
	expectedH := float32(page.Height) * dc.zoom
	if !almostEqual(r.page.Size().Width, expectedW, 0.2) || !almostEqual(r.page.Size().Height, expectedH, 0.2) {
		t.Fatalf("unexpected page size: got %v, want approx (%v x %v)", r.page.Size(), expectedW, expectedH)
	}
	if len(r.rects) != 2 {
		t.Fatalf("expected 2 component rects, got %d", len(r.rects))
	}

	// pan offset moves the page
	oldX := r.page.Position().X
	dc.offsetX += 100
	r.Layout(containerSize)
	if r.page.Position().X <= oldX+80 {
		t.Fatalf("expected page to move with pan offset")
	}

	// adding a component triggers a rebuild on next layout
	eng.Add(domain.TypeText)
	r.Layout(containerSize)
	if len(r.rects) != 3 {
		t.Fatalf("expected rects to grow to 3, got %d", len(r.rects))
	}
}
