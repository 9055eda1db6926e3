/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package canvas

import (
	"math"
	"reflect"
	"testing"

	"reportstudio/internal/domain"
)

func sel(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestAlignLeftSharesX(t *testing.T) {
	cs := []domain.Component{
		comp("a", 40, 100, 100, 50),
		comp("b", 200, 200, 120, 60),
		comp("c", 555, 300, 80, 40), // not selected
	}
	out, changed := Align(cs, sel("a", "b"), AlignLeft, 10, true)
	if !changed {
		t.Fatalf("expected change")
	}
	if out[0].Geometry.X != 40 || out[1].Geometry.X != 40 {
		t.Fatalf("left align: x=%v,%v want 40", out[0].Geometry.X, out[1].Geometry.X)
	}
	if out[2].Geometry.X != 555 {
		t.Fatalf("non-selected component moved: %v", out[2].Geometry.X)
	}
	// input untouched (pure)
	if cs[1].Geometry.X != 200 {
		t.Fatalf("input list mutated")
	}
}

func TestAlignRightAlignsTrailingEdges(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 100, 100, 50),   // right = 100
		comp("b", 200, 200, 120, 60), // right = 320
	}
	out, _ := Align(cs, sel("a", "b"), AlignRight, 10, true)
	for _, c := range out {
		if c.Geometry.X+c.Geometry.Width != 320 {
			t.Fatalf("right edges differ: %+v", c.Geometry)
		}
	}
}

func TestAlignCenterUsesMean(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 0, 100, 50),   // cx = 50
		comp("b", 200, 0, 100, 60), // cx = 250; mean = 150
	}
	out, _ := Align(cs, sel("a", "b"), AlignCenterX, 10, true)
	if out[0].Geometry.X != 100 || out[1].Geometry.X != 100 {
		t.Fatalf("center align: x=%v,%v want 100", out[0].Geometry.X, out[1].Geometry.X)
	}
}

func TestAlignVerticalOps(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 40, 100, 100),  // bottom 140, cy 90
		comp("b", 200, 200, 100, 60), // bottom 260, cy 230
	}
	top, _ := Align(cs, sel("a", "b"), AlignTop, 10, true)
	if top[0].Geometry.Y != 40 || top[1].Geometry.Y != 40 {
		t.Fatalf("top align: %v,%v", top[0].Geometry.Y, top[1].Geometry.Y)
	}
	bottom, _ := Align(cs, sel("a", "b"), AlignBottom, 10, true)
	for _, c := range bottom {
		if c.Geometry.Y+c.Geometry.Height != 260 {
			t.Fatalf("bottom edges differ: %+v", c.Geometry)
		}
	}
	middle, _ := Align(cs, sel("a", "b"), AlignMiddleY, 10, true)
	// mean cy = 160; a.y = 160-50 = 110, b.y = 160-30 = 130
	if middle[0].Geometry.Y != 110 || middle[1].Geometry.Y != 130 {
		t.Fatalf("middle align: %v,%v", middle[0].Geometry.Y, middle[1].Geometry.Y)
	}
}

func TestAlignNeedsTwoSelected(t *testing.T) {
	cs := []domain.Component{comp("a", 40, 100, 100, 50)}
	_, changed := Align(cs, sel("a"), AlignLeft, 10, true)
	if changed {
		t.Fatalf("single selection should be inapplicable")
	}
}

func TestAlignIdempotent(t *testing.T) {
	cs := []domain.Component{
		comp("a", 40, 100, 100, 50),
		comp("b", 200, 200, 120, 60),
	}
	once, _ := Align(cs, sel("a", "b"), AlignLeft, 10, true)
	twice, _ := Align(once, sel("a", "b"), AlignLeft, 10, true)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("re-applying alignment changed the list")
	}
}

func TestDistributeHorizontalExampleScenario(t *testing.T) {
	// 3 components at x=0,w=100; x=150,w=100; x=500,w=100:
	// span = 600-0, used = 300, gap = (600-300-... ) => first/last fixed,
	// middle lands at 0+100+150 = 250.
	cs := []domain.Component{
		comp("a", 0, 100, 100, 50),
		comp("b", 150, 100, 100, 50),
		comp("c", 500, 100, 100, 50),
	}
	out, changed := Distribute(cs, sel("a", "b", "c"), Horizontal, 10, true)
	if !changed {
		t.Fatalf("expected change")
	}
	if out[0].Geometry.X != 0 || out[2].Geometry.X != 500 {
		t.Fatalf("first/last should be fixed: %v, %v", out[0].Geometry.X, out[2].Geometry.X)
	}
	if out[1].Geometry.X != 250 {
		t.Fatalf("middle = %v, want 250", out[1].Geometry.X)
	}
}

func TestDistributeEvenGapInvariant(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 100, 80, 50),
		comp("b", 97, 100, 120, 50),
		comp("c", 312, 100, 60, 50),
		comp("d", 600, 100, 100, 50),
	}
	out, _ := Distribute(cs, sel("a", "b", "c", "d"), Horizontal, 10, true)
	gaps := []float64{
		out[1].Geometry.X - (out[0].Geometry.X + out[0].Geometry.Width),
		out[2].Geometry.X - (out[1].Geometry.X + out[1].Geometry.Width),
		out[3].Geometry.X - (out[2].Geometry.X + out[2].Geometry.Width),
	}
	for i := 1; i < len(gaps); i++ {
		if math.Abs(gaps[i]-gaps[0]) > 10 { // within one grid unit
			t.Fatalf("uneven gaps: %v", gaps)
		}
	}
}

func TestDistributeVertical(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 20, 100, 100),
		comp("b", 0, 140, 100, 100),
		comp("c", 0, 520, 100, 80),
	}
	out, _ := Distribute(cs, sel("a", "b", "c"), Vertical, 10, true)
	if out[0].Geometry.Y != 20 || out[2].Geometry.Y != 520 {
		t.Fatalf("first/last moved: %v, %v", out[0].Geometry.Y, out[2].Geometry.Y)
	}
	// span = 600-20 = 580, used = 280, gap = 150; b at 20+100+150 = 270
	if out[1].Geometry.Y != 270 {
		t.Fatalf("middle y = %v, want 270", out[1].Geometry.Y)
	}
}

func TestDistributeNeedsThree(t *testing.T) {
	cs := []domain.Component{
		comp("a", 0, 100, 100, 50),
		comp("b", 300, 100, 100, 50),
	}
	_, changed := Distribute(cs, sel("a", "b"), Horizontal, 10, true)
	if changed {
		t.Fatalf("two members should be inapplicable")
	}
}

func TestDistributePreservesOrderAndUnselected(t *testing.T) {
	cs := []domain.Component{
		comp("x", 700, 500, 80, 50), // unselected
		comp("a", 0, 100, 100, 50),
		comp("b", 150, 100, 100, 50),
		comp("c", 500, 100, 100, 50),
	}
	out, _ := Distribute(cs, sel("a", "b", "c"), Horizontal, 10, true)
	if out[0].ID != "x" || out[1].ID != "a" || out[2].ID != "b" || out[3].ID != "c" {
		t.Fatalf("list order changed")
	}
	if out[0].Geometry != cs[0].Geometry {
		t.Fatalf("unselected component moved")
	}
}
