/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package autolayout

import (
	"math"
	"testing"

	"reportstudio/internal/domain"
)

func salesDS() domain.Datasource {
	return domain.Datasource{
		Alias:         "sales",
		DatabaseAlias: "warehouse",
		QueryType:     "visual",
		SelectedFields: []domain.Field{
			{Table: "orders", Field: "created_at", DataType: "timestamp"},
			{Table: "orders", Field: "total_amount", DataType: "decimal"},
			{Table: "orders", Field: "status", DataType: "varchar"},
		},
	}
}

func inventoryDS() domain.Datasource {
	return domain.Datasource{
		Alias:         "inventory",
		DatabaseAlias: "warehouse",
		QueryType:     "visual",
		SelectedFields: []domain.Field{
			{Table: "stock", Field: "item_count", DataType: "integer"},
			{Table: "stock", Field: "category", DataType: "varchar"},
		},
	}
}

func geometries(cs []domain.Component) []domain.Rect {
	out := make([]domain.Rect, len(cs))
	for i, c := range cs {
		out[i] = c.Geometry
	}
	return out
}

func TestGenerateSingleDatasource(t *testing.T) {
	got := Generate([]domain.Datasource{salesDS()}, domain.DefaultPage())
	if len(got) != 3 {
		t.Fatalf("suggestions = %d, want 3 (dashboard, analytical, focus)", len(got))
	}
	want := []Template{TemplateDashboard, TemplateAnalytical, TemplateFocus}
	for i, s := range got {
		if s.Template != want[i] {
			t.Fatalf("suggestion %d = %s, want %s", i, s.Template, want[i])
		}
	}
	for _, s := range got {
		if s.Confidence < 0 || s.Confidence > 1 {
			t.Fatalf("%s confidence %v out of bounds", s.Template, s.Confidence)
		}
		if len(s.Components) == 0 {
			t.Fatalf("%s produced no components", s.Template)
		}
	}
}

func TestGenerateMultipleDatasources(t *testing.T) {
	got := Generate([]domain.Datasource{salesDS(), inventoryDS()}, domain.DefaultPage())
	if len(got) != 3 {
		t.Fatalf("suggestions = %d, want 3 (dashboard, analytical, comparative)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Fatalf("not sorted by confidence: %v then %v", got[i-1].Confidence, got[i].Confidence)
		}
	}
	last := got[len(got)-1]
	if last.Template != TemplateComparative {
		t.Fatalf("lowest-ranked = %s, want comparative", last.Template)
	}
	// comparative: title + one chart per datasource
	if len(last.Components) != 3 {
		t.Fatalf("comparative components = %d, want 3", len(last.Components))
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	if got := Generate(nil, domain.DefaultPage()); got != nil {
		t.Fatalf("expected no suggestions for empty input, got %d", len(got))
	}
}

func TestLayoutDeterminism(t *testing.T) {
	dss := []domain.Datasource{salesDS(), inventoryDS()}
	page := domain.DefaultPage()
	a := Generate(dss, page)
	b := Generate(dss, page)
	if len(a) != len(b) {
		t.Fatalf("suggestion count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		ga, gb := geometries(a[i].Components), geometries(b[i].Components)
		if len(ga) != len(gb) {
			t.Fatalf("%s: component count differs", a[i].Template)
		}
		for j := range ga {
			if ga[j] != gb[j] {
				t.Fatalf("%s component %d geometry differs: %+v vs %+v", a[i].Template, j, ga[j], gb[j])
			}
		}
	}
}

func TestGeometryIsValidAndOnGrid(t *testing.T) {
	page := domain.DefaultPage()
	for _, s := range Generate([]domain.Datasource{salesDS(), inventoryDS()}, page) {
		for _, c := range s.Components {
			g := c.Geometry
			if g.Width < 50 || g.Height < 30 {
				t.Fatalf("%s/%s below minimum size: %+v", s.Template, c.Type, g)
			}
			if g.X < 0 || g.X+g.Width > page.Width {
				t.Fatalf("%s/%s horizontally out of page: %+v", s.Template, c.Type, g)
			}
			if g.Y < page.MinY {
				t.Fatalf("%s/%s above minY: %+v", s.Template, c.Type, g)
			}
			for _, v := range []float64{g.X, g.Y, g.Width, g.Height} {
				if math.Mod(v, page.GridSize) != 0 {
					t.Fatalf("%s/%s off grid: %+v", s.Template, c.Type, g)
				}
			}
		}
	}
}

func TestDashboardShape(t *testing.T) {
	s := Generate([]domain.Datasource{salesDS(), inventoryDS()}, domain.DefaultPage())[0]
	if s.Template != TemplateDashboard {
		t.Fatalf("highest-ranked = %s", s.Template)
	}
	var texts, charts, tables int
	for _, c := range s.Components {
		switch c.Type {
		case domain.TypeText:
			texts++
		case domain.TypeChart:
			charts++
		case domain.TypeTable:
			tables++
		}
	}
	// title + 2 KPI cards (both datasources have numeric fields), 2 charts, 1 table
	if texts != 3 || charts != 2 || tables != 1 {
		t.Fatalf("dashboard shape = %d texts / %d charts / %d tables", texts, charts, tables)
	}
	last := s.Components[len(s.Components)-1]
	if last.Type != domain.TypeTable || last.DatasourceAlias != "sales" {
		t.Fatalf("detail table should bind the first datasource: %+v", last)
	}
	if last.Table == nil || !last.Table.ShowHeaders {
		t.Fatalf("detail table config missing")
	}
}

func TestAnalyticalOneChartPerPattern(t *testing.T) {
	// sales yields temporal+numerical+categorical, inventory numerical+categorical
	got := Generate([]domain.Datasource{salesDS(), inventoryDS()}, domain.DefaultPage())
	var analytical LayoutSuggestion
	for _, s := range got {
		if s.Template == TemplateAnalytical {
			analytical = s
		}
	}
	charts := 0
	prevY := -1.0
	for _, c := range analytical.Components {
		if c.Type != domain.TypeChart {
			continue
		}
		charts++
		if c.Geometry.Y <= prevY {
			t.Fatalf("charts not stacked with increasing y: %v after %v", c.Geometry.Y, prevY)
		}
		prevY = c.Geometry.Y
	}
	if charts != 5 {
		t.Fatalf("analytical charts = %d, want 5", charts)
	}
}

func TestFocusUsesBestPattern(t *testing.T) {
	got := Generate([]domain.Datasource{salesDS()}, domain.DefaultPage())
	var focus LayoutSuggestion
	for _, s := range got {
		if s.Template == TemplateFocus {
			focus = s
		}
	}
	var chart *domain.Component
	for i := range focus.Components {
		if focus.Components[i].Type == domain.TypeChart {
			chart = &focus.Components[i]
		}
	}
	if chart == nil {
		t.Fatalf("focus has no chart")
	}
	// temporal wins over numerical and categorical
	if chart.Chart.ChartType != domain.ChartLine {
		t.Fatalf("focus chart type = %s, want line", chart.Chart.ChartType)
	}
	table := focus.Components[len(focus.Components)-1]
	if table.Type != domain.TypeTable || table.Data == nil || len(table.Data.Fields) != 3 {
		t.Fatalf("focus detail table should carry all fields: %+v", table)
	}
}

func TestApplyGeneratesFreshIDs(t *testing.T) {
	s := Generate([]domain.Datasource{salesDS()}, domain.DefaultPage())[0]
	applied := Apply(s)
	if len(applied) != len(s.Components) {
		t.Fatalf("apply changed component count")
	}
	for i := range applied {
		if applied[i].ID == s.Components[i].ID {
			t.Fatalf("component %d kept its id", i)
		}
		if applied[i].ID == "" {
			t.Fatalf("component %d has empty id", i)
		}
		if applied[i].Geometry != s.Components[i].Geometry {
			t.Fatalf("apply changed geometry of component %d", i)
		}
	}
	// applying twice yields two distinct id sets
	again := Apply(s)
	for i := range again {
		if again[i].ID == applied[i].ID {
			t.Fatalf("repeated apply reused an id")
		}
	}
}
