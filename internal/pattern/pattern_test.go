/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package pattern

import (
	"testing"

	"reportstudio/internal/domain"
)

func ds(fields ...domain.Field) domain.Datasource {
	return domain.Datasource{Alias: "orders", QueryType: "visual", SelectedFields: fields}
}

func TestAnalyzeTemporalByNameAndType(t *testing.T) {
	byName := Analyze(ds(domain.Field{Field: "created_at", DataType: "varchar"}))
	found := false
	for _, p := range byName {
		if p.Kind == Temporal {
			found = true
			if p.Confidence != 0.9 {
				t.Fatalf("temporal confidence = %v", p.Confidence)
			}
			if p.SuggestedChart != domain.ChartLine {
				t.Fatalf("temporal chart = %v", p.SuggestedChart)
			}
		}
	}
	if !found {
		t.Fatalf("name keyword 'created' not classified temporal")
	}

	byType := Analyze(ds(domain.Field{Field: "ordered", DataType: "timestamptz"}))
	if len(byType) == 0 || byType[0].Kind != Temporal {
		t.Fatalf("declared type 'timestamptz' not classified temporal: %+v", byType)
	}
}

func TestAnalyzeNumericalAndCategorical(t *testing.T) {
	ps := Analyze(ds(
		domain.Field{Field: "total_amount", DataType: "numeric"},
		domain.Field{Field: "status", DataType: "varchar"},
	))
	if len(ps) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(ps))
	}
	if ps[0].Kind != Numerical || ps[0].Confidence != 0.8 || ps[0].SuggestedChart != domain.ChartBar {
		t.Fatalf("numerical pattern wrong: %+v", ps[0])
	}
	if ps[1].Kind != Categorical || ps[1].Confidence != 0.7 || ps[1].SuggestedChart != domain.ChartPie {
		t.Fatalf("categorical pattern wrong: %+v", ps[1])
	}
}

func TestFieldMayAppearInMultiplePatterns(t *testing.T) {
	// order_status_date is temporal (date) and categorical (status) evidence.
	ps := Analyze(ds(domain.Field{Field: "order_status_date", DataType: "varchar"}))
	kinds := map[Kind]bool{}
	for _, p := range ps {
		kinds[p.Kind] = true
	}
	if !kinds[Temporal] || !kinds[Categorical] {
		t.Fatalf("expected field in both temporal and categorical, got %v", kinds)
	}
}

func TestAnalyzeOmitsUnmatchedFields(t *testing.T) {
	ps := Analyze(ds(domain.Field{Field: "payload", DataType: "bytea"}))
	if len(ps) != 0 {
		t.Fatalf("expected no pattern for unmatched field, got %+v", ps)
	}
}

func TestConfidenceBounds(t *testing.T) {
	ps := Analyze(ds(
		domain.Field{Field: "created_at", DataType: "timestamp"},
		domain.Field{Field: "price", DataType: "decimal"},
		domain.Field{Field: "category", DataType: "text"},
	))
	for _, p := range ps {
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Fatalf("confidence %v out of [0,1]", p.Confidence)
		}
	}
}

func TestBestPrecedenceIsTemporalFirst(t *testing.T) {
	p, ok := Best(ds(
		domain.Field{Field: "order_status_date", DataType: "varchar"},
		domain.Field{Field: "amount", DataType: "numeric"},
	))
	if !ok {
		t.Fatalf("expected a best pattern")
	}
	if p.Kind != Temporal {
		t.Fatalf("precedence should pick temporal, got %v", p.Kind)
	}
	if _, ok := Best(ds(domain.Field{Field: "payload", DataType: "bytea"})); ok {
		t.Fatalf("expected no best pattern for unmatched fields")
	}
}

func TestFirstNumericField(t *testing.T) {
	f, ok := FirstNumericField(ds(
		domain.Field{Field: "status", DataType: "varchar"},
		domain.Field{Field: "price", DataType: "decimal"},
		domain.Field{Field: "total", DataType: "varchar"},
	))
	if !ok || f.Field != "price" {
		t.Fatalf("FirstNumericField = %+v ok=%v", f, ok)
	}
	if _, ok := FirstNumericField(ds(domain.Field{Field: "notes", DataType: "bytea"})); ok {
		t.Fatalf("expected no numeric field")
	}
}
