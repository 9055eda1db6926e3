/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pattern classifies datasource fields into temporal, numerical and
// categorical patterns using name-keyword and declared-type heuristics. The
// result is ephemeral: it is recomputed from a datasource on demand and
// never persisted.
package pattern

import (
	"strings"

	"reportstudio/internal/domain"
)

// Kind is the heuristic classification of a group of fields.
type Kind string

const (
	Temporal    Kind = "temporal"
	Numerical   Kind = "numerical"
	Categorical Kind = "categorical"
)

// Pattern groups the fields of a datasource that match one classification.
// Confidence is fixed per rule and always within [0,1]. A field may appear
// in more than one pattern: a name like order_status_date is both temporal
// and categorical evidence, and dropping either would starve the layout
// templates of candidates.
type Pattern struct {
	Kind                   Kind
	Confidence             float64
	Fields                 []domain.Field
	SuggestedVisualization domain.ComponentType
	SuggestedChart         domain.ChartType
}

// keyword and type fragments per rule, checked case-insensitively.
var (
	temporalNames = []string{"date", "time", "created", "updated"}
	temporalTypes = []string{"timestamp", "date"}

	numericalTypes = []string{"int", "float", "decimal", "numeric"}
	numericalNames = []string{"amount", "count", "price", "total"}

	categoricalTypes = []string{"varchar", "text"}
	categoricalNames = []string{"category", "type", "status", "name"}
)

// Analyze classifies the fields of a datasource. Patterns are returned in
// detection order (temporal, numerical, categorical); a pattern with no
// matching fields is omitted. Fields matching no rule are omitted entirely.
func Analyze(ds domain.Datasource) []Pattern {
	var temporal, numerical, categorical []domain.Field
	for _, f := range ds.SelectedFields {
		name := strings.ToLower(f.Field)
		typ := strings.ToLower(f.DataType)
		if containsAny(name, temporalNames) || containsAny(typ, temporalTypes) {
			temporal = append(temporal, f)
		}
		if containsAny(typ, numericalTypes) || containsAny(name, numericalNames) {
			numerical = append(numerical, f)
		}
		if containsAny(typ, categoricalTypes) || containsAny(name, categoricalNames) {
			categorical = append(categorical, f)
		}
	}

	var out []Pattern
	if len(temporal) > 0 {
		out = append(out, Pattern{
			Kind:                   Temporal,
			Confidence:             0.9,
			Fields:                 temporal,
			SuggestedVisualization: domain.TypeChart,
			SuggestedChart:         domain.ChartLine,
		})
	}
	if len(numerical) > 0 {
		out = append(out, Pattern{
			Kind:                   Numerical,
			Confidence:             0.8,
			Fields:                 numerical,
			SuggestedVisualization: domain.TypeChart,
			SuggestedChart:         domain.ChartBar,
		})
	}
	if len(categorical) > 0 {
		out = append(out, Pattern{
			Kind:                   Categorical,
			Confidence:             0.7,
			Fields:                 categorical,
			SuggestedVisualization: domain.TypeChart,
			SuggestedChart:         domain.ChartPie,
		})
	}
	return out
}

// Best returns the preferred pattern when exactly one must be chosen.
// Precedence is temporal > numerical > categorical, matching detection
// order, so a field in several categories resolves the same way every time.
// Returns false when the datasource yields no pattern at all.
func Best(ds domain.Datasource) (Pattern, bool) {
	ps := Analyze(ds)
	if len(ps) == 0 {
		return Pattern{}, false
	}
	return ps[0], true
}

// FirstNumericField returns the first field of the datasource that matches
// the numerical rule, for KPI-style placements.
func FirstNumericField(ds domain.Datasource) (domain.Field, bool) {
	for _, f := range ds.SelectedFields {
		name := strings.ToLower(f.Field)
		typ := strings.ToLower(f.DataType)
		if containsAny(typ, numericalTypes) || containsAny(name, numericalNames) {
			return f, true
		}
	}
	return domain.Field{}, false
}

func containsAny(s string, fragments []string) bool {
	for _, frag := range fragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
