/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package autolayout generates ranked candidate page layouts from a set of
// datasources. Each template is a deterministic placement function: the same
// datasources and page settings always produce the same geometry (component
// ids differ between calls). Templates whose applicability condition is not
// met are omitted from the result, never reported as errors.
package autolayout

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"reportstudio/internal/domain"
)

// Template names a layout strategy.
type Template string

const (
	TemplateDashboard   Template = "dashboard"
	TemplateAnalytical  Template = "analytical"
	TemplateFocus       Template = "focus"
	TemplateComparative Template = "comparative"
)

// LayoutSuggestion is one complete candidate component list for the page.
type LayoutSuggestion struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Template    Template           `json:"template"`
	Components  []domain.Component `json:"components"`
	Reasoning   string             `json:"reasoning"`
	Confidence  float64            `json:"confidence"`
}

// Generate produces 0-4 suggestions for the datasources, sorted descending
// by confidence. An empty datasource list yields no suggestions.
func Generate(dss []domain.Datasource, page domain.PageSettings) []LayoutSuggestion {
	if len(dss) == 0 {
		return nil
	}
	var out []LayoutSuggestion
	out = append(out, LayoutSuggestion{
		ID:          uuid.NewString(),
		Name:        "Dashboard",
		Description: "KPI cards, charts and a detail table",
		Template:    TemplateDashboard,
		Components:  dashboardLayout(dss, page),
		Reasoning:   fmt.Sprintf("overview of %d datasource(s) with key figures on top", len(dss)),
		Confidence:  0.90,
	})
	out = append(out, LayoutSuggestion{
		ID:          uuid.NewString(),
		Name:        "Analytical",
		Description: "One full-width chart per detected pattern",
		Template:    TemplateAnalytical,
		Components:  analyticalLayout(dss, page),
		Reasoning:   "every detected pattern gets its own full-width visualization",
		Confidence:  0.85,
	})
	if len(dss) == 1 {
		out = append(out, LayoutSuggestion{
			ID:          uuid.NewString(),
			Name:        "Focus",
			Description: "One large chart with a full detail table",
			Template:    TemplateFocus,
			Components:  focusLayout(dss[0], page),
			Reasoning:   fmt.Sprintf("single datasource %q examined in depth", dss[0].Alias),
			Confidence:  0.80,
		})
	}
	if len(dss) >= 2 {
		out = append(out, LayoutSuggestion{
			ID:          uuid.NewString(),
			Name:        "Comparative",
			Description: "Datasources side by side",
			Template:    TemplateComparative,
			Components:  comparativeLayout(dss, page),
			Reasoning:   fmt.Sprintf("%d datasources compared with their best-fit charts", len(dss)),
			Confidence:  0.75,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Confidence > out[b].Confidence })
	return out
}

// Apply returns the suggestion's component list with freshly generated ids,
// so applying the same suggestion twice (or over an existing page) can never
// collide with ids already known to the host.
func Apply(s LayoutSuggestion) []domain.Component {
	out := domain.CloneComponents(s.Components)
	for i := range out {
		out[i].ID = uuid.NewString()
	}
	return out
}
