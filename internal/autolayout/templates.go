/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package autolayout

import (
	"fmt"

	"github.com/google/uuid"

	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
	"reportstudio/internal/pattern"
)

// Fixed placement metrics shared by all templates. Offsets are grid-friendly
// for the default 10pt grid; computed widths are snapped to the page grid.
const (
	pageMargin  = 20.0
	itemGap     = 20.0
	titleHeight = 40.0

	kpiHeight        = 80.0
	dashboardChartH  = 220.0
	dashboardTableH  = 240.0
	summaryHeight    = 60.0
	analyticalChartH = 200.0
	focusChartH      = 320.0
	focusTableH      = 300.0
	comparativeH     = 280.0

	maxKPICards          = 4
	maxDashboardCharts   = 2
	maxComparativeCharts = 3
)

func contentWidth(page domain.PageSettings) float64 {
	return geom.Snap(page.Width-2*pageMargin, page.GridSize, page.SnapEnabled)
}

// rowWidth splits the content width into n equal columns separated by
// itemGap, snapped to the grid.
func rowWidth(page domain.PageSettings, n int) float64 {
	w := (contentWidth(page) - itemGap*float64(n-1)) / float64(n)
	return geom.Snap(w, page.GridSize, page.SnapEnabled)
}

func place(t domain.ComponentType, x, y, w, h float64, z int) domain.Component {
	return domain.Component{
		ID:        uuid.NewString(),
		Type:      t,
		Geometry:  domain.Rect{X: x, Y: y, Width: w, Height: h},
		ZIndex:    z,
		IsVisible: true,
	}
}

func titleComponent(text string, page domain.PageSettings, y float64, z int) domain.Component {
	c := place(domain.TypeText, pageMargin, y, contentWidth(page), titleHeight, z)
	c.Text = &domain.TextConfig{ConfigVersion: 1, Content: text, Align: "left"}
	return c
}

// chartComponent builds a CHART bound to the datasource, visualized per the
// detected pattern (bar chart when the datasource yields no pattern at all).
func chartComponent(ds domain.Datasource, p pattern.Pattern, hasPattern bool, x, y, w, h float64, z int) domain.Component {
	c := place(domain.TypeChart, x, y, w, h, z)
	c.DatasourceAlias = ds.Alias
	cfg := &domain.ChartConfig{ConfigVersion: 1, ChartType: domain.ChartBar, ShowLegend: true, Title: ds.Alias}
	if hasPattern {
		cfg.ChartType = p.SuggestedChart
		cfg.Title = fmt.Sprintf("%s (%s)", ds.Alias, p.Kind)
		cfg.XField = p.Fields[0].DisplayName()
		c.Data = &domain.DataConfig{ConfigVersion: 1, Fields: p.Fields}
	}
	c.Chart = cfg
	return c
}

func tableComponent(ds domain.Datasource, x, y, w, h float64, z int) domain.Component {
	c := place(domain.TypeTable, x, y, w, h, z)
	c.DatasourceAlias = ds.Alias
	c.Table = &domain.TableConfig{ConfigVersion: 1, PageSize: 10, ShowHeaders: true}
	c.Data = &domain.DataConfig{ConfigVersion: 1, Fields: ds.SelectedFields}
	return c
}

// dashboardLayout: title band, up to four KPI cards (one per datasource with
// a numeric field), up to two pattern-driven charts side by side, and a
// full-width table of the first datasource.
func dashboardLayout(dss []domain.Datasource, page domain.PageSettings) []domain.Component {
	y := page.MinY
	z := 0
	out := []domain.Component{titleComponent("Dashboard", page, y, z)}
	z++
	y += titleHeight + itemGap

	type kpi struct {
		ds    domain.Datasource
		field domain.Field
	}
	var kpis []kpi
	for _, ds := range dss {
		if f, ok := pattern.FirstNumericField(ds); ok {
			kpis = append(kpis, kpi{ds: ds, field: f})
			if len(kpis) == maxKPICards {
				break
			}
		}
	}
	if len(kpis) > 0 {
		w := rowWidth(page, len(kpis))
		for i, k := range kpis {
			c := place(domain.TypeText, pageMargin+float64(i)*(w+itemGap), y, w, kpiHeight, z)
			c.DatasourceAlias = k.ds.Alias
			c.Text = &domain.TextConfig{ConfigVersion: 1, Content: k.field.DisplayName(), Align: "center"}
			c.Data = &domain.DataConfig{
				ConfigVersion: 1,
				Fields:        []domain.Field{{Table: k.field.Table, Field: k.field.Field, Alias: k.field.Alias, Aggregation: domain.AggSum, DataType: k.field.DataType}},
			}
			out = append(out, c)
			z++
		}
		y += kpiHeight + itemGap
	}

	type pick struct {
		ds domain.Datasource
		p  pattern.Pattern
	}
	var picks []pick
	for _, ds := range dss {
		for _, p := range pattern.Analyze(ds) {
			picks = append(picks, pick{ds: ds, p: p})
		}
	}
	if len(picks) > maxDashboardCharts {
		picks = picks[:maxDashboardCharts]
	}
	if len(picks) > 0 {
		w := rowWidth(page, len(picks))
		for i, pk := range picks {
			out = append(out, chartComponent(pk.ds, pk.p, true, pageMargin+float64(i)*(w+itemGap), y, w, dashboardChartH, z))
			z++
		}
		y += dashboardChartH + itemGap
	}

	out = append(out, tableComponent(dss[0], pageMargin, y, contentWidth(page), dashboardTableH, z))
	return out
}

// analyticalLayout: summary text, then one full-width chart per
// datasource x detected pattern, stacked vertically.
func analyticalLayout(dss []domain.Datasource, page domain.PageSettings) []domain.Component {
	y := page.MinY
	z := 0
	summary := place(domain.TypeText, pageMargin, y, contentWidth(page), summaryHeight, z)
	summary.Text = &domain.TextConfig{ConfigVersion: 1, Content: "Analysis summary", Align: "left"}
	out := []domain.Component{summary}
	z++
	y += summaryHeight + itemGap

	for _, ds := range dss {
		for _, p := range pattern.Analyze(ds) {
			out = append(out, chartComponent(ds, p, true, pageMargin, y, contentWidth(page), analyticalChartH, z))
			z++
			y += analyticalChartH + itemGap
		}
	}
	return out
}

// focusLayout: header, one large chart from the highest-confidence pattern,
// and a full detail table with every selected field.
func focusLayout(ds domain.Datasource, page domain.PageSettings) []domain.Component {
	y := page.MinY
	out := []domain.Component{titleComponent(ds.Alias, page, y, 0)}
	y += titleHeight + itemGap

	best, ok := pattern.Best(ds)
	out = append(out, chartComponent(ds, best, ok, pageMargin, y, contentWidth(page), focusChartH, 1))
	y += focusChartH + itemGap

	out = append(out, tableComponent(ds, pageMargin, y, contentWidth(page), focusTableH, 2))
	return out
}

// comparativeLayout: title, then up to three datasources as equal-width
// side-by-side charts, each using its own best pattern.
func comparativeLayout(dss []domain.Datasource, page domain.PageSettings) []domain.Component {
	y := page.MinY
	z := 0
	out := []domain.Component{titleComponent("Comparison", page, y, z)}
	z++
	y += titleHeight + itemGap

	n := len(dss)
	if n > maxComparativeCharts {
		n = maxComparativeCharts
	}
	w := rowWidth(page, n)
	for i := 0; i < n; i++ {
		best, ok := pattern.Best(dss[i])
		out = append(out, chartComponent(dss[i], best, ok, pageMargin+float64(i)*(w+itemGap), y, w, comparativeH, z))
		z++
	}
	return out
}
