/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the report designer. A Report is
// a single fixed-size page with freely positioned components; components are
// bound to named datasources. Per-type configuration is a tagged union of
// typed, versioned structs rather than open key/value maps, so producers
// (auto-layout, manual edit) and consumers (renderers, exporters) cannot
// drift apart silently.

// ComponentType discriminates a placed report element.
type ComponentType string

const (
	TypeTable     ComponentType = "TABLE"
	TypeChart     ComponentType = "CHART"
	TypeBarcode   ComponentType = "BARCODE"
	TypeText      ComponentType = "TEXT"
	TypeImage     ComponentType = "IMAGE"
	TypeDrillDown ComponentType = "DRILL_DOWN"
	TypeSubReport ComponentType = "SUB_REPORT"
)

// ComponentTypes lists all valid component types in palette order.
var ComponentTypes = []ComponentType{
	TypeTable, TypeChart, TypeBarcode, TypeText, TypeImage, TypeDrillDown, TypeSubReport,
}

// ChartType selects the visualization of a CHART component.
type ChartType string

const (
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartPie   ChartType = "pie"
	ChartArea  ChartType = "area"
	ChartDonut ChartType = "donut"
)

// Aggregation names a SQL aggregation applied to a bound field.
type Aggregation string

const (
	AggCount Aggregation = "count"
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// Report is the root document persisted as the project manifest.
type Report struct {
	Name        string       `json:"name"`
	Page        PageSettings `json:"page"`
	Datasources []Datasource `json:"datasources,omitempty"`
	Components  []Component  `json:"components"`
}

// PageSettings describes the fixed-size page canvas.
// MinY is a small positive offset at the top reserved for page chrome.
type PageSettings struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	GridSize    float64 `json:"gridSize"`
	SnapEnabled bool    `json:"snapEnabled"`
	MinY        float64 `json:"minY"`
}

// Rect is component geometry in page coordinates, top-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Component is a positioned, sized, configured report element.
// Type is fixed at creation and never mutated. Exactly one of the per-type
// config pointers is expected to be set, matching Type.
type Component struct {
	ID              string        `json:"id"`
	Type            ComponentType `json:"componentType"`
	Geometry        Rect          `json:"geometry"`
	ZIndex          int           `json:"zIndex"`
	DatasourceAlias string        `json:"datasourceAlias,omitempty"`
	IsVisible       bool          `json:"isVisible"`

	Data  *DataConfig  `json:"dataConfig,omitempty"`
	Style *StyleConfig `json:"styleConfig,omitempty"`

	Table     *TableConfig     `json:"tableConfig,omitempty"`
	Chart     *ChartConfig     `json:"chartConfig,omitempty"`
	Barcode   *BarcodeConfig   `json:"barcodeConfig,omitempty"`
	Text      *TextConfig      `json:"textConfig,omitempty"`
	Image     *ImageConfig     `json:"imageConfig,omitempty"`
	DrillDown *DrillDownConfig `json:"drillDownConfig,omitempty"`
	SubReport *SubReportConfig `json:"subReportConfig,omitempty"`
}

// DataConfig binds a component to fields of its datasource.
type DataConfig struct {
	ConfigVersion int     `json:"configVersion"`
	Fields        []Field `json:"fields,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	OrderBy       string  `json:"orderBy,omitempty"`
}

// StyleConfig holds shared visual styling.
type StyleConfig struct {
	ConfigVersion int     `json:"configVersion"`
	Background    string  `json:"background,omitempty"` // CSS-like hex, e.g. "#ffffff"
	BorderColor   string  `json:"borderColor,omitempty"`
	BorderWidth   float64 `json:"borderWidth,omitempty"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	TextColor     string  `json:"textColor,omitempty"`
}

// TableConfig configures a TABLE component. Auto-height recomputation is on
// unless explicitly disabled.
type TableConfig struct {
	ConfigVersion     int  `json:"configVersion"`
	PageSize          int  `json:"pageSize"`
	ShowHeaders       bool `json:"showHeaders"`
	ShowFooter        bool `json:"showFooter"`
	DisableAutoHeight bool `json:"disableAutoHeight,omitempty"`
	Striped           bool `json:"striped,omitempty"`
}

// ChartConfig configures a CHART component.
type ChartConfig struct {
	ConfigVersion int       `json:"configVersion"`
	ChartType     ChartType `json:"chartType"`
	Title         string    `json:"title,omitempty"`
	XField        string    `json:"xField,omitempty"`
	YField        string    `json:"yField,omitempty"`
	ShowLegend    bool      `json:"showLegend"`
	ShowGrid      bool      `json:"showGrid,omitempty"`
}

// BarcodeConfig configures a BARCODE component.
type BarcodeConfig struct {
	ConfigVersion int    `json:"configVersion"`
	BarcodeType   string `json:"barcodeType"` // code128, ean13, qr
	ValueField    string `json:"valueField,omitempty"`
	ShowText      bool   `json:"showText"`
}

// TextConfig configures a TEXT component.
type TextConfig struct {
	ConfigVersion int    `json:"configVersion"`
	Content       string `json:"content"`
	Align         string `json:"align,omitempty"` // left, center, right
}

// ImageConfig configures an IMAGE component.
type ImageConfig struct {
	ConfigVersion int    `json:"configVersion"`
	Source        string `json:"source,omitempty"` // URL or asset path
	Fit           string `json:"fit,omitempty"`    // contain, cover, stretch
}

// DrillDownConfig configures a DRILL_DOWN component: a table whose rows link
// into a detail report.
type DrillDownConfig struct {
	ConfigVersion int    `json:"configVersion"`
	TargetReport  string `json:"targetReport,omitempty"`
	LinkField     string `json:"linkField,omitempty"`
}

// SubReportConfig embeds another report by name.
type SubReportConfig struct {
	ConfigVersion int    `json:"configVersion"`
	ReportName    string `json:"reportName,omitempty"`
}

// Datasource is a named, read-only source of fields backing components.
type Datasource struct {
	Alias          string  `json:"alias"`
	DatabaseAlias  string  `json:"databaseAlias"`
	SelectedFields []Field `json:"selectedFields"`
	QueryType      string  `json:"queryType"` // visual or custom
}

// Field identifies one selected column of a datasource.
type Field struct {
	Table       string      `json:"table"`
	Field       string      `json:"field"`
	Alias       string      `json:"alias,omitempty"`
	Aggregation Aggregation `json:"aggregation,omitempty"`
	DataType    string      `json:"dataType,omitempty"`
}

// DisplayName returns the alias if set, otherwise the column name.
func (f Field) DisplayName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Field
}

// DefaultPage returns the page defaults: A4 portrait at 96 dpi, 10pt grid,
// snapping on, 20pt chrome offset.
func DefaultPage() PageSettings {
	return PageSettings{Width: 794, Height: 1123, GridSize: 10, SnapEnabled: true, MinY: 20}
}
