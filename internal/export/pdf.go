/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the report page as a wireframe: each component is
// drawn as its bounding box with its type and title. The wireframe is a
// design proof, not a data rendering; report execution lives in the backend.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"reportstudio/internal/domain"
	"reportstudio/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points (pt).
//
// Coordinates:
// - Page origin is top-left.
// - Component Rect values are in page coordinates, mapped 1:1 to PDF points.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	IncludeGrid bool    // draw grid lines at the page grid size
	GridGray    int     // 0-255, defaults to a light gray
	StrokeWidth float64 // component border width, defaults to 1pt
}

// ExportPDF exports the report page as a single-page wireframe PDF at outPath.
// A relative outPath resolves under the project's exports folder.
func ExportPDF(rh *storage.ReportHandle, outPath string, opt PDFOptions) error {
	if rh == nil {
		return fmt.Errorf("report handle is nil")
	}
	r := rh.Report
	page := r.Page

	strokeW := opt.StrokeWidth
	if strokeW == 0 {
		strokeW = 1
	}
	gridGray := opt.GridGray
	if gridGray == 0 {
		gridGray = 230
	}

	// Points for 1:1 mapping from model to PDF.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — Report Layout", r.Name), false)
	pdf.SetAuthor("Report Studio", false)

	// Built-in Helvetica keeps text vector without embedding.
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})

	if opt.IncludeGrid && page.GridSize > 0 {
		pdf.SetDrawColor(gridGray, gridGray, gridGray)
		pdf.SetLineWidth(0.2)
		for x := page.GridSize; x < page.Width; x += page.GridSize {
			pdf.Line(x, 0, x, page.Height)
		}
		for y := page.GridSize; y < page.Height; y += page.GridSize {
			pdf.Line(0, y, page.Width, y)
		}
	}

	for _, c := range sortByZIndex(r.Components) {
		if !c.IsVisible {
			continue
		}
		g := c.Geometry
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(strokeW)
		if c.Style != nil && c.Style.BorderWidth > 0 {
			pdf.SetLineWidth(c.Style.BorderWidth)
		}
		pdf.Rect(g.X, g.Y, g.Width, g.Height, "D")

		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(g.X+4, g.Y+12, string(c.Type))
		if label := componentLabel(c); label != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.Text(g.X+4, g.Y+24, label)
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(rh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// componentLabel picks the most descriptive short text for a component.
func componentLabel(c domain.Component) string {
	switch {
	case c.Chart != nil && c.Chart.Title != "":
		return c.Chart.Title
	case c.Text != nil && c.Text.Content != "":
		return c.Text.Content
	case c.SubReport != nil && c.SubReport.ReportName != "":
		return c.SubReport.ReportName
	case c.DatasourceAlias != "":
		return c.DatasourceAlias
	}
	return ""
}

// sortByZIndex returns the components in paint order (lowest zIndex first).
func sortByZIndex(list []domain.Component) []domain.Component {
	out := domain.CloneComponents(list)
	sort.SliceStable(out, func(a, b int) bool { return out[a].ZIndex < out[b].ZIndex })
	return out
}
