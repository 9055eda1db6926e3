/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"reportstudio/internal/storage"
)

// PNGOptions controls PNG export behavior.
// - DPI: output resolution, defaults to 96 (page units are CSS pixels at 96dpi)
// - IncludeGrid: draw grid lines at the page grid size
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	IncludeGrid bool
	DPI         int
}

// ExportPNG renders the report page as a wireframe PNG at outPath. Component
// boxes carry their type label drawn with the built-in bitmap face, so the
// export has no font dependencies. A relative outPath resolves under the
// project's exports folder.
func ExportPNG(rh *storage.ReportHandle, outPath string, opt PNGOptions) error {
	if rh == nil {
		return fmt.Errorf("report handle is nil")
	}
	r := rh.Report
	page := r.Page

	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	scale := float64(dpi) / 96.0
	pixW := int(math.Round(page.Width * scale))
	pixH := int(math.Round(page.Height * scale))

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	if opt.IncludeGrid && page.GridSize > 0 {
		gc := color.RGBA{230, 230, 230, 255}
		step := int(math.Round(page.GridSize * scale))
		if step > 0 {
			for x := step; x < pixW; x += step {
				for y := 0; y < pixH; y++ {
					img.SetRGBA(x, y, gc)
				}
			}
			for y := step; y < pixH; y += step {
				for x := 0; x < pixW; x++ {
					img.SetRGBA(x, y, gc)
				}
			}
		}
	}

	black := color.RGBA{0, 0, 0, 255}
	for _, c := range sortByZIndex(r.Components) {
		if !c.IsVisible {
			continue
		}
		g := c.Geometry
		x := int(math.Round(g.X * scale))
		y := int(math.Round(g.Y * scale))
		w := int(math.Round(g.Width * scale))
		h := int(math.Round(g.Height * scale))
		strokeRect(img, x, y, x+w-1, y+h-1, black)

		label := string(c.Type)
		if extra := componentLabel(c); extra != "" {
			label += " " + extra
		}
		drawLabel(img, x+4, y+14, label, black)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(rh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawLabel renders text with the fixed 7x13 bitmap face.
func drawLabel(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
