/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"log/slog"

	"reportstudio/internal/domain"
	"reportstudio/internal/geom"
)

// Fixed row metrics for table auto-height.
const (
	headerHeight  = 32.0
	rowHeight     = 32.0
	footerHeight  = 24.0
	heightPadding = 20.0
)

// AutoHeight recomputes the height of a TABLE component from a preview row
// count: header (0 or 32) + min(rows, pageSize)*32 + footer (0 or 24) + 20,
// snapped. The new height is applied only when it differs from the current
// height by more than one grid unit; the hysteresis keeps preview refreshes
// that only change by rounding noise from oscillating the geometry (and
// re-triggering preview fetches). Non-tables and tables with auto-height
// disabled are no-ops.
func (e *Engine) AutoHeight(id string, previewRowCount int) {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return
	}
	c := &e.components[i]
	if c.Type != domain.TypeTable || c.Table == nil || c.Table.DisableAutoHeight {
		return
	}
	h := tableHeight(*c.Table, previewRowCount)
	h = geom.Snap(h, e.page.GridSize, e.page.SnapEnabled)
	delta := h - c.Geometry.Height
	if delta < 0 {
		delta = -delta
	}
	if delta <= e.page.GridSize {
		return
	}
	c.Geometry.Height = h
	e.log.Debug("auto-height applied", slog.String("id", id), slog.Int("rows", previewRowCount), slog.Float64("height", h))
	e.emitComponents()
}

// tableHeight is the unsnapped auto-height formula.
func tableHeight(cfg domain.TableConfig, rows int) float64 {
	visible := rows
	if cfg.PageSize > 0 && visible > cfg.PageSize {
		visible = cfg.PageSize
	}
	if visible < 0 {
		visible = 0
	}
	h := float64(visible)*rowHeight + heightPadding
	if cfg.ShowHeaders {
		h += headerHeight
	}
	if cfg.ShowFooter {
		h += footerHeight
	}
	return h
}
