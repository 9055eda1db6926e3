/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"log/slog"

	"reportstudio/internal/domain"
)

// PreviewData is a page of sample rows for a bound component, used to size
// tables and preview charts. Failures degrade to the zero value ("no data").
type PreviewData struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"data"`
	TotalRows int              `json:"totalRows"`
}

// PreviewProvider fetches preview data for a component from the external
// collaborator (backend, database). It may block; callers run it off the UI
// thread and hand the result back through ApplyPreview.
type PreviewProvider interface {
	FetchPreview(ctx context.Context, c domain.Component) (PreviewData, error)
}

// previewEntry tags cached data with the sequence number that produced it.
type previewEntry struct {
	seq  uint64
	data PreviewData
	ok   bool // false = "no data" (failed or empty fetch)
}

// BeginPreview registers intent to fetch preview data for a component and
// returns the sequence number to pass to ApplyPreview. Returns false for an
// unknown id, in which case no fetch should be issued.
func (e *Engine) BeginPreview(id string) (uint64, bool) {
	if domain.FindComponent(e.components, id) < 0 {
		return 0, false
	}
	e.previewSeq++
	seq := e.previewSeq
	entry := e.previews[id]
	entry.seq = seq
	e.previews[id] = entry
	return seq, true
}

// ApplyPreview stores a fetch result. Stale responses (a newer request was
// issued for the id since) and responses for ids no longer in the component
// list are discarded. A fetch error is recorded as "no data" for that
// component only; it never aborts the session. On success the table
// auto-height recomputation runs with the returned row count.
// Returns whether the result was applied.
func (e *Engine) ApplyPreview(id string, seq uint64, data PreviewData, err error) bool {
	if domain.FindComponent(e.components, id) < 0 {
		return false
	}
	entry, known := e.previews[id]
	if known && seq < entry.seq {
		e.log.Debug("stale preview dropped", slog.String("id", id), slog.Uint64("seq", seq))
		return false
	}
	if err != nil {
		e.log.Warn("preview fetch failed", slog.String("id", id), slog.Any("err", err))
		e.previews[id] = previewEntry{seq: seq}
		return true
	}
	e.previews[id] = previewEntry{seq: seq, data: data, ok: true}
	e.AutoHeight(id, len(data.Rows))
	return true
}

// Preview returns the cached preview for a component. ok is false when there
// is no usable data (never fetched, fetch failed, or component unknown).
func (e *Engine) Preview(id string) (PreviewData, bool) {
	entry, known := e.previews[id]
	if !known || !entry.ok {
		return PreviewData{}, false
	}
	return entry.data, true
}

// RequestPreview runs the full fetch cycle using the provider: it issues the
// fetch synchronously and applies the result. Hosts that fetch in the
// background should instead call BeginPreview, run the provider themselves,
// and deliver the outcome to ApplyPreview on the UI thread.
func (e *Engine) RequestPreview(ctx context.Context, p PreviewProvider, id string) bool {
	i := domain.FindComponent(e.components, id)
	if i < 0 {
		return false
	}
	seq, ok := e.BeginPreview(id)
	if !ok {
		return false
	}
	data, err := p.FetchPreview(ctx, e.components[i])
	return e.ApplyPreview(id, seq, data, err)
}
