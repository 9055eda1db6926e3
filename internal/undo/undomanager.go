/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for a report. Blob content is
// opaque to the manager (the host serializes the component list); size is
// estimated as len(Blob). TS is when the snapshot was captured.
type Snapshot struct {
	ReportID string
	Blob     []byte
	TS       time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerReport limits snapshots per report kept in memory (0 = unlimited).
	MaxPerReport int
	// MinInterval coalesces snapshots captured within the interval for the
	// same report, replacing the previous one instead of pushing a new entry.
	// Gesture commits arrive in bursts (drag, release, drag, release); without
	// coalescing every pixel-level adjustment becomes its own undo step.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per report with performance
// safeguards. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-report stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a report. If within MinInterval from
// the last snapshot of the same report, it replaces the last one. Clears the
// redo stack for that report.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.ReportID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.ReportID] = stack
			m.redo[s.ReportID] = nil
			m.enforceCapsLocked(s.ReportID)
			return
		}
	}
	stack = append(stack, s)
	m.undo[s.ReportID] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the report
	m.redo[s.ReportID] = nil
	m.enforceCapsLocked(s.ReportID)
}

// Undo pops from the report's undo stack and pushes to its redo stack,
// returning the snapshot.
func (m *Manager) Undo(reportID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[reportID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[reportID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[reportID] = append(m.redo[reportID], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(reportID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[reportID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[reportID] = r[:len(r)-1]
	m.undo[reportID] = append(m.undo[reportID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(reportID)
	return s, true
}

// ClearReport clears undo/redo stacks for a report to free memory.
func (m *Manager) ClearReport(reportID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[reportID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, reportID)
	delete(m.redo, reportID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, reports int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reports = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, reports, totalSnapshots
}

func (m *Manager) enforceCapsLocked(reportID string) {
	// Per-report depth cap
	if m.cfg.MaxPerReport > 0 {
		stack := m.undo[reportID]
		if len(stack) > m.cfg.MaxPerReport {
			toDrop := len(stack) - m.cfg.MaxPerReport
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[reportID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all reports
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestReport := ""
		oldestIdx := -1
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestReport = id
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestReport]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestReport] = stack[1:]
		if len(m.undo[oldestReport]) == 0 {
			delete(m.undo, oldestReport)
		}
	}
}
