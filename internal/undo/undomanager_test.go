/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package undo

import (
	"testing"
	"time"
)

func snap(id string, blob string, ts time.Time) Snapshot {
	return Snapshot{ReportID: id, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(snap("r1", "state-1", t0))
	m.PushSnapshot(snap("r1", "state-2", t0.Add(time.Second)))

	s, ok := m.Undo("r1")
	if !ok || string(s.Blob) != "state-2" {
		t.Fatalf("undo = %q, %v", s.Blob, ok)
	}
	s, ok = m.Redo("r1")
	if !ok || string(s.Blob) != "state-2" {
		t.Fatalf("redo = %q, %v", s.Blob, ok)
	}
	// empty stacks report false
	if _, ok := m.Undo("unknown"); ok {
		t.Fatalf("undo on unknown report succeeded")
	}
	if _, ok := m.Redo("unknown"); ok {
		t.Fatalf("redo on unknown report succeeded")
	}
}

func TestCoalescingWithinInterval(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Minute})
	t0 := time.Now()
	m.PushSnapshot(snap("r1", "a", t0))
	m.PushSnapshot(snap("r1", "b", t0.Add(time.Second))) // within interval: replaces

	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("snapshots = %d, want 1 (coalesced)", total)
	}
	s, _ := m.Undo("r1")
	if string(s.Blob) != "b" {
		t.Fatalf("coalesced snapshot = %q", s.Blob)
	}
}

func TestNewChangeInvalidatesRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(snap("r1", "a", t0))
	m.PushSnapshot(snap("r1", "b", t0.Add(time.Second)))
	if _, ok := m.Undo("r1"); !ok {
		t.Fatalf("undo failed")
	}
	m.PushSnapshot(snap("r1", "c", t0.Add(2*time.Second)))
	if _, ok := m.Redo("r1"); ok {
		t.Fatalf("redo survived a new change")
	}
}

func TestPerReportDepthCap(t *testing.T) {
	m := NewManager(Config{MaxPerReport: 2, MinInterval: time.Millisecond})
	t0 := time.Now()
	for i, b := range []string{"a", "b", "c"} {
		m.PushSnapshot(snap("r1", b, t0.Add(time.Duration(i)*time.Second)))
	}
	_, _, total := m.Stats()
	if total != 2 {
		t.Fatalf("snapshots = %d, want 2", total)
	}
	s, _ := m.Undo("r1")
	if string(s.Blob) != "c" {
		t.Fatalf("newest = %q", s.Blob)
	}
	s, _ = m.Undo("r1")
	if string(s.Blob) != "b" {
		t.Fatalf("oldest should have been dropped, got %q", s.Blob)
	}
}

func TestGlobalByteCapPrunesOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 10, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(snap("r1", "aaaaa", t0))                 // 5 bytes
	m.PushSnapshot(snap("r2", "bbbbb", t0.Add(time.Second))) // 5 bytes, at cap
	m.PushSnapshot(snap("r1", "ccccc", t0.Add(2*time.Second)))

	bytes, _, _ := m.Stats()
	if bytes > 10 {
		t.Fatalf("total bytes %d over cap", bytes)
	}
	// the oldest snapshot (r1 "aaaaa") was pruned, the newest survives
	s, ok := m.Undo("r1")
	if !ok || string(s.Blob) != "ccccc" {
		t.Fatalf("r1 top = %q, %v", s.Blob, ok)
	}
	if _, ok := m.Undo("r1"); ok {
		t.Fatalf("pruned snapshot still present")
	}
}

func TestClearReport(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	m.PushSnapshot(snap("r1", "a", time.Now()))
	m.ClearReport("r1")
	bytes, reports, total := m.Stats()
	if bytes != 0 || reports != 0 || total != 0 {
		t.Fatalf("stats after clear = %d bytes, %d reports, %d snapshots", bytes, reports, total)
	}
}
