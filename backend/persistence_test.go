package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableSnapshotRoundTripOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.bin")

	tt := NewTranspositionTable(1<<8, 2, 4)
	m := testMove(12, 28)
	tt.Store(0xfeedface, 42, 6, BoundExact, m, true, MainSearch)
	tt.Store(0xcafebabe, -9, 2, BoundUpper, NoMove, false, QuiescenceSearch)

	if err := SaveTable(tt, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := NewTranspositionTable(1<<8, 2, 4)
	n, err := LoadTable(fresh, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 restored entries, got %d", n)
	}
	entry, ok := fresh.Probe(0xfeedface)
	if !ok || entry.Score != 42 || entry.Depth != 6 || entry.Move != m || entry.Source != MainSearch {
		t.Fatalf("restored entry mismatch: %+v ok=%v", entry, ok)
	}
}

func TestLoadTableMissingFileStartsCold(t *testing.T) {
	tt := NewTranspositionTable(16, 1, 1)
	n, err := LoadTable(tt, filepath.Join(t.TempDir(), "nope.bin"))
	if err != nil || n != 0 {
		t.Fatalf("missing snapshot is not an error: n=%d err=%v", n, err)
	}
}

func TestLoadTableGarbageStartsCold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	if err := os.WriteFile(path, []byte("not a snapshot at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	tt := NewTranspositionTable(16, 1, 1)
	n, err := LoadTable(tt, path)
	if err == nil && n != 0 {
		t.Fatalf("garbage snapshot must not load entries, got %d", n)
	}
}

func TestSaveTableLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.bin")
	tt := NewTranspositionTable(16, 1, 1)
	tt.Store(0x1, 1, 1, BoundExact, NoMove, false, MainSearch)
	if err := SaveTable(tt, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
}
