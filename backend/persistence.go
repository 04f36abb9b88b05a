package main

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

const tableSnapshotVersion = 2

type tableSnapshot struct {
	Version int
	Entries []TTEntry
}

// SaveTable writes every live entry to path as a zstd-compressed gob
// stream. The snapshot is written to a temp file first so a crash mid-write
// never truncates a previous good snapshot.
func SaveTable(t *TranspositionTable, path string) error {
	entries := t.snapshotEntries()
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	enc := gob.NewEncoder(zw)
	if err := enc.Encode(tableSnapshot{Version: tableSnapshotVersion, Entries: entries}); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	log.Info().Str("path", path).Int("entries", len(entries)).Msg("table snapshot saved")
	return nil
}

// LoadTable restores a snapshot into t through the normal replacement
// policy. A missing file or a snapshot from an incompatible version is
// skipped, not an error; the search just starts cold.
func LoadTable(t *TranspositionTable, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()
	var snap tableSnapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("table snapshot unreadable, starting cold")
		return 0, nil
	}
	if snap.Version != tableSnapshotVersion {
		log.Warn().Str("path", path).Int("version", snap.Version).Msg("table snapshot version mismatch, starting cold")
		return 0, nil
	}
	t.loadEntries(snap.Entries)
	log.Info().Str("path", path).Int("entries", len(snap.Entries)).Msg("table snapshot loaded")
	return len(snap.Entries), nil
}
