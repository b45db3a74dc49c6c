// Package store is the file-backed persistence layer. Every entity lives in
// its own JSON file keyed by a stable id; all writes are whole-file
// overwrites, so refetching an entity simply replaces its prior snapshot and
// the offline replay path can trust whatever is on disk.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/gymwatch/internal/fsutil"
	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/monitoring"
	"github.com/banshee-data/gymwatch/internal/pogo"
	"github.com/banshee-data/gymwatch/internal/security"
)

const (
	responseFile = "response_dict.json"
	cellsFile    = "cells.json"
	runInfoFile  = "last_run.json"
	gymsDir      = "gyms"
	gymPrefix    = "gym_"
)

// RunInfo is the per-run metadata record.
type RunInfo struct {
	ScanID    string       `json:"scan_id"`
	Location  string       `json:"location"`
	Position  geo.Position `json:"position"`
	StartedAt time.Time    `json:"started_at"`
	GymsSeen  int          `json:"gyms_seen"`
	Fetched   int          `json:"fetched"`
	Malformed int          `json:"malformed"`
	Failed    int          `json:"failed"`
}

// StoredGym is one gym detail record read back from disk.
type StoredGym struct {
	ID     string
	Detail pogo.GymDetail
	Raw    []byte
}

// Store reads and writes the data directory.
type Store struct {
	fs      fsutil.FileSystem
	dataDir string
}

// New creates a store rooted at dataDir.
func New(fs fsutil.FileSystem, dataDir string) *Store {
	return &Store{fs: fs, dataDir: dataDir}
}

// EnsureLayout creates the data directory tree.
func (s *Store) EnsureLayout() error {
	if err := s.fs.MkdirAll(filepath.Join(s.dataDir, gymsDir), 0755); err != nil {
		return fmt.Errorf("creating data directories: %w", err)
	}
	return nil
}

// SaveMapResponse overwrites the raw last map response.
func (s *Store) SaveMapResponse(raw []byte) error {
	return s.write(filepath.Join(s.dataDir, responseFile), raw)
}

// SaveCellListing overwrites the per-cell fort listing from the last run.
func (s *Store) SaveCellListing(cells []pogo.MapCell) error {
	data, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encoding cell listing: %w", err)
	}
	return s.write(filepath.Join(s.dataDir, cellsFile), data)
}

// SaveGymDetail overwrites the detail record for one gym. The raw payload is
// stored verbatim so fields this code does not model survive the round trip.
func (s *Store) SaveGymDetail(id string, raw []byte) error {
	return s.write(s.gymPath(id), raw)
}

// SaveRunInfo overwrites the last-run metadata.
func (s *Store) SaveRunInfo(info RunInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run info: %w", err)
	}
	return s.write(filepath.Join(s.dataDir, runInfoFile), data)
}

// LoadGymDetail reads one gym detail record back.
func (s *Store) LoadGymDetail(id string) (*StoredGym, error) {
	return s.readGym(s.gymPath(id), security.SanitizeID(id))
}

// LoadGymDetails reads every persisted gym record, sorted by file name.
// Files that fail to parse are logged and skipped; one corrupt record must
// not take down the offline replay path.
func (s *Store) LoadGymDetails() ([]StoredGym, error) {
	dir := filepath.Join(s.dataDir, gymsDir)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading gym directory: %w", err)
	}

	var gyms []StoredGym
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, gymPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, gymPrefix), ".json")

		gym, err := s.readGym(filepath.Join(dir, name), id)
		if err != nil {
			monitoring.Logf("skipping gym file %s: %v", name, err)
			continue
		}
		gyms = append(gyms, *gym)
	}
	return gyms, nil
}

func (s *Store) readGym(path, id string) (*StoredGym, error) {
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gym record: %w", err)
	}

	var detail pogo.GymDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("decoding gym record: %w", err)
	}

	return &StoredGym{ID: id, Detail: detail, Raw: raw}, nil
}

func (s *Store) gymPath(id string) string {
	return filepath.Join(s.dataDir, gymsDir, gymPrefix+security.SanitizeID(id)+".json")
}

func (s *Store) write(path string, data []byte) error {
	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
