// Package catalog loads the static species and move reference tables. Both
// are read once at startup and never mutated afterwards.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/gymwatch/internal/fsutil"
)

const (
	speciesFile = "pokemon.json"
	movesFile   = "moves.json"
)

// ErrUnknownSpecies marks a species id missing from the catalog. Unlike a
// move miss, this indicates a corrupt record rather than a known gap, so it
// is surfaced instead of papered over.
var ErrUnknownSpecies = errors.New("species id not in catalog")

// UnknownLabel is the placeholder for move names and types the catalog does
// not know. The move table is known-incomplete; misses are tolerated.
const UnknownLabel = "UNKNOWN"

// Move is one entry of the move catalog.
type Move struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Catalogs bundles the two reference tables.
type Catalogs struct {
	species map[int]string
	moves   []Move
}

// Load reads both catalogs from the data directory.
func Load(fs fsutil.FileSystem, dataDir string) (*Catalogs, error) {
	species, err := loadSpecies(fs, filepath.Join(dataDir, speciesFile))
	if err != nil {
		return nil, err
	}
	moves, err := loadMoves(fs, filepath.Join(dataDir, movesFile))
	if err != nil {
		return nil, err
	}
	return &Catalogs{species: species, moves: moves}, nil
}

// NewCatalogs builds catalogs from in-memory tables, for tests.
func NewCatalogs(species map[int]string, moves []Move) *Catalogs {
	if species == nil {
		species = make(map[int]string)
	}
	return &Catalogs{species: species, moves: moves}
}

// SpeciesName looks up a species name. A miss returns a wrapped
// ErrUnknownSpecies; callers decide how far the failure propagates.
func (c *Catalogs) SpeciesName(id int) (string, error) {
	name, ok := c.species[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownSpecies, id)
	}
	return name, nil
}

// Move resolves a move id by linear scan. A miss, or an entry with missing
// fields, yields UNKNOWN placeholders and never fails.
func (c *Catalogs) Move(id int) Move {
	for _, m := range c.moves {
		if m.ID == id {
			if m.Name == "" {
				m.Name = UnknownLabel
			}
			if m.Type == "" {
				m.Type = UnknownLabel
			}
			return m
		}
	}
	return Move{ID: id, Name: UnknownLabel, Type: UnknownLabel}
}

// SpeciesCount reports the number of species entries, for startup logging.
func (c *Catalogs) SpeciesCount() int { return len(c.species) }

// MoveCount reports the number of move entries, for startup logging.
func (c *Catalogs) MoveCount() int { return len(c.moves) }

// loadSpecies reads the species table: a JSON object keyed by decimal species
// id strings.
func loadSpecies(fs fsutil.FileSystem, path string) (map[int]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species catalog: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding species catalog: %w", err)
	}

	species := make(map[int]string, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("species catalog has non-numeric id %q", key)
		}
		species[id] = name
	}
	return species, nil
}

// loadMoves reads the move table: a JSON array of move entries.
func loadMoves(fs fsutil.FileSystem, path string) ([]Move, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading move catalog: %w", err)
	}

	var moves []Move
	if err := json.Unmarshal(data, &moves); err != nil {
		return nil, fmt.Errorf("decoding move catalog: %w", err)
	}
	return moves, nil
}
