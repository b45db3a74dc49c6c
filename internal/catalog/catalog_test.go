package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gymwatch/internal/fsutil"
)

func writeCatalogs(t *testing.T, fs *fsutil.MemoryFileSystem, species, moves string) {
	t.Helper()
	require.NoError(t, fs.WriteFile("data/pokemon.json", []byte(species), 0644))
	require.NoError(t, fs.WriteFile("data/moves.json", []byte(moves), 0644))
}

func TestLoad(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	writeCatalogs(t, fs,
		`{"1":"Bulbasaur","4":"Charmander","150":"Mewtwo"}`,
		`[{"id":1,"name":"Thunder Shock","type":"Electric"},{"id":2,"name":"Vine Whip","type":"Grass"}]`)

	cats, err := Load(fs, "data")
	require.NoError(t, err)

	assert.Equal(t, 3, cats.SpeciesCount())
	assert.Equal(t, 2, cats.MoveCount())

	name, err := cats.SpeciesName(150)
	require.NoError(t, err)
	assert.Equal(t, "Mewtwo", name)
}

func TestLoadMissingFiles(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	_, err := Load(fs, "data")
	assert.Error(t, err)
}

func TestLoadBadSpeciesKey(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	writeCatalogs(t, fs, `{"not-a-number":"Oops"}`, `[]`)

	_, err := Load(fs, "data")
	assert.Error(t, err)
}

func TestSpeciesNameMiss(t *testing.T) {
	cats := NewCatalogs(map[int]string{1: "Bulbasaur"}, nil)

	_, err := cats.SpeciesName(9999)
	assert.True(t, errors.Is(err, ErrUnknownSpecies))
}

func TestMoveLookup(t *testing.T) {
	cats := NewCatalogs(nil, []Move{
		{ID: 1, Name: "Thunder Shock", Type: "Electric"},
		{ID: 7, Name: "Nameless"},
	})

	m := cats.Move(1)
	assert.Equal(t, "Thunder Shock", m.Name)
	assert.Equal(t, "Electric", m.Type)

	// A known-incomplete entry gets placeholders for the gaps only.
	m = cats.Move(7)
	assert.Equal(t, "Nameless", m.Name)
	assert.Equal(t, UnknownLabel, m.Type)

	// A full miss never fails.
	m = cats.Move(424242)
	assert.Equal(t, UnknownLabel, m.Name)
	assert.Equal(t, UnknownLabel, m.Type)
	assert.Equal(t, 424242, m.ID)
}
