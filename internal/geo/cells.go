package geo

import (
	"sort"

	"github.com/golang/geo/s2"
)

// coverCellLevel determines the granularity of the cells requested from the
// map service. Level 15 cells are roughly 300m across, which matches the
// service's own query granularity.
//
// S2 cells are a hierarchical spatial indexing system (see https://s2geometry.io/).
const coverCellLevel = 15

// CoverCells returns the de-duplicated set of cell ids covering the
// neighbourhood around p: the level-15 cell containing the position plus its
// edge and corner neighbours (a 3x3 patch), sorted by id. Invalid coordinates
// fail fast; an empty result is never returned silently.
func CoverCells(p Position) ([]s2.CellID, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	center := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Parent(coverCellLevel)
	cells := cellAndNeighbors(center)

	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells, nil
}

// cellAndNeighbors returns the given cell plus its neighbouring cells.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	for i := 0; i < 4; i++ {
		cells = append(cells, edgeNeighbors[i])
	}

	seen := make(map[s2.CellID]bool)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edgeNeighbors[i].EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}

	return cells
}
