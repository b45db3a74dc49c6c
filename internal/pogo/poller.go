package pogo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/monitoring"
	"github.com/banshee-data/gymwatch/internal/timeutil"
	"github.com/google/uuid"
)

// ErrNoMapCells marks a map response that parsed but carried no usable
// map_cells field. It is distinct from a transport failure so callers can
// tell "server said nothing usable" from "network broke".
var ErrNoMapCells = errors.New("map response missing map_cells")

// SnapshotStore is the subset of the persistence store the poller and
// fetcher write through.
type SnapshotStore interface {
	SaveMapResponse(raw []byte) error
	SaveCellListing(cells []MapCell) error
	SaveGymDetail(id string, raw []byte) error
}

// Snapshot is the outcome of one map poll: the cells (with geohash-annotated
// forts) plus run metadata.
type Snapshot struct {
	ScanID    string       `json:"scan_id"`
	Position  geo.Position `json:"position"`
	FetchedAt time.Time    `json:"fetched_at"`
	Status    int          `json:"status"`
	Cells     []MapCell    `json:"cells"`
}

// Gyms returns the forts across all cells that pass the gym predicate.
func (s *Snapshot) Gyms() []Fort {
	var gyms []Fort
	for _, cell := range s.Cells {
		for _, fort := range cell.Forts {
			if fort.IsGym() {
				gyms = append(gyms, fort)
			}
		}
	}
	return gyms
}

// Poller issues the single map-objects request for a run and persists the raw
// response and the cell listing. It never retries; retry policy belongs to
// the caller.
type Poller struct {
	client Client
	store  SnapshotStore
	clock  timeutil.Clock
}

// NewPoller creates a poller writing through the given store.
func NewPoller(client Client, store SnapshotStore, clock timeutil.Clock) *Poller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Poller{client: client, store: store, clock: clock}
}

// Poll requests map objects for the cells covering pos, persists the raw
// envelope and the annotated cell listing, and returns the snapshot.
// Transport failures come back wrapped; a response without map_cells is
// ErrNoMapCells.
func (p *Poller) Poll(ctx context.Context, pos geo.Position) (*Snapshot, error) {
	cells, err := geo.CoverCells(pos)
	if err != nil {
		return nil, fmt.Errorf("computing cover cells: %w", err)
	}

	cellIDs := make([]uint64, len(cells))
	since := make([]int64, len(cells)) // zeros: full refresh
	for i, c := range cells {
		cellIDs[i] = uint64(c)
	}

	p.client.SetPosition(pos)

	env, err := p.client.GetMapObjects(ctx, pos, cellIDs, since)
	if err != nil {
		return nil, fmt.Errorf("map poll failed: %w", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("re-encoding map response: %w", err)
	}
	if err := p.store.SaveMapResponse(raw); err != nil {
		return nil, fmt.Errorf("persisting map response: %w", err)
	}

	payload, ok := env.Responses[CallMapObjects]
	if !ok {
		return nil, fmt.Errorf("%w: no %s payload", ErrNoMapCells, CallMapObjects)
	}

	// Probe with a pointer so an absent map_cells field is distinguishable
	// from an empty one.
	var probe struct {
		Status   int        `json:"status"`
		MapCells *[]MapCell `json:"map_cells"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("%w: undecodable payload: %v", ErrNoMapCells, err)
	}
	if probe.MapCells == nil {
		return nil, ErrNoMapCells
	}

	snapshot := &Snapshot{
		ScanID:    uuid.New().String(),
		Position:  pos,
		FetchedAt: p.clock.Now(),
		Status:    probe.Status,
		Cells:     *probe.MapCells,
	}

	for ci := range snapshot.Cells {
		for fi := range snapshot.Cells[ci].Forts {
			fort := &snapshot.Cells[ci].Forts[fi]
			fort.Geohash = geo.Geohash(fort.Position())
			monitoring.Debugf("fort id=%s type=%d points=%v", fort.ID, fort.Type, fort.GymPoints)
		}
	}

	if err := p.store.SaveCellListing(snapshot.Cells); err != nil {
		return nil, fmt.Errorf("persisting cell listing: %w", err)
	}

	monitoring.Logf("map poll %s: %d cells, %d gyms at %v",
		snapshot.ScanID, len(snapshot.Cells), len(snapshot.Gyms()), pos)
	return snapshot, nil
}
