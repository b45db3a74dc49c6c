package pogo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/timeutil"
)

// memStore is a minimal SnapshotStore recording every save.
type memStore struct {
	mapRaw     []byte
	cells      []MapCell
	gyms       map[string][]byte
	gymOrder   []string
	saveGymErr error
}

func newMemStore() *memStore {
	return &memStore{gyms: make(map[string][]byte)}
}

func (m *memStore) SaveMapResponse(raw []byte) error {
	m.mapRaw = raw
	return nil
}

func (m *memStore) SaveCellListing(cells []MapCell) error {
	m.cells = cells
	return nil
}

func (m *memStore) SaveGymDetail(id string, raw []byte) error {
	if m.saveGymErr != nil {
		return m.saveGymErr
	}
	m.gyms[id] = raw
	m.gymOrder = append(m.gymOrder, id)
	return nil
}

func gymPoints(v int64) *int64 { return &v }

var testPos = geo.Position{Lat: 52.520008, Lng: 13.404954}

func testCells() []MapCell {
	return []MapCell{
		{
			S2CellID: 123,
			Forts: []Fort{
				{ID: "gym-a", Type: 0, Latitude: 52.5201, Longitude: 13.4050, GymPoints: gymPoints(8500)},
				{ID: "stop-b", Type: 1, Latitude: 52.5203, Longitude: 13.4052},
			},
		},
		{
			S2CellID: 124,
			Forts: []Fort{
				{ID: "gym-c", Type: 1, Latitude: 52.5299, Longitude: 13.4150, GymPoints: gymPoints(2000)},
			},
		},
	}
}

func TestPoller_Poll(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2016, 8, 1, 12, 0, 0, 0, time.UTC))
	client := NewMockClient(clock)
	client.MapEnvelope = MapEnvelopeFor(1, testCells())
	store := newMemStore()

	p := NewPoller(client, store, clock)

	snapshot, err := p.Poll(context.Background(), testPos)
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.Status)
	assert.Len(t, snapshot.Cells, 2)
	assert.NotEmpty(t, snapshot.ScanID)
	assert.Equal(t, testPos, snapshot.Position)
	assert.Equal(t, clock.Now(), snapshot.FetchedAt)

	// Raw envelope and cell listing were persisted.
	require.NotNil(t, store.mapRaw)
	var env Envelope
	require.NoError(t, json.Unmarshal(store.mapRaw, &env))
	assert.Contains(t, env.Responses, CallMapObjects)
	assert.Len(t, store.cells, 2)

	// The gym predicate is gym_points presence, not the type code: stop-b
	// has type 1 and no points, gym-c has type 1 *and* points.
	gyms := snapshot.Gyms()
	require.Len(t, gyms, 2)
	assert.Equal(t, "gym-a", gyms[0].ID)
	assert.Equal(t, "gym-c", gyms[1].ID)

	// Forts in the persisted listing carry a geohash annotation.
	for _, cell := range store.cells {
		for _, fort := range cell.Forts {
			assert.Len(t, fort.Geohash, 12, "fort %s missing geohash", fort.ID)
		}
	}

	assert.Equal(t, testPos, client.Position, "poller must set the player position")
}

func TestPoller_TransportError(t *testing.T) {
	clock := timeutil.NewMockClock(time.Now())
	client := NewMockClient(clock)
	client.MapErr = errors.New("connection reset by peer")

	p := NewPoller(client, newMemStore(), clock)

	_, err := p.Poll(context.Background(), testPos)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMapCells, "transport failure must stay distinct from a parse failure")
}

func TestPoller_MissingMapCells(t *testing.T) {
	tests := []struct {
		name string
		env  *Envelope
	}{
		{
			"no map objects payload",
			&Envelope{Responses: map[string]json.RawMessage{}},
		},
		{
			"payload without map_cells",
			&Envelope{Responses: map[string]json.RawMessage{
				CallMapObjects: json.RawMessage(`{"status":1}`),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := timeutil.NewMockClock(time.Now())
			client := NewMockClient(clock)
			client.MapEnvelope = tt.env

			p := NewPoller(client, newMemStore(), clock)

			_, err := p.Poll(context.Background(), testPos)
			assert.ErrorIs(t, err, ErrNoMapCells)
		})
	}
}

func TestPoller_EmptyMapCellsIsNotAnError(t *testing.T) {
	// An explicitly empty list means "server answered, nothing nearby" and
	// must not be confused with a missing field.
	clock := timeutil.NewMockClock(time.Now())
	client := NewMockClient(clock)
	client.MapEnvelope = &Envelope{Responses: map[string]json.RawMessage{
		CallMapObjects: json.RawMessage(`{"status":1,"map_cells":[]}`),
	}}

	p := NewPoller(client, newMemStore(), clock)

	snapshot, err := p.Poll(context.Background(), testPos)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Cells)
	assert.Empty(t, snapshot.Gyms())
}

func TestPoller_InvalidPosition(t *testing.T) {
	clock := timeutil.NewMockClock(time.Now())
	client := NewMockClient(clock)

	p := NewPoller(client, newMemStore(), clock)

	_, err := p.Poll(context.Background(), geo.Position{Lat: 95, Lng: 0})
	require.ErrorIs(t, err, geo.ErrInvalidCoordinates)
	assert.Empty(t, client.Calls, "no request may be issued for invalid coordinates")
}
