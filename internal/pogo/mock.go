package pogo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/timeutil"
)

// MockClient is a test double for Client. Envelopes are canned per call type
// and every call is recorded with a timestamp from the injected clock, so
// tests can assert request ordering and throttle spacing.
type MockClient struct {
	mu sync.Mutex

	clock timeutil.Clock

	AuthErr error

	MapEnvelope *Envelope
	MapErr      error

	// DetailEnvelopes maps gym id to a canned envelope; DetailErrs maps gym
	// id to a transport error. A gym id present in neither gets
	// DefaultDetail.
	DetailEnvelopes map[string]*Envelope
	DetailErrs      map[string]error
	DefaultDetail   *Envelope

	Position geo.Position
	Calls    []MockCall
}

// MockCall records one request made through the mock.
type MockCall struct {
	Method string
	GymID  string
	At     time.Time
}

// NewMockClient creates a mock client stamping calls with the given clock.
func NewMockClient(clock timeutil.Clock) *MockClient {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &MockClient{
		clock:           clock,
		DetailEnvelopes: make(map[string]*Envelope),
		DetailErrs:      make(map[string]error),
	}
}

// Authenticate returns the configured auth error, if any.
func (m *MockClient) Authenticate(ctx context.Context, provider, username, password string) error {
	m.record(MockCall{Method: "LOGIN"})
	return m.AuthErr
}

// SetPosition records the player position.
func (m *MockClient) SetPosition(pos geo.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Position = pos
}

// GetMapObjects returns the canned map envelope.
func (m *MockClient) GetMapObjects(ctx context.Context, pos geo.Position, cellIDs []uint64, since []int64) (*Envelope, error) {
	m.record(MockCall{Method: CallMapObjects})
	if m.MapErr != nil {
		return nil, m.MapErr
	}
	return m.MapEnvelope, nil
}

// GetGymDetails returns the canned detail envelope for the gym id.
func (m *MockClient) GetGymDetails(ctx context.Context, gymID string, player, gym geo.Position) (*Envelope, error) {
	m.record(MockCall{Method: CallGymDetails, GymID: gymID})

	m.mu.Lock()
	err := m.DetailErrs[gymID]
	env, ok := m.DetailEnvelopes[gymID]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		env = m.DefaultDetail
	}
	return env, nil
}

// SetDetail cans a well-formed detail envelope for a gym id.
func (m *MockClient) SetDetail(gymID string, detail *GymDetail) {
	raw, _ := json.Marshal(detail)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetailEnvelopes[gymID] = &Envelope{
		Responses: map[string]json.RawMessage{CallGymDetails: raw},
	}
}

// DetailCalls returns the recorded GET_GYM_DETAILS calls in order.
func (m *MockClient) DetailCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.Calls {
		if c.Method == CallGymDetails {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockClient) record(c MockCall) {
	c.At = m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, c)
}

// MapEnvelopeFor builds a GET_MAP_OBJECTS envelope from cells, for tests.
func MapEnvelopeFor(status int, cells []MapCell) *Envelope {
	raw, _ := json.Marshal(MapObjects{Status: status, MapCells: cells})
	return &Envelope{Responses: map[string]json.RawMessage{CallMapObjects: raw}}
}
