package pogo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/httputil"
	"github.com/banshee-data/gymwatch/internal/monitoring"
)

// Client is the remote-service boundary. Session authentication and request
// signing happen behind this interface; the pipeline only ever sees parsed
// envelopes or transport errors.
type Client interface {
	// Authenticate establishes a session with the given credential provider.
	Authenticate(ctx context.Context, provider, username, password string) error

	// SetPosition sets the player position used for subsequent requests.
	SetPosition(pos geo.Position)

	// GetMapObjects requests map cells around the player position. One
	// since-timestamp per cell id; zero means a full refresh for that cell.
	GetMapObjects(ctx context.Context, pos geo.Position, cellIDs []uint64, since []int64) (*Envelope, error)

	// GetGymDetails requests the detail record for one gym.
	GetGymDetails(ctx context.Context, gymID string, player, gym geo.Position) (*Envelope, error)
}

// RPCClient is a thin HTTP implementation of Client against the service's RPC
// endpoint. The wire-level signing layer is deliberately not reproduced here;
// the endpoint is expected to accept the JSON request body as-is (a local
// relay or fixture server in practice).
type RPCClient struct {
	baseURL string
	client  httputil.HTTPClient

	mu       sync.Mutex
	pos      geo.Position
	provider string
	token    string
}

// NewRPCClient creates a client for the given RPC endpoint.
func NewRPCClient(baseURL string, client httputil.HTTPClient) *RPCClient {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &RPCClient{baseURL: baseURL, client: client}
}

type rpcRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Authenticate performs the login call and stores the session token.
func (c *RPCClient) Authenticate(ctx context.Context, provider, username, password string) error {
	env, err := c.call(ctx, rpcRequest{
		Method: "LOGIN",
		Params: map[string]any{
			"provider": provider,
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return fmt.Errorf("authenticating with %s: %w", provider, err)
	}

	var login struct {
		Token string `json:"token"`
	}
	raw, ok := env.Responses["LOGIN"]
	if !ok {
		return fmt.Errorf("authentication response missing LOGIN payload")
	}
	if err := json.Unmarshal(raw, &login); err != nil {
		return fmt.Errorf("decoding LOGIN payload: %w", err)
	}
	if login.Token == "" {
		return fmt.Errorf("authentication rejected for %q", username)
	}

	c.mu.Lock()
	c.provider = provider
	c.token = login.Token
	c.mu.Unlock()
	return nil
}

// SetPosition records the player position sent with every request.
func (c *RPCClient) SetPosition(pos geo.Position) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

// GetMapObjects issues one map-objects request.
func (c *RPCClient) GetMapObjects(ctx context.Context, pos geo.Position, cellIDs []uint64, since []int64) (*Envelope, error) {
	return c.call(ctx, rpcRequest{
		Method: CallMapObjects,
		Params: map[string]any{
			"latitude":           pos.Lat,
			"longitude":          pos.Lng,
			"cell_id":            cellIDs,
			"since_timestamp_ms": since,
		},
	})
}

// GetGymDetails issues one gym-details request.
func (c *RPCClient) GetGymDetails(ctx context.Context, gymID string, player, gym geo.Position) (*Envelope, error) {
	return c.call(ctx, rpcRequest{
		Method: CallGymDetails,
		Params: map[string]any{
			"gym_id":           gymID,
			"player_latitude":  player.Lat,
			"player_longitude": player.Lng,
			"gym_latitude":     gym.Lat,
			"gym_longitude":    gym.Lng,
		},
	})
}

func (c *RPCClient) call(ctx context.Context, req rpcRequest) (*Envelope, error) {
	c.mu.Lock()
	pos := c.pos
	token := c.token
	c.mu.Unlock()

	body := map[string]any{
		"requests":  []rpcRequest{req},
		"latitude":  pos.Lat,
		"longitude": pos.Lng,
	}
	if token != "" {
		body["auth_token"] = token
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", req.Method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", req.Method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", req.Method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", req.Method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request returned status %d", req.Method, resp.StatusCode)
	}

	monitoring.Debugf("%s response: %d bytes", req.Method, len(raw))

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", req.Method, err)
	}
	return &env, nil
}
