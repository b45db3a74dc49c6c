package pogo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/monitoring"
	"github.com/banshee-data/gymwatch/internal/timeutil"
)

// DefaultDetailDelay is the minimum spacing between gym detail requests. The
// remote service revokes access for clients that poll faster, so this is the
// one number in the pipeline that must not shrink.
const DefaultDetailDelay = 2 * time.Second

// FetchStats summarises one detail-fetch pass.
type FetchStats struct {
	GymsSeen  int
	Fetched   int
	Malformed int
	Failed    int
}

// Fetcher walks the gyms of a snapshot and issues one detail request per gym,
// strictly serially, sleeping the configured delay after every request
// regardless of outcome. Per-gym failures are logged and skipped; they never
// abort the batch.
type Fetcher struct {
	client Client
	store  SnapshotStore
	clock  timeutil.Clock
	delay  time.Duration
}

// NewFetcher creates a fetcher. A non-positive delay falls back to
// DefaultDetailDelay.
func NewFetcher(client Client, store SnapshotStore, clock timeutil.Clock, delay time.Duration) *Fetcher {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if delay <= 0 {
		delay = DefaultDetailDelay
	}
	return &Fetcher{client: client, store: store, clock: clock, delay: delay}
}

// FetchAll fetches details for every gym in the snapshot, nearest first.
// The returned error is non-nil only when the context is cancelled;
// everything else is per-item and reflected in the stats.
func (f *Fetcher) FetchAll(ctx context.Context, snapshot *Snapshot) (FetchStats, error) {
	gyms := snapshot.Gyms()

	// Nearest-first gives a deterministic order and gets the interesting
	// results on disk early if the run is interrupted.
	sort.SliceStable(gyms, func(i, j int) bool {
		return geo.Distance(snapshot.Position, gyms[i].Position()) <
			geo.Distance(snapshot.Position, gyms[j].Position())
	})

	stats := FetchStats{GymsSeen: len(gyms)}

	for _, fort := range gyms {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("detail fetch interrupted: %w", err)
		}

		f.fetchOne(ctx, snapshot.Position, fort, &stats)

		// The delay applies after every request, success or not.
		f.clock.Sleep(f.delay)
	}

	monitoring.Logf("detail fetch: %d gyms, %d fetched, %d malformed, %d failed",
		stats.GymsSeen, stats.Fetched, stats.Malformed, stats.Failed)
	return stats, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, player geo.Position, fort Fort, stats *FetchStats) {
	dist := geo.Distance(player, fort.Position())
	monitoring.Debugf("fetching gym %s (%.0fm away)", fort.ID, dist)

	env, err := f.client.GetGymDetails(ctx, fort.ID, player, fort.Position())
	if err != nil {
		monitoring.Logf("gym %s: detail request failed, skipping: %v", fort.ID, err)
		stats.Failed++
		return
	}

	raw, ok := env.Responses[CallGymDetails]
	if !ok {
		monitoring.Logf("gym %s: no %s payload in response, skipping (fort: %+v)",
			fort.ID, CallGymDetails, fort)
		stats.Malformed++
		return
	}

	// A detail payload without a name is unusable; log the raw payload and
	// the originating fort so the gap can be diagnosed later.
	var probe struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Name == nil {
		monitoring.Logf("gym %s: malformed detail payload, skipping (payload: %s, fort: %+v)",
			fort.ID, raw, fort)
		stats.Malformed++
		return
	}

	// Persist before moving on so partial progress survives a crash.
	if err := f.store.SaveGymDetail(fort.ID, raw); err != nil {
		monitoring.Logf("gym %s: persisting detail failed, skipping: %v", fort.ID, err)
		stats.Failed++
		return
	}

	stats.Fetched++
}
