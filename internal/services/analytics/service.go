package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/evaratech/aquanode/internal/model"
	"github.com/evaratech/aquanode/internal/services/persistence"
	"github.com/evaratech/aquanode/internal/services/telemetry"
	"github.com/evaratech/aquanode/pkg/cache"
)

// HistoryLimit caps how many history rows feed one forecast.
const HistoryLimit = 90

// Store is the slice of the hybrid store the analytics side reads from.
type Store interface {
	GetNode(ctx context.Context, nodeID string) (persistence.NodeRow, error)
	GetHistory(ctx context.Context, nodeID string, limit int) ([]persistence.HistoryRow, error)
}

// LiveSnapshot is the on-demand reading for one node. Status is "ok" when a
// usable reading came back and "disconnected" when every channel was empty;
// a missing node is a lookup error instead, so callers can tell the two apart.
type LiveSnapshot struct {
	NodeID    string         `json:"node_id"`
	Label     string         `json:"label"`
	State     string         `json:"state"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp,omitempty"`
	EntryID   int64          `json:"entry_id,omitempty"`
	FeedCount int            `json:"feed_count"`
	Values    map[string]any `json:"values,omitempty"`
}

// Forecast is the history-backed summary for one node.
type Forecast struct {
	NodeID      string  `json:"node_id"`
	Samples     int     `json:"samples"`
	AvgLevel    float64 `json:"avg_level_percent"`
	PeakFlow    float64 `json:"peak_flow"`
	RemainingL  float64 `json:"remaining_l"`
	DaysToEmpty int     `json:"days_to_empty"`
	ComputedAt  string  `json:"computed_at"`
}

// Service answers live and forecast queries, absorbing dashboard refresh
// storms through two injected TTL caches so a burst of identical requests
// costs one upstream round trip.
type Service struct {
	store Store
	fetch telemetry.FeedFetcher
	live  *cache.Cache
	hist  *cache.Cache
}

func NewService(store Store, fetch telemetry.FeedFetcher, live, hist *cache.Cache) *Service {
	if live == nil {
		live = cache.New(30*time.Second, 1000)
	}
	if hist == nil {
		hist = cache.New(60*time.Second, 1000)
	}
	return &Service{store: store, fetch: fetch, live: live, hist: hist}
}

// Live returns the freshest reading for the node, poll-through cached.
func (s *Service) Live(ctx context.Context, nodeID string) (LiveSnapshot, error) {
	if v, ok := s.live.Get(nodeID); ok {
		return v.(LiveSnapshot), nil
	}

	row, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return LiveSnapshot{}, err
	}
	node := row.Node()
	for _, b := range node.Bindings {
		if err := telemetry.ValidateMapping(node.Kind, b.FieldMapping); err != nil {
			return LiveSnapshot{}, fmt.Errorf("node %s mapping rejected: %w", nodeID, err)
		}
	}

	snap := LiveSnapshot{
		NodeID: node.ID,
		Label:  node.Label,
		State:  string(node.State),
		Status: "disconnected",
	}
	reading, feedCount := telemetry.CollectLatest(ctx, s.fetch, node)
	snap.FeedCount = feedCount
	if reading != nil {
		snap.Status = "ok"
		snap.Timestamp = reading.Timestamp.UTC().Format(time.RFC3339)
		snap.EntryID = reading.EntryID
		snap.Values = reading.Values
	}

	s.live.Set(nodeID, snap)
	return snap, nil
}

// NodeForecast folds the recent history into the rolling average, the peak
// flow and the depletion estimate, scaled to the node's capacity.
func (s *Service) NodeForecast(ctx context.Context, nodeID string) (Forecast, error) {
	if v, ok := s.hist.Get(nodeID); ok {
		return v.(Forecast), nil
	}

	row, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return Forecast{}, err
	}
	rows, err := s.store.GetHistory(ctx, nodeID, HistoryLimit)
	if err != nil {
		return Forecast{}, err
	}

	now := time.Now().UTC()
	fc := Forecast{
		NodeID:     nodeID,
		Samples:    len(rows),
		ComputedAt: now.Format(time.RFC3339),
	}

	// Rows arrive newest first; the fit wants chronological order.
	levels := make([]float64, 0, len(rows))
	samples := make([]LevelSample, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		levels = append(levels, r.AvgLevelPercent)
		samples = append(samples, LevelSample{
			Timestamp: r.PeriodStart.UTC().Format(time.RFC3339),
			Level:     r.AvgLevelPercent,
		})
		if r.PeakFlow > fc.PeakFlow {
			fc.PeakFlow = r.PeakFlow
		}
	}

	fc.AvgLevel = RollingAverage(levels, DefaultWindow)
	fc.DaysToEmpty = DaysToEmpty(samples, now)
	if row.Kind == string(model.KindTank) && row.CapacityL > 0 {
		fc.RemainingL = fc.AvgLevel / 100 * row.CapacityL
	}

	s.hist.Set(nodeID, fc)
	return fc, nil
}
