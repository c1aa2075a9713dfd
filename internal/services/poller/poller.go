package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evaratech/aquanode/internal/model"
	"github.com/evaratech/aquanode/internal/services/persistence"
	"github.com/evaratech/aquanode/internal/services/telemetry"
)

// Store is the slice of the hybrid store the scheduler needs.
type Store interface {
	GetNodes(ctx context.Context, limit, offset int) ([]persistence.NodeRow, error)
	UpdateNodeState(ctx context.Context, nodeID string, state model.NodeState) error
	InsertHistory(ctx context.Context, rec persistence.HistoryRow) error
}

// Fetcher is the channel client surface the scheduler polls through.
type Fetcher = telemetry.FeedFetcher

type Config struct {
	Interval      time.Duration // fixed sleep between ticks
	DeviceTimeout time.Duration // per-device deadline, below Interval
	MaxConcurrent int           // fan-out bound
	ListPageSize  int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 60 * time.Second
	}
	if c.DeviceTimeout <= 0 || c.DeviceTimeout >= c.Interval {
		c.DeviceTimeout = 20 * time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	if c.ListPageSize <= 0 {
		c.ListPageSize = 500
	}
}

// Poller drives the fixed-interval ingestion loop: list pollable nodes,
// fetch-normalize-merge per node with bounded fan-out, persist, reconcile
// state, broadcast transitions.
type Poller struct {
	cfg   Config
	store Store
	fetch Fetcher
	sink  *persistence.FeedSink
	bcast Broadcaster
}

func New(cfg Config, store Store, fetch Fetcher, sink *persistence.FeedSink, bcast Broadcaster) *Poller {
	cfg.applyDefaults()
	return &Poller{cfg: cfg, store: store, fetch: fetch, sink: sink, bcast: bcast}
}

// Run blocks until ctx is cancelled. Ticks are strictly sequential: the
// fan-out completes (or times out) before the fixed sleep begins, and a
// slow tick simply delays the next one.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("poller: starting, interval=%s fanout=%d", p.cfg.Interval, p.cfg.MaxConcurrent)
	for {
		if err := p.Tick(ctx); err != nil {
			// Outer-level failures never terminate the loop.
			log.Printf("poller: tick error: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Println("poller: stopped")
			return
		case <-time.After(p.cfg.Interval):
		}
	}
}

// Tick runs one full poll cycle over all eligible nodes.
func (p *Poller) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		ticksTotal.Inc()
		tickDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := p.store.GetNodes(ctx, p.cfg.ListPageSize, 0)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, p.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for _, row := range rows {
		node := row.Node()
		if !node.State.Pollable() {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			dctx, cancel := context.WithTimeout(ctx, p.cfg.DeviceTimeout)
			defer cancel()
			p.pollNode(dctx, node)
		}()
	}
	wg.Wait()
	return nil
}

// pollNode handles one device end to end. Failures are isolated here: a
// panic-free error path always resolves to an offline candidate.
func (p *Poller) pollNode(ctx context.Context, node model.Node) {
	for _, b := range node.Bindings {
		if err := telemetry.ValidateMapping(node.Kind, b.FieldMapping); err != nil {
			// A mapping that would misreport a physical quantity must not
			// produce readings or state transitions.
			log.Printf("poller: node %s channel %s skipped: %v", node.ID, b.ChannelID, err)
			deviceResults.WithLabelValues("rejected").Inc()
			return
		}
	}

	reading, feedCount := telemetry.CollectLatest(ctx, p.fetch, node)

	candidate := model.StateOffline
	if reading != nil {
		candidate = model.StateOnline
		p.persist(ctx, node, *reading, feedCount)
	}
	deviceResults.WithLabelValues(string(candidate)).Inc()

	newState, changed := Reconcile(node.State, candidate)
	if !changed {
		return
	}
	if err := p.store.UpdateNodeState(ctx, node.ID, newState); err != nil {
		log.Printf("poller: node %s state write failed: %v", node.ID, err)
		persistErrors.Inc()
		return
	}
	transitionsTotal.Inc()
	log.Printf("poller: node %s %s -> %s", node.ID, node.State, newState)
	if p.bcast != nil {
		p.bcast.StateChanged(model.StateChangeEvent{
			EventID:   uuid.New().String(),
			NodeID:    node.ID,
			OldState:  node.State,
			NewState:  newState,
			Timestamp: time.Now().UTC(),
		})
	}
}

// persist appends the tick's historical record and mirrors the raw reading
// to the time-series sink.
func (p *Poller) persist(ctx context.Context, node model.Node, reading model.NormalizedReading, feedCount int) {
	rec := persistence.HistoryRow{
		NodeID:      node.ID,
		PeriodType:  "poll",
		PeriodStart: reading.Timestamp.UTC().Truncate(time.Minute),
		FeedCount:   feedCount,
	}
	if v, ok := reading.Float("level"); ok {
		rec.AvgLevelPercent = v
	}
	if v, ok := reading.Float("flow_rate"); ok {
		rec.PeakFlow = v
	}
	if v, ok := reading.Float("consumption"); ok {
		rec.ConsumptionL = v
	}

	if err := p.store.InsertHistory(ctx, rec); err != nil {
		log.Printf("poller: node %s history write failed: %v", node.ID, err)
		persistErrors.Inc()
		return
	}
	if p.bcast != nil {
		p.bcast.HistoryCreated(model.HistoryCreatedEvent{
			EventID:     uuid.New().String(),
			NodeID:      node.ID,
			PeriodStart: rec.PeriodStart,
			Timestamp:   time.Now().UTC(),
		})
	}
	p.sink.WriteReading(ctx, node, reading)
}
