package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/evaratech/aquanode/internal/model"
)

// FeedFetcher is the channel client surface, split out so callers can stub
// it in tests.
type FeedFetcher interface {
	FetchFeeds(ctx context.Context, q FeedQuery) ([]Feed, error)
}

// CollectLatest fetches every binding's channel concurrently, merges the
// raw maps, and normalizes the result into one snapshot for the node.
// Returns a nil reading when no usable data exists, plus the number of
// channel feeds that contributed.
func CollectLatest(ctx context.Context, fetch FeedFetcher, node model.Node) (*model.NormalizedReading, int) {
	if len(node.Bindings) == 0 {
		return nil, 0
	}

	type result struct {
		fields    map[string]any
		createdAt time.Time
		entryID   int64
	}
	results := make([]result, len(node.Bindings))

	var wg sync.WaitGroup
	for i, b := range node.Bindings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feeds, err := fetch.FetchFeeds(ctx, FeedQuery{
				ChannelID: b.ChannelID,
				ReadKey:   b.ReadKey,
				Results:   1,
			})
			if err != nil {
				log.Printf("telemetry: node %s channel %s: %v", node.ID, b.ChannelID, err)
				return
			}
			if len(feeds) == 0 {
				return
			}
			latest := feeds[0]
			results[i] = result{fields: latest.Fields, createdAt: latest.CreatedAt, entryID: latest.EntryID}
		}()
	}
	wg.Wait()

	raw := make([]map[string]any, 0, len(results))
	feedCount := 0
	var ts time.Time
	var entryID int64
	for _, r := range results {
		if r.fields == nil {
			continue
		}
		feedCount++
		raw = append(raw, r.fields)
		if r.createdAt.After(ts) {
			ts = r.createdAt
		}
		if r.entryID > entryID {
			entryID = r.entryID
		}
	}

	merged := MergeFeeds(raw)
	if len(merged) == 0 {
		return nil, 0
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &model.NormalizedReading{
		Timestamp: ts,
		EntryID:   entryID,
		Values:    Normalize(merged, mergedMapping(node.Bindings)),
	}, feedCount
}

// mergedMapping folds the bindings' field mappings together, first binding
// winning per raw key so one semantic is never resolved twice in a pass.
func mergedMapping(bindings []model.ChannelBinding) map[string]string {
	out := make(map[string]string)
	for _, b := range bindings {
		for raw, semantic := range b.FieldMapping {
			if _, ok := out[raw]; !ok {
				out[raw] = semantic
			}
		}
	}
	return out
}
