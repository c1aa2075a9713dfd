package model

import "time"

// NormalizedReading is the per-poll snapshot for one node after mapping and
// merging. Values carries both the semantic keys and the raw field1..field8
// fallbacks. It is ephemeral: consumed immediately by persistence and the
// forecast callers, never stored as-is.
type NormalizedReading struct {
	Timestamp time.Time      `json:"timestamp"`
	EntryID   int64          `json:"entry_id"`
	Values    map[string]any `json:"values"`
}

// Float returns the named value as a float64 when it is numeric.
func (r NormalizedReading) Float(key string) (float64, bool) {
	switch v := r.Values[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// HistoricalRecord is the persisted per-tick aggregate for one node.
type HistoricalRecord struct {
	NodeID          string    `json:"node_id"`
	PeriodType      string    `json:"period_type"`
	PeriodStart     time.Time `json:"period_start"`
	ConsumptionL    float64   `json:"consumption_l"`
	AvgLevelPercent float64   `json:"avg_level_percent"`
	PeakFlow        float64   `json:"peak_flow"`
	FeedCount       int       `json:"feed_count"`
}
