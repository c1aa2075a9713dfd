package persistence

import (
	"context"
	"log"
	"strings"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/evaratech/aquanode/internal/model"
)

type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// FeedSink mirrors each usable poll reading into InfluxDB as a raw
// time-series point. Strictly best-effort: the relational history row is
// the record of truth, this feed only backs dashboards and retention jobs.
type FeedSink struct {
	writeAPI    api.WriteAPIBlocking
	measurement string
}

func NewFeedSink(cfg InfluxConfig) *FeedSink {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		log.Printf("influx: config incomplete, feed mirroring disabled")
		return nil
	}
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = "node_feed"
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &FeedSink{
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: sanitizeMeasurement(measurement),
	}
}

// WriteReading records one normalized reading. Nil-safe so callers can hold
// a disabled sink without guarding every write.
func (s *FeedSink) WriteReading(ctx context.Context, node model.Node, reading model.NormalizedReading) {
	if s == nil {
		return
	}

	tags := map[string]string{
		"node_id": node.ID,
		"kind":    string(node.Kind),
	}
	fields := make(map[string]any, len(reading.Values)+1)
	for k, v := range reading.Values {
		switch v.(type) {
		case float64, int64, int, string, bool:
			fields[k] = v
		}
	}
	fields["entry_id"] = reading.EntryID

	point := influxdb2.NewPoint(s.measurement, tags, fields, reading.Timestamp)
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("influx: write error for node %s: %v", node.ID, err)
	}
}

func sanitizeMeasurement(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == ':', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
