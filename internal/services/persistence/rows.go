package persistence

import (
	"time"

	"github.com/evaratech/aquanode/internal/model"
)

// Row shapes are normalized once here so callers never see which backing
// store answered a query.

// NodeRow is the store-level projection of a node plus its single primary
// channel binding columns, as persisted by the CRUD side.
type NodeRow struct {
	ID           string            `json:"id"`
	HardwareKey  string            `json:"hardware_key"`
	Label        string            `json:"label"`
	Kind         string            `json:"analytics_kind"`
	State        string            `json:"state"`
	CapacityL    float64           `json:"capacity_l"`
	ChannelID    string            `json:"channel_id"`
	ReadKey      string            `json:"read_key"`
	WriteKey     string            `json:"write_key"`
	FieldMapping map[string]string `json:"field_mapping"`
	ExtraChannel string            `json:"extra_channel_id"`
}

// Node converts the row to the domain entity, attaching the redundant
// channel as a second binding when configured.
func (r NodeRow) Node() model.Node {
	n := model.Node{
		ID:          r.ID,
		HardwareKey: r.HardwareKey,
		Label:       r.Label,
		Kind:        model.AnalyticsKind(r.Kind),
		State:       model.NodeState(r.State),
		CapacityL:   r.CapacityL,
	}
	if r.ChannelID != "" {
		n.Bindings = append(n.Bindings, model.ChannelBinding{
			ChannelID:    r.ChannelID,
			ReadKey:      r.ReadKey,
			WriteKey:     r.WriteKey,
			FieldMapping: r.FieldMapping,
		})
	}
	if r.ExtraChannel != "" {
		n.Bindings = append(n.Bindings, model.ChannelBinding{
			ChannelID:    r.ExtraChannel,
			ReadKey:      r.ReadKey,
			FieldMapping: r.FieldMapping,
		})
	}
	return n
}

type UserRow struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Plan        string `json:"plan"`
	CommunityID string `json:"community_id"`
}

type HistoryRow struct {
	NodeID          string    `json:"node_id"`
	PeriodType      string    `json:"period_type"`
	PeriodStart     time.Time `json:"period_start"`
	ConsumptionL    float64   `json:"consumption_l"`
	AvgLevelPercent float64   `json:"avg_level_percent"`
	PeakFlow        float64   `json:"peak_flow"`
	FeedCount       int       `json:"feed_count"`
}
