package model

// NodeState is the lifecycle state of a provisioned node.
type NodeState string

const (
	StateProvisioning NodeState = "provisioning"
	StateOnline       NodeState = "online"
	StateOffline      NodeState = "offline"
	StateAlert        NodeState = "alert"
)

// AnalyticsKind selects which derived metrics apply to a node. Nodes are a
// single entity discriminated by kind; there is no subtype hierarchy.
type AnalyticsKind string

const (
	KindTank     AnalyticsKind = "tank"
	KindDeepWell AnalyticsKind = "deep_well"
	KindFlow     AnalyticsKind = "flow"
)

// Pollable reports whether the poll scheduler should pick this node up.
// Nodes still in provisioning are skipped until an owner activates them.
func (s NodeState) Pollable() bool {
	return s == StateOnline || s == StateOffline || s == StateAlert
}

// ChannelBinding ties a node to one remote telemetry channel. ReadKey is
// empty for public channels. FieldMapping translates raw field names
// (field1..field8) to semantic names (distance, temperature, flow_rate...).
type ChannelBinding struct {
	ChannelID    string            `json:"channel_id"`
	ReadKey      string            `json:"read_key,omitempty"`
	WriteKey     string            `json:"write_key,omitempty"`
	FieldMapping map[string]string `json:"field_mapping"`
}

// Node represents a deployed hardware unit (tank sensor, deep-well probe,
// flow meter). State is mutated only by the status reconciler and by
// owner-level updates; the engine never deletes nodes.
type Node struct {
	ID          string           `json:"id"`
	HardwareKey string           `json:"hardware_key"`
	Label       string           `json:"label"`
	Kind        AnalyticsKind    `json:"kind"`
	State       NodeState        `json:"state"`
	CapacityL   float64          `json:"capacity_l"`
	Bindings    []ChannelBinding `json:"bindings"`
}
