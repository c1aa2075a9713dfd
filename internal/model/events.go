package model

import "time"

// StateChangeEvent is emitted when the reconciler moves a node to a new
// lifecycle state. Fire-and-forget; never persisted by the engine.
type StateChangeEvent struct {
	EventID   string    `json:"event_id"`
	NodeID    string    `json:"node_id"`
	OldState  NodeState `json:"old_state"`
	NewState  NodeState `json:"new_state"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryCreatedEvent announces that a poll cycle appended a historical
// record for a node.
type HistoryCreatedEvent struct {
	EventID     string    `json:"event_id"`
	NodeID      string    `json:"node_id"`
	PeriodStart time.Time `json:"period_start"`
	Timestamp   time.Time `json:"timestamp"`
}
