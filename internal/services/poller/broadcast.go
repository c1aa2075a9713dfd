package poller

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/evaratech/aquanode/internal/model"
	"github.com/evaratech/aquanode/pkg/mqtt"
	"github.com/evaratech/aquanode/pkg/ws"
)

// Broadcaster receives the engine's fire-and-forget events. Failures here
// must never fail the poll cycle, so implementations log and move on.
type Broadcaster interface {
	StateChanged(evt model.StateChangeEvent)
	HistoryCreated(evt model.HistoryCreatedEvent)
}

// EventBroadcaster fans events out to the MQTT collaborator and the
// dashboard websocket hub. Either side may be nil.
type EventBroadcaster struct {
	pub         mqtt.IPublisher
	hub         *ws.Hub
	stateTmpl   string // e.g. "event/stateChange/{node}"
	historyTmpl string // e.g. "event/historyCreated/{node}"
}

func NewEventBroadcaster(pub mqtt.IPublisher, hub *ws.Hub, stateTmpl, historyTmpl string) *EventBroadcaster {
	if strings.TrimSpace(stateTmpl) == "" {
		stateTmpl = "event/stateChange/{node}"
	}
	if strings.TrimSpace(historyTmpl) == "" {
		historyTmpl = "event/historyCreated/{node}"
	}
	return &EventBroadcaster{pub: pub, hub: hub, stateTmpl: stateTmpl, historyTmpl: historyTmpl}
}

func (b *EventBroadcaster) StateChanged(evt model.StateChangeEvent) {
	b.send("state_change", formatTopic(b.stateTmpl, evt.NodeID), evt)
}

func (b *EventBroadcaster) HistoryCreated(evt model.HistoryCreatedEvent) {
	b.send("history_created", formatTopic(b.historyTmpl, evt.NodeID), evt)
}

func (b *EventBroadcaster) send(kind, topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast: marshal %s: %v", kind, err)
		return
	}
	if b.pub != nil {
		if err := b.pub.PublishQos(topic, 1, false, body); err != nil {
			log.Printf("broadcast: publish %s to %s: %v", kind, topic, err)
		}
	}
	if b.hub != nil {
		framed, err := json.Marshal(map[string]any{"type": kind, "payload": payload})
		if err != nil {
			log.Printf("broadcast: frame %s: %v", kind, err)
			return
		}
		b.hub.Broadcast(framed)
	}
}

func formatTopic(tmpl, nodeID string) string {
	return strings.ReplaceAll(tmpl, "{node}", nodeID)
}
