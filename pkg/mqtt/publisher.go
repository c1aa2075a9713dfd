package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher is the narrow surface the engine publishes events through.
type IPublisher interface {
	Publish(topic string, payload []byte) error
	PublishQos(topic string, qos byte, retained bool, payload []byte) error
	Close()
}

type Publisher struct {
	client paho.Client
}

func NewPublisher(client paho.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends at QoS 0 (at most once), the default for telemetry events.
func (p *Publisher) Publish(topic string, payload []byte) error {
	return p.PublishQos(topic, 0, false, payload)
}

func (p *Publisher) PublishQos(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Close gracefully disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
