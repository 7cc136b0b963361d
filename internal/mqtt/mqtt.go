// Package mqtt publishes the active content to hardware players that follow
// a retained topic instead of holding a websocket open.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

const DefaultTopic = "beacon/display/active"

// Message is the payload published on every change.
type Message struct {
	Type      string              `json:"type"`
	Content   model.ActiveContent `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
}

var connectHandler paho.OnConnectHandler = func(client paho.Client) {
	log.Info().Msg("Connected to MQTT broker")
}

var connectLostHandler paho.ConnectionLostHandler = func(client paho.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

type Publisher struct {
	client paho.Client
	topic  string
	now    func() time.Time
}

// Connect dials the broker with a unique client id and auto-reconnect.
func Connect(brokerURL, topic string) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("beacon-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Str("broker", brokerURL).Str("topic", topic).Msg("MQTT publisher initialized")
	return NewPublisher(client, topic), nil
}

func NewPublisher(client paho.Client, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{client: client, topic: topic, now: time.Now}
}

// Publish sends content as a retained QoS 1 message so a player that connects
// later still receives the current state.
func (p *Publisher) Publish(ctx context.Context, content model.ActiveContent) error {
	payload, err := json.Marshal(Message{Type: "active_content", Content: content, Timestamp: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode mqtt message: %w", err)
	}

	token := p.client.Publish(p.topic, 1, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
	log.Info().Msg("MQTT publisher disconnected")
}
