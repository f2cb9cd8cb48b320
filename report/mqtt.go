package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTConfig selects the broker and topic for status reports.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	ClientID string `json:"client_id"`
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes reports as JSON to a topic.
type MQTT struct {
	client  publisher
	topic   string
	timeout time.Duration
	close   func()
}

// DialMQTT connects to the broker.
func DialMQTT(cfg MQTTConfig) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, token.Error())
	}
	m := newMQTT(c, cfg.Topic)
	m.close = func() { c.Disconnect(250) }
	return m, nil
}

func newMQTT(c publisher, topic string) *MQTT {
	return &MQTT{client: c, topic: topic, timeout: 5 * time.Second}
}

// Publish implements Sink.
func (m *MQTT) Publish(ctx context.Context, st greenlife.Status) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.timeout):
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.close != nil {
		m.close()
	}
}
