package hasync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	application "energiebuch/internal/ingest/application"
)

// Publisher pushes imported period summaries to Home Assistant style
// MQTT topics as retained JSON. It is optional; callers construct it
// only when a broker is configured.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	timeout     time.Duration
}

// Option configures the publisher.
type Option func(*Publisher)

// WithTimeout overrides the publish wait timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewPublisher connects to the broker and returns a publisher.
func NewPublisher(cfg application.MQTTConfig, opts ...Option) (*Publisher, error) {
	if cfg.BrokerURL == "" {
		return nil, errors.New("hasync: empty broker url")
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(cfg.BrokerURL)
	clientOpts.SetClientID(cfg.ClientID)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		clientOpts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		clientOpts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("hasync: connect: %w", token.Error())
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "energiebuch"
	}
	publisher := &Publisher{client: client, topicPrefix: prefix, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(publisher)
	}
	return publisher, nil
}

// Publish sends one period summary, retained, QoS 1.
func (p *Publisher) Publish(ctx context.Context, summary application.PeriodSummary) error {
	if p == nil || p.client == nil {
		return errors.New("hasync: nil client")
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("hasync: encode summary: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/%04d-%02d", p.topicPrefix, summary.InstallationID, summary.Year, summary.Month)
	token := p.client.Publish(topic, 1, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-time.After(p.timeout):
		return fmt.Errorf("hasync: publish timeout on %s", topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p != nil && p.client != nil {
		p.client.Disconnect(250)
	}
}
