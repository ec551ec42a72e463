package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTConfig holds the broker settings for MQTTPlatform.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// MQTTPlatform publishes notifications to an MQTT topic so phones or home hubs
// subscribed to it can raise them locally.
type MQTTPlatform struct {
	cfg     MQTTConfig
	client  mqtt.Client
	timeout time.Duration
}

// NewMQTTPlatform creates a platform for cfg. The broker connection is made
// lazily by RequestPermission.
func NewMQTTPlatform(cfg MQTTConfig) *MQTTPlatform {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	return newMQTTPlatform(cfg, mqtt.NewClient(opts))
}

func newMQTTPlatform(cfg MQTTConfig, client mqtt.Client) *MQTTPlatform {
	return &MQTTPlatform{
		cfg:     cfg,
		client:  client,
		timeout: 5 * time.Second,
	}
}

// RequestPermission connects to the broker. A broker that refuses the
// connection is reported as a denied permission.
func (p *MQTTPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	if p.client.IsConnected() {
		return PermissionGranted, nil
	}

	token := p.client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return PermissionDenied, fmt.Errorf("connect to MQTT broker %s: timed out", p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return PermissionDenied, fmt.Errorf("connect to MQTT broker %s: %w", p.cfg.Broker, err)
	}

	log.Info().Str("broker", p.cfg.Broker).Str("topic", p.cfg.Topic).Msg("MQTT notification platform connected")
	return PermissionGranted, nil
}

// Deliver publishes n as JSON on the configured topic.
func (p *MQTTPlatform) Deliver(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return errors.New("publish notification: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to topic %s: %w", p.cfg.Topic, err)
	}
	return nil
}

func (p *MQTTPlatform) Name() string {
	return "mqtt"
}

// Close disconnects from the broker.
func (p *MQTTPlatform) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
