// Package notify pushes committed timeline changes to the shop floor.
// Other yard systems (stores, dock scheduling, shift boards) subscribe
// to the broker instead of polling the registry.
package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/harborworks/slipway/core/events"
	"github.com/harborworks/slipway/core/timeline"
	"github.com/harborworks/slipway/infra/logger"
	"github.com/harborworks/slipway/internal/eventbus"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	CABundle   string `json:"ca_bundle"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "slipway-board"
	}
	if c.Topic == "" {
		c.Topic = "slipway/timeline"
	}
}

// pahoClient is the slice of the Paho API the notifier uses, extracted
// so tests can substitute a fake broker connection.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// rescheduleMessage is the wire format of one committed change.
type rescheduleMessage struct {
	UnitID       string `json:"unit_id"`
	StageID      string `json:"stage_id"`
	PlannedStart string `json:"planned_start"`
	PlannedEnd   string `json:"planned_end"`
	CommittedAt  string `json:"committed_at"`
}

// Notifier publishes committed timeline changes to an MQTT topic.
type Notifier struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewNotifier connects to the broker.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("notify")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("broker connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Notifier{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

func clientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.CABundle != "" {
			ca, err := os.ReadFile(cfg.CABundle)
			if err != nil {
				return nil, fmt.Errorf("read ca bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(ca) {
				return nil, fmt.Errorf("no certificates in %s", cfg.CABundle)
			}
			tlsCfg.RootCAs = pool
		}
		if cfg.ClientCert != "" && cfg.ClientKey != "" {
			cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
			if err != nil {
				return nil, fmt.Errorf("load client cert: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// Notify publishes one committed reschedule.
func (n *Notifier) Notify(ev events.StageRescheduledEvent) error {
	msg := rescheduleMessage{
		UnitID:       ev.UnitID,
		StageID:      ev.StageID,
		PlannedStart: timeline.FormatISO(ev.Start),
		PlannedEnd:   timeline.FormatISO(ev.End),
		CommittedAt:  ev.Time.UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.topic, n.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Pump consumes board events from the bus and publishes reschedules
// until the context is cancelled or the bus closes. Publish failures are
// logged, not fatal: the board keeps working without the shop floor.
func (n *Notifier) Pump(ctx context.Context, bus *eventbus.Bus[events.Event]) {
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if r, isResched := ev.(events.StageRescheduledEvent); isResched {
				if err := n.Notify(r); err != nil {
					n.log.Errorf("publish reschedule %s/%s: %v", r.UnitID, r.StageID, err)
				}
			}
		}
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
