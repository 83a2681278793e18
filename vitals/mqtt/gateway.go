// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package mqtt implements the per-family gateway connection manager: it
// owns the bus connection lifecycle and delivers raw messages into the
// pipeline.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/ticker"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const probeTopicPrefix = "stardust/probe"

var (
	// ErrConnect indicates a failed connection to the MQTT broker.
	ErrConnect = errors.New("failed to connect to MQTT broker")

	// ErrSubscribe indicates a failed subscription on the MQTT broker.
	ErrSubscribe = errors.New("failed to subscribe to device topics")

	// ErrConnectTimeout indicates the broker did not answer within the
	// configured timeout.
	ErrConnectTimeout = errors.New("timed out waiting for MQTT broker")
)

// Config holds one gateway connection configuration.
type Config struct {
	URL           string          `env:"URL"            envDefault:"tcp://localhost:1883"`
	Username      string          `env:"USERNAME"       envDefault:""`
	Password      string          `env:"PASSWORD"       envDefault:""`
	ClientID      string          `env:"CLIENT_ID"      envDefault:""`
	QoS           int             `env:"QOS"            envDefault:"1"`
	Timeout       time.Duration   `env:"TIMEOUT"        envDefault:"30s"`
	CheckInterval time.Duration   `env:"CHECK_INTERVAL" envDefault:"1m"`
	Reconnect     ReconnectConfig `envPrefix:""`
}

// Ingester accepts raw messages pulled off the bus.
type Ingester interface {
	Ingest(msg vitals.RawMessage) error
}

// Gateway maintains exactly one logical connection for one device family's
// topic set and keeps it alive across failures.
type Gateway struct {
	family   vitals.Family
	cfg      Config
	topics   []string
	ingester Ingester
	failures vitals.FailureSink
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	client  mqtt.Client

	lost    chan struct{}
	stop    chan struct{}
	lastMsg atomic.Int64
}

// NewGateway instantiates the connection manager for one family.
func NewGateway(family vitals.Family, cfg Config, ingester Ingester, failures vitals.FailureSink, logger *slog.Logger) *Gateway {
	return &Gateway{
		family:   family,
		cfg:      cfg,
		topics:   vitals.Topics(family),
		ingester: ingester,
		failures: failures,
		logger:   logger,
		lost:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Start establishes the connection, subscribes to the family's fixed topic
// list and begins delivering messages. Calling Start while already
// connected is a no-op.
func (gw *Gateway) Start(ctx context.Context) error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.started {
		return nil
	}

	client, err := gw.connect()
	if err != nil {
		return err
	}
	gw.client = client
	gw.started = true
	gw.lastMsg.Store(time.Now().UnixNano())

	go gw.supervise(ctx)
	go gw.liveness(ctx)

	return nil
}

// Stop gracefully unsubscribes and closes the connection. It is safe to
// call at any time.
func (gw *Gateway) Stop() error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.stopped {
		return nil
	}
	gw.stopped = true
	close(gw.stop)

	if gw.client != nil && gw.client.IsConnected() {
		if token := gw.client.Unsubscribe(gw.topics...); token.WaitTimeout(gw.cfg.Timeout) && token.Error() != nil {
			gw.logger.Warn("failed to unsubscribe", slog.String("family", gw.family.String()), slog.Any("error", token.Error()))
		}
		gw.client.Disconnect(250)
	}

	return nil
}

// connect dials the broker and subscribes the family topic set on a fresh
// client.
func (gw *Gateway) connect() (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(gw.cfg.URL).
		SetClientID(gw.cfg.ClientID).
		SetUsername(gw.cfg.Username).
		SetPassword(gw.cfg.Password).
		SetAutoReconnect(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			gw.logger.Warn("connection lost", slog.String("family", gw.family.String()), slog.Any("error", err))
			gw.signalLost()
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(gw.cfg.Timeout) {
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(ErrConnect, err)
	}

	filters := make(map[string]byte, len(gw.topics))
	for _, topic := range gw.topics {
		filters[topic] = byte(gw.cfg.QoS)
	}
	token = client.SubscribeMultiple(filters, gw.handleMessage)
	if !token.WaitTimeout(gw.cfg.Timeout) {
		client.Disconnect(0)
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, errors.Wrap(ErrSubscribe, err)
	}

	return client, nil
}

// handleMessage delivers one inbound bus message to the pipeline. Delivery
// order within one connection equals arrival order on the wire.
func (gw *Gateway) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	gw.lastMsg.Store(time.Now().UnixNano())

	raw := vitals.RawMessage{
		Topic:      msg.Topic(),
		Payload:    msg.Payload(),
		ReceivedAt: time.Now().UTC(),
	}
	if err := gw.ingester.Ingest(raw); err != nil {
		gw.logger.Warn("message not queued", slog.String("topic", raw.Topic), slog.Any("error", err))
	}
}

// supervise runs the reconnection loop. After the configured number of
// consecutive failures the gateway stops retrying and reports a fatal
// connection-exhausted failure; the other families keep operating.
func (gw *Gateway) supervise(ctx context.Context) {
	for {
		select {
		case <-gw.stop:
			return
		case <-ctx.Done():
			return
		case <-gw.lost:
		}

		if !gw.restore(ctx) {
			return
		}
	}
}

// restore re-establishes a lost connection and reports whether supervision
// should continue. An aborted reconnect during shutdown is not an
// exhaustion: only genuine retry exhaustion is recorded as fatal.
func (gw *Gateway) restore(ctx context.Context) bool {
	err := gw.reconnect(ctx)
	if err == nil {
		return true
	}
	if ctx.Err() != nil || gw.stopping() {
		return false
	}

	gw.failures.Record(vitals.FailureEvent{
		Kind:       vitals.KindConnectionExhausted,
		Stage:      vitals.StageConnect,
		Family:     gw.family,
		Detail:     err.Error(),
		OccurredAt: time.Now().UTC(),
	})
	gw.logger.Error("reconnection attempts exhausted, gateway requires restart",
		slog.String("family", gw.family.String()),
		slog.Any("error", err),
	)

	return false
}

func (gw *Gateway) stopping() bool {
	select {
	case <-gw.stop:
		return true
	default:
		return false
	}
}

func (gw *Gateway) reconnect(ctx context.Context) error {
	op := func() error {
		client, err := gw.connect()
		if err != nil {
			gw.logger.Warn("reconnect attempt failed", slog.String("family", gw.family.String()), slog.Any("error", err))
			return err
		}

		gw.mu.Lock()
		gw.client = client
		gw.mu.Unlock()
		gw.lastMsg.Store(time.Now().UnixNano())
		gw.logger.Info("reconnected", slog.String("family", gw.family.String()))

		return nil
	}

	return backoff.Retry(op, backoff.WithContext(newBackOff(gw.cfg.Reconnect), ctx))
}

// liveness probes the link when no message arrived for longer than twice
// the check interval while nominally connected. A failed probe forces the
// reconnection loop immediately instead of waiting for the transport's own
// timeout.
func (gw *Gateway) liveness(ctx context.Context) {
	tk := ticker.NewTicker(gw.cfg.CheckInterval)
	defer tk.Stop()

	for {
		select {
		case <-gw.stop:
			return
		case <-ctx.Done():
			return
		case <-tk.Tick():
		}

		gw.mu.Lock()
		client := gw.client
		gw.mu.Unlock()
		if client == nil || !client.IsConnected() {
			continue
		}

		idle := time.Since(time.Unix(0, gw.lastMsg.Load()))
		if idle <= 2*gw.cfg.CheckInterval {
			continue
		}

		topic := fmt.Sprintf("%s/%s", probeTopicPrefix, gw.cfg.ClientID)
		token := client.Publish(topic, 0, false, []byte{})
		if !token.WaitTimeout(gw.cfg.Timeout) || token.Error() != nil {
			gw.logger.Warn("liveness probe failed, forcing reconnect",
				slog.String("family", gw.family.String()),
				slog.Duration("idle", idle),
			)
			client.Disconnect(0)
			gw.signalLost()
		}
	}
}

func (gw *Gateway) signalLost() {
	select {
	case gw.lost <- struct{}{}:
	default:
	}
}
