// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// sampleLimit bounds how many recent failures an aggregated alert
// enumerates.
const sampleLimit = 5

// AggregatorConfig tunes the failure rate alerting.
type AggregatorConfig struct {
	// Window is the sliding interval over which failures of one kind are
	// counted.
	Window time.Duration `env:"FAILURE_WINDOW"    envDefault:"5m"`

	// Threshold is the in-window count that triggers an aggregated alert.
	Threshold int `env:"FAILURE_THRESHOLD" envDefault:"10"`

	// Cooldown is the minimum interval between two alerts of one kind.
	Cooldown time.Duration `env:"ALERT_COOLDOWN"    envDefault:"15m"`
}

type kindState struct {
	count       int
	windowStart time.Time
	lastAlert   time.Time
	samples     []FailureEvent
}

// Aggregator counts pipeline failures per kind in a sliding window and
// raises one aggregated alert per threshold crossing, with a per-kind
// cooldown to avoid alert storms.
type Aggregator struct {
	mu       sync.Mutex
	cfg      AggregatorConfig
	kinds    map[FailureKind]*kindState
	notifier Notifier
	logger   *slog.Logger
}

var _ FailureSink = (*Aggregator)(nil)

// NewAggregator instantiates the failure aggregator.
func NewAggregator(cfg AggregatorConfig, notifier Notifier, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		cfg:      cfg,
		kinds:    make(map[FailureKind]*kindState),
		notifier: notifier,
		logger:   logger,
	}
}

// Record counts one failure event. When the in-window count of the event's
// kind crosses the threshold and the cooldown has passed, exactly one
// aggregated alert is sent and the window count resets.
func (a *Aggregator) Record(event FailureEvent) {
	a.mu.Lock()

	state, ok := a.kinds[event.Kind]
	if !ok {
		state = &kindState{windowStart: event.OccurredAt}
		a.kinds[event.Kind] = state
	}

	if event.OccurredAt.Sub(state.windowStart) > a.cfg.Window {
		state.count = 0
		state.windowStart = event.OccurredAt
		state.samples = state.samples[:0]
	}

	state.count++
	if len(state.samples) < sampleLimit {
		state.samples = append(state.samples, event)
	}

	if state.count < a.cfg.Threshold {
		a.mu.Unlock()
		return
	}
	if !state.lastAlert.IsZero() && event.OccurredAt.Sub(state.lastAlert) < a.cfg.Cooldown {
		a.mu.Unlock()
		return
	}

	count := state.count
	samples := make([]FailureEvent, len(state.samples))
	copy(samples, state.samples)
	state.count = 0
	state.samples = state.samples[:0]
	state.lastAlert = event.OccurredAt

	a.mu.Unlock()

	a.alert(event.Kind, count, samples)
}

// alert sends one aggregated alert through the notification channel. Send
// failures are logged locally, never re-raised into the pipeline.
func (a *Aggregator) alert(kind FailureKind, count int, samples []FailureEvent) {
	title := fmt.Sprintf("Failure rate alert: %s", kind)
	body := failureDigest(kind, count, a.cfg.Window, samples)

	var device DeviceContext
	if len(samples) > 0 {
		last := samples[len(samples)-1]
		device = DeviceContext{
			Family:   last.Family.String(),
			DeviceID: last.Device,
		}
	}

	if err := a.notifier.Notify(context.Background(), severityFor(kind), title, body, device); err != nil {
		a.logger.Warn("failed to send aggregated alert", slog.String("kind", kind.String()), slog.Any("error", err))
	}
}

// severityFor keeps expected noise from paging: decode errors and routine
// unresolved patients alert at low severity, the rest at high.
func severityFor(kind FailureKind) string {
	switch kind {
	case KindDecodeError, KindPatientNotFound:
		return "warning"
	default:
		return "critical"
	}
}

func failureDigest(kind FailureKind, count int, window time.Duration, samples []FailureEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s failures within %s\n\nRecent failures:\n", count, kind, window)
	for _, s := range samples {
		fmt.Fprintf(&b, "- [%s] stage=%s family=%s device=%s: %s\n",
			s.OccurredAt.Format(time.RFC3339), s.Stage, s.Family, s.Device, s.Detail)
	}

	return b.String()
}
