// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mqtt

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// jitterFactor randomizes each delay uniformly within 0.8x-1.2x of its
// nominal value so reconnecting gateways do not thunder in lockstep.
const jitterFactor = 0.2

// ReconnectConfig tunes the reconnection loop of one gateway connection.
type ReconnectConfig struct {
	// Base is the first reconnect delay.
	Base time.Duration `env:"RECONNECT_BASE"       envDefault:"1s"`

	// Max caps the delay growth.
	Max time.Duration `env:"RECONNECT_MAX"        envDefault:"2m"`

	// Multiplier grows the delay per attempt.
	Multiplier float64 `env:"RECONNECT_MULTIPLIER" envDefault:"2"`

	// MaxAttempts is the number of consecutive failures after which the
	// gateway gives up and requires an operator restart.
	MaxAttempts uint64 `env:"RECONNECT_ATTEMPTS"   envDefault:"10"`
}

// newBackOff builds the exponential backoff schedule for one reconnection
// episode. The attempt counter starts from zero on every episode, so a
// successful reconnect resets the delay to Base.
func newBackOff(cfg ReconnectConfig) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Base
	bo.Multiplier = cfg.Multiplier
	bo.MaxInterval = cfg.Max
	bo.RandomizationFactor = jitterFactor
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.WithMaxRetries(bo, cfg.MaxAttempts)
}
