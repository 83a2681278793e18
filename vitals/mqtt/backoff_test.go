// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mqtt

import (
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackOffGrowsToCap(t *testing.T) {
	cfg := ReconnectConfig{
		Base:        100 * time.Millisecond,
		Max:         time.Second,
		Multiplier:  2,
		MaxAttempts: 20,
	}
	bo := newBackOff(cfg)

	// Each nominal delay doubles from Base up to Max; jitter keeps the
	// actual delay within the randomization band around the nominal value.
	nominal := cfg.Base
	for i := 0; i < 10; i++ {
		d := bo.NextBackOff()
		require.NotEqual(t, backoff.Stop, d, fmt.Sprintf("attempt %d: schedule ended early", i))

		lo := time.Duration(float64(nominal) * (1 - jitterFactor))
		hi := time.Duration(float64(nominal) * (1 + jitterFactor))
		assert.GreaterOrEqual(t, d, lo, fmt.Sprintf("attempt %d: delay below jitter band", i))
		assert.LessOrEqual(t, d, hi, fmt.Sprintf("attempt %d: delay above jitter band", i))

		nominal = time.Duration(float64(nominal) * cfg.Multiplier)
		if nominal > cfg.Max {
			nominal = cfg.Max
		}
	}
}

func TestBackOffStopsAfterMaxAttempts(t *testing.T) {
	cfg := ReconnectConfig{
		Base:        time.Millisecond,
		Max:         10 * time.Millisecond,
		Multiplier:  2,
		MaxAttempts: 3,
	}
	bo := newBackOff(cfg)

	for i := uint64(0); i < cfg.MaxAttempts; i++ {
		require.NotEqual(t, backoff.Stop, bo.NextBackOff(), fmt.Sprintf("attempt %d: schedule ended early", i))
	}

	assert.Equal(t, backoff.Stop, bo.NextBackOff(), "schedule must end after the configured attempts")
}

func TestBackOffResetsPerEpisode(t *testing.T) {
	cfg := ReconnectConfig{
		Base:        100 * time.Millisecond,
		Max:         time.Second,
		Multiplier:  2,
		MaxAttempts: 10,
	}

	bo := newBackOff(cfg)
	for i := 0; i < 5; i++ {
		bo.NextBackOff()
	}

	// A fresh episode starts over from Base.
	fresh := newBackOff(cfg)
	d := fresh.NextBackOff()
	hi := time.Duration(float64(cfg.Base) * (1 + jitterFactor))
	assert.LessOrEqual(t, d, hi, "a new episode must start from the base delay")
}
