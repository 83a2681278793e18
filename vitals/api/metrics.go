// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

//go:build !test

package api

import (
	"context"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/go-kit/kit/metrics"
)

var _ vitals.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     vitals.Service
}

// MetricsMiddleware instruments core service by tracking request count and latency.
func MetricsMiddleware(svc vitals.Service, counter metrics.Counter, latency metrics.Histogram) vitals.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Handle(ctx context.Context, msg vitals.RawMessage) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "handle").Add(1)
		mm.latency.With("method", "handle").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Handle(ctx, msg)
}
