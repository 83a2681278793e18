// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the service host surface: health, version and
// Prometheus metrics.
package api

import (
	"net/http"

	stardust "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MakeHandler returns a HTTP handler for API endpoints.
func MakeHandler(svcName, instanceID string) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", stardust.Health(svcName, instanceID))
	r.Get("/version", stardust.Health(svcName, instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
