// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package stardust

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	contentType     = "Content-Type"
	contentTypeJSON = "application/health+json"
	svcStatus       = "pass"
	description     = "%s service"
)

var (
	// Version represents the last service git tag in git history.
	// It's meant to be set using go build ldflags:
	// -ldflags "-X 'github.com/TELY01-DEV/stardust-my-firstcare-com-sub003.Version=0.1.0'".
	Version = "0.1.0"
	// Commit represents the service git commit hash.
	Commit = "XXXXXXXXXXXX"
	// BuildTime represents the service build time.
	BuildTime = "1970-01-01_00:00:00"
)

// HealthInfo contains health check endpoint response.
type HealthInfo struct {
	// Status contains service status.
	Status string `json:"status"`

	// Version contains current service version.
	Version string `json:"version"`

	// Commit represents the git hash commit.
	Commit string `json:"commit"`

	// Description contains service description.
	Description string `json:"description"`

	// BuildTime contains service build time.
	BuildTime string `json:"build_time"`

	// InstanceID contains the ID of the current service instance.
	InstanceID string `json:"instance_id"`
}

// Health exposes an HTTP handler for retrieving service health.
func Health(service, instanceID string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		res := HealthInfo{
			Status:      svcStatus,
			Version:     Version,
			Commit:      Commit,
			Description: fmt.Sprintf(description, service),
			BuildTime:   BuildTime,
			InstanceID:  instanceID,
		}

		rw.Header().Set(contentType, contentTypeJSON)
		if err := json.NewEncoder(rw).Encode(res); err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
		}
	}
}
