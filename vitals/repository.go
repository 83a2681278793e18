// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"context"
	"strings"
)

// Hospital references a care facility owning a vitals kiosk.
type Hospital struct {
	ID   string
	Name string
}

// DeviceAssignment is a sub-device registry entry carrying its own patient
// reference.
type DeviceAssignment struct {
	MAC        string
	PatientID  string
	DeviceType string
}

// WatchAssignment is a registered-watch record carrying a patient reference.
type WatchAssignment struct {
	IMEI      string
	PatientID string
	Status    string
}

// PatientRepository specifies the patient store API consumed, not owned, by
// the pipeline.
type PatientRepository interface {
	// RetrieveByGatewayMAC returns the patient a base-station gateway is
	// registered to.
	RetrieveByGatewayMAC(ctx context.Context, mac string) (PatientRef, error)

	// RetrieveBySubDeviceMAC returns the patient a Bluetooth peripheral is
	// registered to through the per-reading-type device mapping field.
	RetrieveBySubDeviceMAC(ctx context.Context, rt ReadingType, mac string) (PatientRef, error)

	// RetrieveByWatchIMEI returns the patient a watch identifier is
	// registered to directly on the patient record.
	RetrieveByWatchIMEI(ctx context.Context, imei string) (PatientRef, error)

	// RetrieveByCitizenID returns the patient with the given citizen
	// identifier, matched against legacy field names and a digits-only
	// normalized variant.
	RetrieveByCitizenID(ctx context.Context, citizenID string) (PatientRef, error)

	// EnsurePlaceholder provisions a placeholder patient for a citizen
	// identifier not yet registered. It is idempotent per citizen id: a
	// concurrent second call returns the already created record.
	EnsurePlaceholder(ctx context.Context, citizenID string, d Demographics) (PatientRef, error)
}

// DeviceRepository specifies the device registry API.
type DeviceRepository interface {
	// RetrieveAssignment returns the registry entry for a sub-device MAC.
	RetrieveAssignment(ctx context.Context, mac string) (DeviceAssignment, error)

	// RetrieveWatch returns the registered-watch record for an IMEI.
	RetrieveWatch(ctx context.Context, imei string) (WatchAssignment, error)
}

// HospitalRepository specifies the facility registry API.
type HospitalRepository interface {
	// RetrieveByKioskMAC returns the facility owning a vitals kiosk.
	RetrieveByKioskMAC(ctx context.Context, mac string) (Hospital, error)
}

// ReadingRepository specifies the reading store API.
type ReadingRepository interface {
	// UpsertLatest overwrites the latest-value slot keyed by patient and
	// reading type. Last write wins.
	UpsertLatest(ctx context.Context, patientID string, r CanonicalReading) error

	// AppendHistory appends one immutable history entry for the reading.
	AppendHistory(ctx context.Context, patientID string, r CanonicalReading) error

	// AppendAlert appends one emergency alert entry. Alerts never touch the
	// latest-value slot.
	AppendAlert(ctx context.Context, patientID string, r CanonicalReading) error
}

// StatusRepository specifies the device online-status store API.
type StatusRepository interface {
	// UpdateStatus records the online status reported by a device heartbeat.
	UpdateStatus(ctx context.Context, family Family, deviceID, status string) error
}

// RouteMapRepository caches device identity to patient id routes resolved by
// the resolver chain.
type RouteMapRepository interface {
	// Save stores a device key to patient id route.
	Save(ctx context.Context, key, patientID string) error

	// Get returns the patient id for a device key.
	Get(ctx context.Context, key string) (string, error)

	// Remove removes the route for a device key.
	Remove(ctx context.Context, key string) error
}

// Notifier specifies the outbound notification channel contract. Send
// failures are logged by implementations and never re-raised into the
// pipeline.
type Notifier interface {
	Notify(ctx context.Context, severity, title, body string, device DeviceContext) error
}

// NormalizeCitizenID strips whitespace and punctuation from a citizen
// identifier, leaving digits only. Legacy records store the identifier both
// dashed and plain.
func NormalizeCitizenID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
