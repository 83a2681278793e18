// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package vitals implements the ingestion pipeline that turns raw device
// telemetry published over MQTT into validated, patient-attributed medical
// readings with an append-only history trail.
package vitals

import "time"

// Family represents one of the supported device integration types.
type Family uint8

const (
	// FamilyAVA4 is the home base-station relaying Bluetooth peripherals.
	FamilyAVA4 Family = iota
	// FamilyKati is the wearable watch.
	FamilyKati
	// FamilyQubeVital is the clinic vitals kiosk.
	FamilyQubeVital
)

func (f Family) String() string {
	switch f {
	case FamilyAVA4:
		return "ava4"
	case FamilyKati:
		return "kati"
	case FamilyQubeVital:
		return "qube_vital"
	default:
		return "unknown"
	}
}

// ReadingType represents a canonical reading type independent of which
// family produced it.
type ReadingType string

const (
	ReadingBloodPressure   ReadingType = "blood_pressure"
	ReadingBloodGlucose    ReadingType = "blood_glucose"
	ReadingSpO2            ReadingType = "spo2"
	ReadingBodyTemperature ReadingType = "body_temperature"
	ReadingWeight          ReadingType = "weight"
	ReadingHeartRate       ReadingType = "heart_rate"
	ReadingStepCount       ReadingType = "step_count"
	ReadingUricAcid        ReadingType = "uric_acid"
	ReadingCholesterol     ReadingType = "cholesterol"
	ReadingLocation        ReadingType = "location"
	ReadingSleepData       ReadingType = "sleep_data"
	ReadingEmergencyAlert  ReadingType = "emergency_alert"
)

// RawMessage is one inbound bus message as delivered by a gateway
// connection. It is created once by the connection manager and consumed
// once by the pipeline.
type RawMessage struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// DecodedPayload is the structured form of a raw payload, owned transiently
// by the pipeline for one message.
type DecodedPayload struct {
	// Document is the parsed JSON tree: map[string]any, []any or a scalar.
	Document any

	// BinaryFallback marks payloads recovered through the hex fallback path.
	BinaryFallback bool

	// OriginalLength is the raw payload length in bytes.
	OriginalLength int
}

// Demographics holds the patient demographic fields a kiosk message
// carries, used to provision placeholder patients.
type Demographics struct {
	Name      string
	BirthDate string
	Gender    string
}

// DeviceIdentity identifies the device a message originates from. Populated
// fields depend on the family.
type DeviceIdentity struct {
	Family       Family
	GatewayMAC   string
	SubDeviceMAC string
	IMEI         string
	CitizenID    string
	KioskMAC     string
	Demographics Demographics
}

// ID returns the primary identifier of the device for the identity's family.
func (d DeviceIdentity) ID() string {
	switch d.Family {
	case FamilyAVA4:
		if d.SubDeviceMAC != "" {
			return d.SubDeviceMAC
		}
		return d.GatewayMAC
	case FamilyKati:
		return d.IMEI
	case FamilyQubeVital:
		return d.KioskMAC
	default:
		return ""
	}
}

// CanonicalReading is a normalized vital-sign or event record. It is created
// once per accepted validated message and never mutated afterwards.
type CanonicalReading struct {
	Type       ReadingType
	Fields     map[string]any
	Family     Family
	DeviceID   string
	CapturedAt time.Time
}

// ValidationOutcome is the result of validating one decoded document against
// its family schema. Errors block persistence, warnings do not. Readings is
// only populated when Valid is true; batch payloads may carry more than one.
type ValidationOutcome struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Identity DeviceIdentity

	// Status carries a device online-status update for heartbeat and
	// online-trigger subtypes; empty otherwise.
	Status string

	Readings []CanonicalReading
}

// ResolutionStrategy identifies which lookup strategy resolved a patient.
type ResolutionStrategy uint8

const (
	StrategyNone ResolutionStrategy = iota
	StrategyRouteCache
	StrategyGatewayMAC
	StrategyDeviceMAC
	StrategyDeviceRegistry
	StrategyWatchRegistry
	StrategyWatchIMEI
	StrategyCitizenID
	StrategyPlaceholder
)

func (s ResolutionStrategy) String() string {
	switch s {
	case StrategyRouteCache:
		return "route_cache"
	case StrategyGatewayMAC:
		return "gateway_mac"
	case StrategyDeviceMAC:
		return "device_mac"
	case StrategyDeviceRegistry:
		return "device_registry"
	case StrategyWatchRegistry:
		return "watch_registry"
	case StrategyWatchIMEI:
		return "watch_imei"
	case StrategyCitizenID:
		return "citizen_id"
	case StrategyPlaceholder:
		return "placeholder"
	default:
		return "none"
	}
}

// PatientRef references a patient record owned by the external patient
// store.
type PatientRef struct {
	ID          string
	DisplayName string
	Strategy    ResolutionStrategy
	Placeholder bool
}

// FailureKind classifies a pipeline failure.
type FailureKind uint8

const (
	KindDecodeError FailureKind = iota
	KindValidationError
	KindPatientNotFound
	KindStorageError
	KindConnectionExhausted
)

func (k FailureKind) String() string {
	switch k {
	case KindDecodeError:
		return "decode_error"
	case KindValidationError:
		return "validation_error"
	case KindPatientNotFound:
		return "patient_not_found"
	case KindStorageError:
		return "storage_error"
	case KindConnectionExhausted:
		return "connection_exhausted"
	default:
		return "unknown"
	}
}

// Stage identifies the pipeline stage a failure occurred in.
type Stage uint8

const (
	StageConnect Stage = iota
	StageDecode
	StageValidate
	StageResolve
	StageStore
)

func (s Stage) String() string {
	switch s {
	case StageConnect:
		return "connect"
	case StageDecode:
		return "decode"
	case StageValidate:
		return "validate"
	case StageResolve:
		return "resolve"
	case StageStore:
		return "store"
	default:
		return "unknown"
	}
}

// FailureEvent is one pipeline failure, consumed by the aggregator's
// sliding window and discarded afterwards.
type FailureEvent struct {
	Kind       FailureKind
	Stage      Stage
	Family     Family
	Device     string
	Detail     string
	OccurredAt time.Time
}

// FailureSink accepts failure events from any pipeline stage.
type FailureSink interface {
	// Record counts one failure event. It never blocks the pipeline and
	// never returns an error.
	Record(event FailureEvent)
}

// DeviceContext carries device attribution for outbound notifications.
type DeviceContext struct {
	Family    string
	DeviceID  string
	PatientID string
	Topic     string
}
