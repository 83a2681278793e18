// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import "time"

// AVA4 message subtypes carried in the payload type field.
const (
	ava4TypeHeartbeat = "HB_Msg"
	ava4TypeReport    = "reportAttribute"
)

// ava4Attributes maps AVA4 sub-device attribute names to reading types and
// canonical field renames. Raw key names differ per peripheral vendor.
var ava4Attributes = map[string]attributeSpec{
	"BP_BIOLIGTH": {
		Type: ReadingBloodPressure,
		Fields: []fieldMapping{
			{Canonical: "systolic", Source: "bp_high", Required: true},
			{Canonical: "diastolic", Source: "bp_low", Required: true},
			{Canonical: "pulse", Source: "PR"},
		},
	},
	"WBP BIOLIGHT": {
		Type: ReadingBloodPressure,
		Fields: []fieldMapping{
			{Canonical: "systolic", Source: "bp_high", Required: true},
			{Canonical: "diastolic", Source: "bp_low", Required: true},
			{Canonical: "pulse", Source: "PR"},
		},
	},
	"BLE_BPG": {
		Type: ReadingBloodPressure,
		Fields: []fieldMapping{
			{Canonical: "systolic", Source: "bp_high", Required: true},
			{Canonical: "diastolic", Source: "bp_low", Required: true},
			{Canonical: "pulse", Source: "PR"},
		},
	},
	"Contour_Elite": {
		Type: ReadingBloodGlucose,
		Fields: []fieldMapping{
			{Canonical: "value", Source: "blood_glucose", Required: true},
			{Canonical: "marker", Source: "marker", Text: true},
		},
	},
	"AccuChek_Instant": {
		Type: ReadingBloodGlucose,
		Fields: []fieldMapping{
			{Canonical: "value", Source: "blood_glucose", Required: true},
		},
	},
	"Oximeter JUMPER": {
		Type: ReadingSpO2,
		Fields: []fieldMapping{
			{Canonical: "spo2", Source: "spo2", Required: true},
			{Canonical: "pulse", Source: "pulse"},
			{Canonical: "pi", Source: "pi"},
		},
	},
	"IR_TEMO_JUMPER": {
		Type: ReadingBodyTemperature,
		Fields: []fieldMapping{
			{Canonical: "temperature", Source: "temp", Required: true},
			{Canonical: "mode", Source: "mode", Text: true},
		},
	},
	"BodyScale_JUMPER": {
		Type: ReadingWeight,
		Fields: []fieldMapping{
			{Canonical: "weight", Source: "weight", Required: true},
			{Canonical: "resistance", Source: "resistance"},
		},
	},
	"MGSS_REF_UA": {
		Type: ReadingUricAcid,
		Fields: []fieldMapping{
			{Canonical: "value", Source: "uric_acid", Required: true},
		},
	},
	"MGSS_REF_CHOL": {
		Type: ReadingCholesterol,
		Fields: []fieldMapping{
			{Canonical: "value", Source: "cholesterol", Required: true},
		},
	},
}

func validateAVA4(topic string, doc any, receivedAt time.Time) ValidationOutcome {
	vo := ValidationOutcome{Identity: DeviceIdentity{Family: FamilyAVA4}}

	obj, ok := asObject(doc)
	if !ok {
		vo.errorf("payload is not an object")
		return vo
	}

	mac := asString(obj["mac"])
	if mac == "" {
		vo.errorf("missing required field mac")
		return vo
	}
	vo.Identity.GatewayMAC = mac

	msgType := asString(obj["type"])
	if msgType == "" {
		vo.errorf("missing required field type")
		return vo
	}

	switch topic {
	case TopicAVA4Heartbeat:
		validateAVA4Heartbeat(obj, msgType, &vo)
	default:
		validateAVA4Report(obj, msgType, receivedAt, &vo)
	}

	vo.Valid = len(vo.Errors) == 0
	if !vo.Valid {
		vo.Readings = nil
	}

	return vo
}

func validateAVA4Heartbeat(obj map[string]any, msgType string, vo *ValidationOutcome) {
	if msgType != ava4TypeHeartbeat {
		vo.warnf("unknown heartbeat subtype %s", msgType)
	}

	vo.Status = "online"
	if data, ok := asObject(obj["data"]); ok {
		if msg := asString(data["msg"]); msg != "" {
			vo.Status = msg
		}
	}
}

func validateAVA4Report(obj map[string]any, msgType string, receivedAt time.Time, vo *ValidationOutcome) {
	if msgType != ava4TypeReport {
		vo.warnf("unknown report subtype %s", msgType)
		return
	}

	data, ok := asObject(obj["data"])
	if !ok {
		vo.errorf("missing required field data")
		return
	}
	attr := asString(data["attribute"])
	if attr == "" {
		vo.errorf("missing required field attribute")
		return
	}
	value, ok := asObject(data["value"])
	if !ok {
		vo.errorf("missing required field value")
		return
	}

	spec, ok := ava4Attributes[attr]
	if !ok {
		// Forward-compatibility with firmware updates: unknown attributes
		// are flagged, not rejected.
		vo.warnf("unknown attribute %s", attr)
		return
	}

	// Peripherals report either a device_list batch or a flat container.
	container := value
	if list, ok := value["device_list"].([]any); ok && len(list) > 0 {
		if first, ok := asObject(list[0]); ok {
			container = first
		}
	}

	if ble := asString(container["ble_addr"]); ble != "" {
		vo.Identity.SubDeviceMAC = ble
	} else if sub := asString(data["mac"]); sub != "" {
		vo.Identity.SubDeviceMAC = sub
	}

	fields := extractFields(spec, container, vo)
	if len(vo.Errors) > 0 {
		return
	}

	ts := capturedAt(container, receivedAt, "scan_time")
	if ts.Equal(receivedAt) {
		ts = capturedAt(obj, receivedAt, "time")
	}

	vo.Readings = append(vo.Readings, CanonicalReading{
		Type:       spec.Type,
		Fields:     fields,
		Family:     FamilyAVA4,
		DeviceID:   vo.Identity.ID(),
		CapturedAt: ts,
	})
}
