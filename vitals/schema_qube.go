// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import "time"

// QubeVital message subtypes carried in the payload type field.
const (
	qubeTypeHeartbeat = "HB_Msg"
	qubeTypeReport    = "reportAttribute"
)

// qubeAttributes maps kiosk attribute names to reading types and canonical
// field renames.
var qubeAttributes = map[string]attributeSpec{
	"WBP_JUMPER": {
		Type: ReadingBloodPressure,
		Fields: []fieldMapping{
			{Canonical: "systolic", Source: "bp_high", Required: true},
			{Canonical: "diastolic", Source: "bp_low", Required: true},
			{Canonical: "pulse", Source: "pr"},
		},
	},
	"CONTOUR": {
		Type: ReadingBloodGlucose,
		Fields: []fieldMapping{
			{Canonical: "value", Source: "blood_glucose", Required: true},
		},
	},
	"Oximeter_JUMPER": {
		Type: ReadingSpO2,
		Fields: []fieldMapping{
			{Canonical: "spo2", Source: "spo2", Required: true},
			{Canonical: "pulse", Source: "pulse"},
		},
	},
	"TEMO_Jumper": {
		Type: ReadingBodyTemperature,
		Fields: []fieldMapping{
			{Canonical: "temperature", Source: "Temp", Required: true},
		},
	},
	"BodyScale_JUMPER": {
		Type: ReadingWeight,
		Fields: []fieldMapping{
			{Canonical: "weight", Source: "weight", Required: true},
		},
	},
}

// validateQube validates the shared kiosk topic. Heartbeats and attribute
// reports are discriminated by the in-payload type field.
func validateQube(doc any, receivedAt time.Time) ValidationOutcome {
	vo := ValidationOutcome{Identity: DeviceIdentity{Family: FamilyQubeVital}}

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
	vo.Identity.KioskMAC = mac

	msgType := asString(obj["type"])
	switch msgType {
	case "":
		vo.errorf("missing required field type")
	case qubeTypeHeartbeat:
		vo.Status = "online"
		if data, ok := asObject(obj["data"]); ok {
			if msg := asString(data["msg"]); msg != "" {
				vo.Status = msg
			}
		}
	case qubeTypeReport:
		validateQubeReport(obj, receivedAt, &vo)
	default:
		vo.warnf("unknown kiosk subtype %s", msgType)
	}

	vo.Valid = len(vo.Errors) == 0
	if !vo.Valid {
		vo.Readings = nil
	}

	return vo
}

func validateQubeReport(obj map[string]any, receivedAt time.Time, vo *ValidationOutcome) {
	data, ok := asObject(obj["data"])
	if !ok {
		vo.errorf("missing required field data")
		return
	}

	citizen := asString(data["citiz"])
	if citizen == "" {
		vo.errorf("missing required field citiz")
		return
	}
	vo.Identity.CitizenID = citizen
	vo.Identity.Demographics = Demographics{
		Name:      asString(data["nameTH"]),
		BirthDate: asString(data["birth"]),
		Gender:    asString(data["gender"]),
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

	spec, ok := qubeAttributes[attr]
	if !ok {
		vo.warnf("unknown attribute %s", attr)
		return
	}

	container := value
	if list, ok := value["device_list"].([]any); ok && len(list) > 0 {
		if first, ok := asObject(list[0]); ok {
			container = first
		}
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
		Family:     FamilyQubeVital,
		DeviceID:   vo.Identity.KioskMAC,
		CapturedAt: ts,
	})
}
