// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import "time"

// katiTimeLayout is the legacy timestamp format older watch firmware sends
// instead of Unix seconds.
const katiTimeLayout = "02/01/2006 15:04:05"

// katiBloodPressure maps the nested bloodPressure container of watch vital
// sign messages.
var katiBloodPressure = attributeSpec{
	Type: ReadingBloodPressure,
	Fields: []fieldMapping{
		{Canonical: "systolic", Source: "bp_sys", Required: true},
		{Canonical: "diastolic", Source: "bp_dia", Required: true},
		{Canonical: "pulse", Source: "pr"},
	},
}

// katiScalarVitals maps flat numeric vital fields of watch messages to
// reading types and canonical field names.
var katiScalarVitals = []struct {
	Source    string
	Type      ReadingType
	Canonical string
}{
	{Source: "heartRate", Type: ReadingHeartRate, Canonical: "heart_rate"},
	{Source: "spO2", Type: ReadingSpO2, Canonical: "spo2"},
	{Source: "bodyTemperature", Type: ReadingBodyTemperature, Canonical: "temperature"},
}

func validateKati(topic string, doc any, receivedAt time.Time) ValidationOutcome {
	vo := ValidationOutcome{Identity: DeviceIdentity{Family: FamilyKati}}

	obj, ok := asObject(doc)
	if !ok {
		vo.errorf("payload is not an object")
		return vo
	}

	imei := asString(obj["IMEI"])
	if imei == "" {
		vo.errorf("missing required field IMEI")
		return vo
	}
	vo.Identity.IMEI = imei

	switch topic {
	case TopicKatiVitalSign:
		ts := katiCapturedAt(obj, receivedAt, "timeStamps")
		readings := katiVitals(obj, imei, ts, &vo)
		if len(readings) == 0 && len(vo.Errors) == 0 {
			vo.errorf("vital sign message carries no vital fields")
		}
		vo.Readings = readings
	case TopicKatiBatch:
		validateKatiBatch(obj, imei, receivedAt, &vo)
	case TopicKatiHeartbeat:
		vo.Status = "online"
		if _, ok := obj["step"]; ok {
			validateKatiSteps(obj, imei, receivedAt, &vo)
		}
	case TopicKatiLocation:
		validateKatiContainer(obj, imei, "location", ReadingLocation, receivedAt, &vo)
	case TopicKatiSleep:
		validateKatiContainer(obj, imei, "sleep", ReadingSleepData, receivedAt, &vo)
	case TopicKatiSOS:
		validateKatiEmergency(obj, imei, "SOS", receivedAt, &vo)
	case TopicKatiFallDown:
		validateKatiEmergency(obj, imei, "fall_down", receivedAt, &vo)
	case TopicKatiOnline:
		status := asString(obj["status"])
		if status == "" {
			vo.errorf("missing required field status")
			break
		}
		vo.Status = status
	default:
		vo.warnf("unknown watch subtype on topic %s", topic)
	}

	vo.Valid = len(vo.Errors) == 0
	if !vo.Valid {
		vo.Readings = nil
	}

	return vo
}

// katiVitals extracts the vital readings present in one vital sign entry.
// A single message may carry several vital types at once.
func katiVitals(entry map[string]any, imei string, ts time.Time, vo *ValidationOutcome) []CanonicalReading {
	var readings []CanonicalReading

	for _, sv := range katiScalarVitals {
		raw, ok := entry[sv.Source]
		if !ok {
			continue
		}
		n, ok := asNumber(raw)
		if !ok {
			vo.errorf("field %s is not numeric", sv.Source)
			continue
		}
		if r, ok := physioRanges[sv.Type][sv.Canonical]; ok && (n < r.Min || n > r.Max) {
			vo.warnf("%s value %g outside range %g-%g", sv.Canonical, n, r.Min, r.Max)
		}
		readings = append(readings, CanonicalReading{
			Type:       sv.Type,
			Fields:     map[string]any{sv.Canonical: n},
			Family:     FamilyKati,
			DeviceID:   imei,
			CapturedAt: ts,
		})
	}

	if raw, ok := entry["bloodPressure"]; ok {
		container, ok := asObject(raw)
		if !ok {
			vo.errorf("field bloodPressure is not an object")
			return readings
		}
		before := len(vo.Errors)
		fields := extractFields(katiBloodPressure, container, vo)
		if len(vo.Errors) == before {
			readings = append(readings, CanonicalReading{
				Type:       ReadingBloodPressure,
				Fields:     fields,
				Family:     FamilyKati,
				DeviceID:   imei,
				CapturedAt: ts,
			})
		}
	}

	return readings
}

func validateKatiBatch(obj map[string]any, imei string, receivedAt time.Time, vo *ValidationOutcome) {
	list, ok := obj["data"].([]any)
	if !ok {
		vo.errorf("missing required field data")
		return
	}

	for _, raw := range list {
		entry, ok := asObject(raw)
		if !ok {
			vo.warnf("batch entry is not an object")
			continue
		}
		ts := katiCapturedAt(entry, receivedAt, "timestamp", "timeStamps")
		vo.Readings = append(vo.Readings, katiVitals(entry, imei, ts, vo)...)
	}
}

func validateKatiSteps(obj map[string]any, imei string, receivedAt time.Time, vo *ValidationOutcome) {
	n, ok := asNumber(obj["step"])
	if !ok {
		vo.errorf("field step is not numeric")
		return
	}

	vo.Readings = append(vo.Readings, CanonicalReading{
		Type:       ReadingStepCount,
		Fields:     map[string]any{"steps": n},
		Family:     FamilyKati,
		DeviceID:   imei,
		CapturedAt: katiCapturedAt(obj, receivedAt, "timeStamps"),
	})
}

// validateKatiContainer handles the location and sleep data categories whose
// payload is carried as one opaque container object.
func validateKatiContainer(obj map[string]any, imei, key string, rt ReadingType, receivedAt time.Time, vo *ValidationOutcome) {
	container, ok := asObject(obj[key])
	if !ok {
		vo.errorf("missing required field %s", key)
		return
	}

	vo.Readings = append(vo.Readings, CanonicalReading{
		Type:       rt,
		Fields:     map[string]any{key: container},
		Family:     FamilyKati,
		DeviceID:   imei,
		CapturedAt: katiCapturedAt(container, receivedAt, "timeStamps"),
	})
}

func validateKatiEmergency(obj map[string]any, imei, fallback string, receivedAt time.Time, vo *ValidationOutcome) {
	status := asString(obj["status"])
	if status == "" {
		vo.errorf("missing required field status")
		return
	}

	fields := map[string]any{"status": fallback}
	if location, ok := asObject(obj["location"]); ok {
		fields["location"] = location
	}

	vo.Readings = append(vo.Readings, CanonicalReading{
		Type:       ReadingEmergencyAlert,
		Fields:     fields,
		Family:     FamilyKati,
		DeviceID:   imei,
		CapturedAt: katiCapturedAt(obj, receivedAt, "timeStamps"),
	})
}

// katiCapturedAt parses watch timestamps, which arrive either as Unix
// seconds or in the legacy dd/mm/yyyy text form.
func katiCapturedAt(obj map[string]any, receivedAt time.Time, keys ...string) time.Time {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if n, ok := asNumber(raw); ok && n > 0 {
			return time.Unix(int64(n), 0).UTC()
		}
		if s, ok := raw.(string); ok {
			if ts, err := time.Parse(katiTimeLayout, s); err == nil {
				return ts.UTC()
			}
		}
	}

	return receivedAt
}
