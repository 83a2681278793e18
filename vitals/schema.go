// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// valueRange bounds a physiological value. Out-of-range values are warnings,
// not errors: the reading is still accepted and stored, but flagged.
type valueRange struct {
	Min float64
	Max float64
}

// physioRanges maps canonical field names to their physiological bounds per
// reading type.
var physioRanges = map[ReadingType]map[string]valueRange{
	ReadingBloodPressure: {
		"systolic":  {Min: 70, Max: 250},
		"diastolic": {Min: 40, Max: 150},
		"pulse":     {Min: 30, Max: 250},
	},
	ReadingHeartRate: {
		"heart_rate": {Min: 30, Max: 250},
	},
	ReadingSpO2: {
		"spo2":  {Min: 70, Max: 100},
		"pulse": {Min: 30, Max: 250},
	},
	ReadingBodyTemperature: {
		"temperature": {Min: 30, Max: 45},
	},
	ReadingWeight: {
		"weight": {Min: 2, Max: 300},
	},
	ReadingBloodGlucose: {
		"value": {Min: 20, Max: 600},
	},
	ReadingUricAcid: {
		"value": {Min: 1, Max: 20},
	},
	ReadingCholesterol: {
		"value": {Min: 50, Max: 500},
	},
}

// fieldMapping copies one named value from the raw value container into a
// canonical reading field.
type fieldMapping struct {
	// Canonical is the field name in CanonicalReading.Fields.
	Canonical string

	// Source is the key in the family's raw value container.
	Source string

	// Required marks fields whose absence invalidates the message.
	Required bool

	// Text marks non-numeric fields copied verbatim.
	Text bool
}

// attributeSpec maps a family's device attribute name to a reading type and
// the fields copied from the raw value container. The per-family tables are
// data, not code branches: adding a device attribute is a data change.
type attributeSpec struct {
	Type   ReadingType
	Fields []fieldMapping
}

// Validate applies the family schema to a decoded document and produces a
// validation outcome. Readings is only populated when the outcome is valid.
func Validate(family Family, topic string, doc any, receivedAt time.Time) ValidationOutcome {
	switch family {
	case FamilyAVA4:
		return validateAVA4(topic, doc, receivedAt)
	case FamilyKati:
		return validateKati(topic, doc, receivedAt)
	case FamilyQubeVital:
		return validateQube(doc, receivedAt)
	default:
		return ValidationOutcome{Errors: []string{"unknown device family"}}
	}
}

func (vo *ValidationOutcome) errorf(format string, args ...any) {
	vo.Errors = append(vo.Errors, fmt.Sprintf(format, args...))
}

func (vo *ValidationOutcome) warnf(format string, args ...any) {
	vo.Warnings = append(vo.Warnings, fmt.Sprintf(format, args...))
}

// asObject asserts the document is a JSON object.
func asObject(doc any) (map[string]any, bool) {
	obj, ok := doc.(map[string]any)
	return obj, ok
}

// asNumber coerces numeric and numeric-string representations. Legacy
// firmware sends numbers as strings.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asString coerces a scalar to its string form.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// extractFields copies mapped fields from the raw value container into
// canonical fields, recording type errors and range warnings.
func extractFields(spec attributeSpec, container map[string]any, vo *ValidationOutcome) map[string]any {
	ranges := physioRanges[spec.Type]
	fields := make(map[string]any)

	for _, fm := range spec.Fields {
		raw, ok := container[fm.Source]
		if !ok {
			if fm.Required {
				vo.errorf("missing required field %s", fm.Source)
			}
			continue
		}
		if fm.Text {
			fields[fm.Canonical] = asString(raw)
			continue
		}
		n, ok := asNumber(raw)
		if !ok {
			vo.errorf("field %s is not numeric", fm.Source)
			continue
		}
		if r, ok := ranges[fm.Canonical]; ok && (n < r.Min || n > r.Max) {
			vo.warnf("%s value %g outside range %g-%g", fm.Canonical, n, r.Min, r.Max)
		}
		fields[fm.Canonical] = n
	}

	return fields
}

// capturedAt parses the device-reported capture time, a Unix-seconds value
// under one of the given keys, falling back to the bus arrival time.
func capturedAt(obj map[string]any, receivedAt time.Time, keys ...string) time.Time {
	for _, key := range keys {
		if raw, ok := obj[key]; ok {
			if ts, ok := asNumber(raw); ok && ts > 0 {
				return time.Unix(int64(ts), 0).UTC()
			}
		}
	}

	return receivedAt
}
