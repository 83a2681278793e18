// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals_test

import (
	"fmt"
	"testing"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kioskMAC  = "DC:A6:32:11:B8:41"
	citizenID = "1-2345-67890-12-3"
)

func qubeReport(attr string, container map[string]any) map[string]any {
	return map[string]any{
		"mac":  kioskMAC,
		"type": "reportAttribute",
		"data": map[string]any{
			"citiz":     citizenID,
			"nameTH":    "สมชาย ใจดี",
			"birth":     "25110415",
			"gender":    "1",
			"attribute": attr,
			"value": map[string]any{
				"device_list": []any{container},
			},
		},
	}
}

func TestValidateQubeAttributes(t *testing.T) {
	cases := []struct {
		desc      string
		attr      string
		container map[string]any
		rt        vitals.ReadingType
		fields    map[string]any
	}{
		{
			desc: "Jumper blood pressure",
			attr: "WBP_JUMPER",
			container: map[string]any{
				"bp_high": float64(128),
				"bp_low":  float64(84),
				"pr":      float64(70),
			},
			rt:     vitals.ReadingBloodPressure,
			fields: map[string]any{"systolic": float64(128), "diastolic": float64(84), "pulse": float64(70)},
		},
		{
			desc: "Contour glucose",
			attr: "CONTOUR",
			container: map[string]any{
				"blood_glucose": float64(112),
			},
			rt:     vitals.ReadingBloodGlucose,
			fields: map[string]any{"value": float64(112)},
		},
		{
			desc: "Jumper oximeter",
			attr: "Oximeter_JUMPER",
			container: map[string]any{
				"spo2":  float64(96),
				"pulse": float64(75),
			},
			rt:     vitals.ReadingSpO2,
			fields: map[string]any{"spo2": float64(96), "pulse": float64(75)},
		},
		{
			desc: "Jumper thermometer",
			attr: "TEMO_Jumper",
			container: map[string]any{
				"Temp": 36.4,
			},
			rt:     vitals.ReadingBodyTemperature,
			fields: map[string]any{"temperature": 36.4},
		},
		{
			desc: "Jumper body scale",
			attr: "BodyScale_JUMPER",
			container: map[string]any{
				"weight": 62.3,
			},
			rt:     vitals.ReadingWeight,
			fields: map[string]any{"weight": 62.3},
		},
	}

	for _, tc := range cases {
		vo := vitals.Validate(vitals.FamilyQubeVital, vitals.TopicQube, qubeReport(tc.attr, tc.container), receivedAt)
		require.True(t, vo.Valid, fmt.Sprintf("%s: expected valid outcome, errors: %v\n", tc.desc, vo.Errors))
		require.Len(t, vo.Readings, 1, fmt.Sprintf("%s: expected one reading\n", tc.desc))

		r := vo.Readings[0]
		assert.Equal(t, tc.rt, r.Type, fmt.Sprintf("%s: unexpected reading type\n", tc.desc))
		assert.Equal(t, tc.fields, r.Fields, fmt.Sprintf("%s: unexpected fields\n", tc.desc))
		assert.Equal(t, kioskMAC, r.DeviceID, fmt.Sprintf("%s: unexpected device id\n", tc.desc))
		assert.Equal(t, citizenID, vo.Identity.CitizenID, fmt.Sprintf("%s: expected citizen identity\n", tc.desc))
	}
}

func TestValidateQube(t *testing.T) {
	cases := []struct {
		desc     string
		doc      any
		valid    bool
		status   string
		warnings int
		readings int
	}{
		{
			desc: "heartbeat",
			doc: map[string]any{
				"mac":  kioskMAC,
				"type": "HB_Msg",
			},
			valid:  true,
			status: "online",
		},
		{
			desc: "missing kiosk mac",
			doc: map[string]any{
				"type": "HB_Msg",
			},
		},
		{
			desc: "missing message type",
			doc: map[string]any{
				"mac": kioskMAC,
			},
		},
		{
			desc: "payload is not an object",
			doc:  "CM4 boot banner",
		},
		{
			desc: "report without citizen id",
			doc: map[string]any{
				"mac":  kioskMAC,
				"type": "reportAttribute",
				"data": map[string]any{
					"attribute": "WBP_JUMPER",
					"value":     map[string]any{},
				},
			},
		},
		{
			desc: "report with unknown attribute",
			doc: qubeReport("NEW_KIOSK_MODULE", map[string]any{
				"reading": float64(1),
			}),
			valid:    true,
			warnings: 1,
		},
		{
			desc: "report with missing required field",
			doc: qubeReport("WBP_JUMPER", map[string]any{
				"bp_high": float64(128),
			}),
		},
		{
			desc: "unknown subtype flagged not rejected",
			doc: map[string]any{
				"mac":  kioskMAC,
				"type": "FW_Update",
			},
			valid:    true,
			warnings: 1,
		},
		{
			desc: "out-of-range temperature flagged not rejected",
			doc: qubeReport("TEMO_Jumper", map[string]any{
				"Temp": 58.2,
			}),
			valid:    true,
			warnings: 1,
			readings: 1,
		},
		{
			desc: "temperature at upper bound passes clean",
			doc: qubeReport("TEMO_Jumper", map[string]any{
				"Temp": float64(45),
			}),
			valid:    true,
			readings: 1,
		},
		{
			desc: "temperature one unit above bound flagged",
			doc: qubeReport("TEMO_Jumper", map[string]any{
				"Temp": float64(46),
			}),
			valid:    true,
			warnings: 1,
			readings: 1,
		},
		{
			desc: "temperature one unit below bound flagged",
			doc: qubeReport("TEMO_Jumper", map[string]any{
				"Temp": float64(29),
			}),
			valid:    true,
			warnings: 1,
			readings: 1,
		},
	}

	for _, tc := range cases {
		vo := vitals.Validate(vitals.FamilyQubeVital, vitals.TopicQube, tc.doc, receivedAt)
		assert.Equal(t, tc.valid, vo.Valid, fmt.Sprintf("%s: expected valid=%v, errors: %v\n", tc.desc, tc.valid, vo.Errors))
		assert.Equal(t, tc.status, vo.Status, fmt.Sprintf("%s: unexpected status\n", tc.desc))
		assert.Len(t, vo.Warnings, tc.warnings, fmt.Sprintf("%s: unexpected warnings %v\n", tc.desc, vo.Warnings))
		assert.Len(t, vo.Readings, tc.readings, fmt.Sprintf("%s: unexpected readings\n", tc.desc))
	}
}

func TestValidateQubeDemographics(t *testing.T) {
	vo := vitals.Validate(vitals.FamilyQubeVital, vitals.TopicQube, qubeReport("CONTOUR", map[string]any{
		"blood_glucose": float64(104),
	}), receivedAt)

	require.True(t, vo.Valid, fmt.Sprintf("expected valid outcome, errors: %v", vo.Errors))
	assert.Equal(t, "สมชาย ใจดี", vo.Identity.Demographics.Name)
	assert.Equal(t, "25110415", vo.Identity.Demographics.BirthDate)
	assert.Equal(t, "1", vo.Identity.Demographics.Gender)
}
