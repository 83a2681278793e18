// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals_test

import (
	"fmt"
	"testing"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	binaryWrapped := append([]byte(`{"mac":"`), 0xff)
	binaryWrapped = append(binaryWrapped, []byte(`"}`)...)

	cases := []struct {
		desc     string
		payload  []byte
		fallback bool
		err      error
	}{
		{
			desc:    "json object",
			payload: []byte(`{"mac":"AA:BB:CC:DD:EE:FF","type":"HB_Msg"}`),
		},
		{
			desc:    "json array",
			payload: []byte(`[{"IMEI":"123"},{"IMEI":"456"}]`),
		},
		{
			desc:    "json scalar",
			payload: []byte(`42`),
		},
		{
			desc:    "text that is not json",
			payload: []byte("hello there"),
			err:     vitals.ErrDecode,
		},
		{
			desc:    "empty payload",
			payload: []byte{},
			err:     vitals.ErrDecode,
		},
		{
			desc:     "json with stray binary byte",
			payload:  binaryWrapped,
			fallback: true,
		},
		{
			desc:     "binary whose hex form reads as a number",
			payload:  []byte{0x88},
			fallback: true,
		},
		{
			desc:    "unrecoverable binary",
			payload: []byte{0xff, 0xfe, 0xfd},
			err:     vitals.ErrDecode,
		},
	}

	for _, tc := range cases {
		dp, err := vitals.Decode(tc.payload)
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.err, err))
		if tc.err != nil {
			continue
		}
		assert.NotNil(t, dp.Document, fmt.Sprintf("%s: expected a document\n", tc.desc))
		assert.Equal(t, tc.fallback, dp.BinaryFallback, fmt.Sprintf("%s: unexpected fallback flag\n", tc.desc))
		assert.Equal(t, len(tc.payload), dp.OriginalLength, fmt.Sprintf("%s: unexpected original length\n", tc.desc))
	}
}

func TestDecodeHexFallbackDocument(t *testing.T) {
	payload := append([]byte(`{"mac":"`), 0xff)
	payload = append(payload, []byte(`","type":"HB_Msg"}`)...)

	dp, err := vitals.Decode(payload)
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	require.True(t, dp.BinaryFallback)

	obj, ok := dp.Document.(map[string]any)
	require.True(t, ok, "expected an object document")
	assert.Equal(t, "HB_Msg", obj["type"])
}

func TestDecodeNeverPanics(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		{0xc0, 0xaf},
		{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10},
		[]byte("{\"unterminated\": "),
		[]byte("\xed\xa0\x80"),
	}

	for _, payload := range payloads {
		assert.NotPanics(t, func() {
			_, _ = vitals.Decode(payload)
		})
	}
}
