// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	mfclog "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logMsg struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func TestNew(t *testing.T) {
	cases := []struct {
		desc  string
		level string
		err   bool
	}{
		{desc: "debug level", level: "debug", err: false},
		{desc: "info level", level: "info", err: false},
		{desc: "warn level", level: "warn", err: false},
		{desc: "error level", level: "error", err: false},
		{desc: "mixed case level", level: "Info", err: false},
		{desc: "invalid level", level: "verbose", err: true},
	}

	for _, tc := range cases {
		_, err := mfclog.New(&bytes.Buffer{}, tc.level)
		assert.Equal(t, tc.err, err != nil, fmt.Sprintf("%s: unexpected error %v", tc.desc, err))
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		desc    string
		level   string
		message string
		logged  bool
	}{
		{
			desc:    "info logged on info level",
			level:   "info",
			message: "info message",
			logged:  true,
		},
		{
			desc:    "info dropped on error level",
			level:   "error",
			message: "info message",
			logged:  false,
		},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		logger, err := mfclog.New(&buf, tc.level)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error creating logger: %v", tc.desc, err))

		logger.Info(tc.message)

		if !tc.logged {
			assert.Zero(t, buf.Len(), fmt.Sprintf("%s: expected no output, got %s", tc.desc, buf.String()))
			continue
		}

		var out logMsg
		err = json.Unmarshal(buf.Bytes(), &out)
		require.Nil(t, err, fmt.Sprintf("%s: failed to parse log output: %v", tc.desc, err))
		assert.Equal(t, "INFO", out.Level, fmt.Sprintf("%s: expected INFO level got %s", tc.desc, out.Level))
		assert.Equal(t, tc.message, out.Message, fmt.Sprintf("%s: expected message %s got %s", tc.desc, tc.message, out.Message))
	}
}
