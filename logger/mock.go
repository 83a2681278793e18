// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"log/slog"
)

// NewMock returns a logger that discards all records.
func NewMock() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
