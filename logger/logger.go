// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package logger provides a JSON-formatted structured logger used by all
// ingestion services.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to w with the given level.
// Level is parsed case-insensitively: debug, info, warn, error.
func New(w io.Writer, levelText string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return &slog.Logger{}, err
	}

	logHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(logHandler), nil
}

// ExitWithError exits the program with an error code after running deferred
// functions. Meant to be used with defer right after logger creation so that
// cleanup registered later still runs before the process terminates.
func ExitWithError(exitCode *int) {
	os.Exit(*exitCode)
}
