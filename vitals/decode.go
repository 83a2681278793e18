// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"encoding/hex"
	"encoding/json"
	"unicode/utf8"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
)

// ErrDecode indicates a payload that is neither valid JSON text nor
// recoverable through the hex fallback.
var ErrDecode = errors.New("failed to decode payload")

// Decode turns a raw payload into a structured document.
//
// Text payloads are parsed as JSON directly; a text payload that is not
// valid JSON is an error. Binary payloads fall back to the legacy hex path:
// the bytes are re-encoded as a lowercase hex string, then the hex string is
// decoded back to bytes and parsed as JSON, then the hex string itself is
// parsed as JSON. Some upstream devices send literal hex-encoded JSON rather
// than binary-then-hex-encoded JSON, so both attempts are kept in that
// order.
func Decode(payload []byte) (DecodedPayload, error) {
	dp := DecodedPayload{OriginalLength: len(payload)}

	if utf8.Valid(payload) {
		var doc any
		if err := json.Unmarshal(payload, &doc); err != nil {
			return DecodedPayload{}, errors.Wrap(ErrDecode, err)
		}
		dp.Document = doc

		return dp, nil
	}

	dp.BinaryFallback = true
	hexed := hex.EncodeToString(payload)

	if raw, err := hex.DecodeString(hexed); err == nil {
		var doc any
		if err := json.Unmarshal(raw, &doc); err == nil {
			dp.Document = doc
			return dp, nil
		}
	}

	var doc any
	if err := json.Unmarshal([]byte(hexed), &doc); err == nil {
		dp.Document = doc
		return dp, nil
	}

	return DecodedPayload{}, errors.Wrap(ErrDecode, errors.New("payload is not recoverable as a structured document"))
}
