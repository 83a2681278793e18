// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package messaging provides the internal message broker abstraction used to
// fan accepted readings out to downstream consumers.
package messaging

import "context"

// Message represents a canonical reading event published on the internal
// broker after persistence.
type Message struct {
	// Publisher is the identifier of the device the reading originates from.
	Publisher string `json:"publisher"`

	// Protocol is the device family that produced the reading.
	Protocol string `json:"protocol"`

	// Payload carries the canonical reading encoded as JSON.
	Payload []byte `json:"payload"`

	// Created is the publish time in nanoseconds since Unix epoch.
	Created int64 `json:"created"`
}

// Publisher specifies message publishing API.
type Publisher interface {
	// Publishes message to the stream.
	Publish(ctx context.Context, topic string, msg *Message) error

	// Close gracefully closes message publisher's connection.
	Close() error
}
