// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package nats holds NATS message publisher implementation.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging"
	broker "github.com/nats-io/nats.go"
)

// A maximum number of reconnect attempts before NATS connection closes permanently.
// Value -1 represents an unlimited number of reconnect retries, i.e. the client
// will never give up on retrying to re-establish connection to NATS server.
const maxReconnects = -1

// prefix is the subject prefix under which all reading events are published.
const prefix = "vitals"

// ErrEmptyTopic indicates an attempt to publish on an empty topic.
var ErrEmptyTopic = errors.New("empty topic")

var _ messaging.Publisher = (*publisher)(nil)

type publisher struct {
	conn *broker.Conn
}

// NewPublisher returns NATS message Publisher.
func NewPublisher(url string) (messaging.Publisher, error) {
	conn, err := broker.Connect(url, broker.MaxReconnects(maxReconnects))
	if err != nil {
		return nil, err
	}

	return &publisher{conn: conn}, nil
}

func (pub *publisher) Publish(ctx context.Context, topic string, msg *messaging.Message) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s.%s", prefix, topic)

	return pub.conn.Publish(subject, data)
}

func (pub *publisher) Close() error {
	pub.conn.Close()
	return nil
}
