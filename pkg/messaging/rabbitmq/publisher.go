// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package rabbitmq holds RabbitMQ message publisher implementation.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "stardust"
	prefix       = "vitals"
)

// ErrEmptyTopic indicates an attempt to publish on an empty topic.
var ErrEmptyTopic = errors.New("empty topic")

var _ messaging.Publisher = (*publisher)(nil)

type publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns RabbitMQ message Publisher.
func NewPublisher(url string) (messaging.Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, err
	}

	return &publisher{
		conn: conn,
		ch:   ch,
	}, nil
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

	return pub.ch.PublishWithContext(
		ctx,
		exchangeName,
		subject,
		false,
		false,
		amqp.Publishing{
			Headers:     amqp.Table{},
			ContentType: "application/json",
			AppId:       "stardust-publisher",
			Body:        data,
		})
}

func (pub *publisher) Close() error {
	if err := pub.ch.Close(); err != nil {
		return err
	}

	return pub.conn.Close()
}
