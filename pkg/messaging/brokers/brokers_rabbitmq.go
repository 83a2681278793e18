// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

//go:build rabbitmq
// +build rabbitmq

package brokers

import (
	"log"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging/rabbitmq"
)

func init() {
	log.Println("The binary was build using RabbitMQ as the message broker")
}

func NewPublisher(url string) (messaging.Publisher, error) {
	pb, err := rabbitmq.NewPublisher(url)
	if err != nil {
		return nil, err
	}

	return pb, nil
}
