// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging"
)

// Published is one captured broker publish.
type Published struct {
	Topic   string
	Message messaging.Message
}

var _ messaging.Publisher = (*publisherMock)(nil)

type publisherMock struct {
	mu    sync.Mutex
	calls []Published
}

// Publisher is the capturing broker publisher used in tests.
type Publisher interface {
	messaging.Publisher

	// Calls returns all captured publishes.
	Calls() []Published
}

// NewPublisher creates capturing publisher mock.
func NewPublisher() Publisher {
	return &publisherMock{}
}

func (pm *publisherMock) Publish(_ context.Context, topic string, msg *messaging.Message) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.calls = append(pm.calls, Published{Topic: topic, Message: *msg})
	return nil
}

func (pm *publisherMock) Close() error {
	return nil
}

func (pm *publisherMock) Calls() []Published {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	out := make([]Published, len(pm.calls))
	copy(out, pm.calls)

	return out
}
