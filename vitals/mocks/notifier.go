// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

// Notification is one captured notifier call.
type Notification struct {
	Severity string
	Title    string
	Body     string
	Device   vitals.DeviceContext
}

var _ vitals.Notifier = (*notifierMock)(nil)

type notifierMock struct {
	mu    sync.Mutex
	calls []Notification
}

// Notifier is the capturing notification channel used in tests.
type Notifier interface {
	vitals.Notifier

	// Calls returns all captured notifications.
	Calls() []Notification
}

// NewNotifier creates capturing notifier mock.
func NewNotifier() Notifier {
	return &notifierMock{}
}

func (nm *notifierMock) Notify(_ context.Context, severity, title, body string, device vitals.DeviceContext) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nm.calls = append(nm.calls, Notification{
		Severity: severity,
		Title:    title,
		Body:     body,
		Device:   device,
	})

	return nil
}

func (nm *notifierMock) Calls() []Notification {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	out := make([]Notification, len(nm.calls))
	copy(out, nm.calls)

	return out
}
