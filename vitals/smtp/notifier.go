// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package smtp implements the alert notification channel over e-mail.
package smtp

import (
	"context"
	"fmt"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/email"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

const footer = "Sent by Stardust vitals ingestion"

var _ vitals.Notifier = (*notifier)(nil)

type notifier struct {
	agent *email.Agent
	to    []string
}

// New instantiates SMTP alert notifier sending to the configured operator
// addresses.
func New(agent *email.Agent, to []string) vitals.Notifier {
	return &notifier{
		agent: agent,
		to:    to,
	}
}

func (n *notifier) Notify(_ context.Context, severity, title, body string, device vitals.DeviceContext) error {
	subject := fmt.Sprintf("[%s] %s", severity, title)

	content := body
	if device.DeviceID != "" {
		content = fmt.Sprintf("%s\n\nDevice: %s (%s)", content, device.DeviceID, device.Family)
	}
	if device.PatientID != "" {
		content = fmt.Sprintf("%s\nPatient: %s", content, device.PatientID)
	}
	if device.Topic != "" {
		content = fmt.Sprintf("%s\nTopic: %s", content, device.Topic)
	}

	return n.agent.Send(n.to, "", subject, "", "", content, footer)
}
