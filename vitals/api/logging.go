// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

var _ vitals.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    vitals.Service
}

// LoggingMiddleware adds logging facilities to the core service.
func LoggingMiddleware(svc vitals.Service, logger *slog.Logger) vitals.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Handle(ctx context.Context, msg vitals.RawMessage) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("message",
				slog.String("topic", msg.Topic),
				slog.Int("size", len(msg.Payload)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Handle message failed", args...)
			return
		}
		lm.logger.Info("Handle message completed successfully", args...)
	}(time.Now())

	return lm.svc.Handle(ctx, msg)
}
