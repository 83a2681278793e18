// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging"
)

var (
	// ErrUnknownTopic indicates a message on a topic no family publishes on.
	ErrUnknownTopic = errors.New("message received on unclassified topic")

	// ErrValidation indicates a message that failed its family schema.
	ErrValidation = errors.New("message failed family schema validation")

	// ErrStorage indicates a failed external store write.
	ErrStorage = errors.New("failed to persist reading")
)

// historyOnly lists reading types that have no meaningful "current" value
// and therefore never touch the latest-value slot.
var historyOnly = map[ReadingType]bool{
	ReadingLocation:  true,
	ReadingSleepData: true,
}

// Service specifies an API that must be fullfiled by the ingestion pipeline
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// Handle runs one raw bus message through decoding, schema validation,
	// patient resolution and persistence. Failures are reported to the
	// failure sink and returned; no failure halts the pipeline for other
	// messages.
	Handle(ctx context.Context, msg RawMessage) error
}

var _ Service = (*ingestService)(nil)

type ingestService struct {
	resolver     *Resolver
	readings     ReadingRepository
	status       StatusRepository
	publisher    messaging.Publisher
	notifier     Notifier
	failures     FailureSink
	storeTimeout time.Duration
	logger       *slog.Logger
}

// New instantiates the ingestion pipeline implementation.
func New(resolver *Resolver, readings ReadingRepository, status StatusRepository, publisher messaging.Publisher, notifier Notifier, failures FailureSink, storeTimeout time.Duration, logger *slog.Logger) Service {
	return &ingestService{
		resolver:     resolver,
		readings:     readings,
		status:       status,
		publisher:    publisher,
		notifier:     notifier,
		failures:     failures,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

func (svc *ingestService) Handle(ctx context.Context, msg RawMessage) error {
	family, ok := Classify(msg.Topic)
	if !ok {
		svc.failures.Record(FailureEvent{
			Kind:       KindValidationError,
			Stage:      StageValidate,
			Detail:     fmt.Sprintf("unclassified topic %s", msg.Topic),
			OccurredAt: msg.ReceivedAt,
		})
		return errors.Wrap(ErrUnknownTopic, errors.New(msg.Topic))
	}

	decoded, err := Decode(msg.Payload)
	if err != nil {
		svc.failures.Record(FailureEvent{
			Kind:       KindDecodeError,
			Stage:      StageDecode,
			Family:     family,
			Detail:     err.Error(),
			OccurredAt: msg.ReceivedAt,
		})
		return err
	}

	vo := Validate(family, msg.Topic, decoded.Document, msg.ReceivedAt)
	for _, w := range vo.Warnings {
		svc.logger.Warn("validation warning",
			slog.String("topic", msg.Topic),
			slog.String("family", family.String()),
			slog.String("device", vo.Identity.ID()),
			slog.String("warning", w),
		)
	}
	if !vo.Valid {
		detail := strings.Join(vo.Errors, "; ")
		svc.failures.Record(FailureEvent{
			Kind:       KindValidationError,
			Stage:      StageValidate,
			Family:     family,
			Device:     vo.Identity.ID(),
			Detail:     detail,
			OccurredAt: msg.ReceivedAt,
		})
		return errors.Wrap(ErrValidation, errors.New(detail))
	}

	if vo.Status != "" {
		svc.updateStatus(ctx, family, vo.Identity, vo.Status, msg.ReceivedAt)
	}
	if len(vo.Readings) == 0 {
		return nil
	}

	ref, err := svc.resolver.Resolve(ctx, vo.Identity, vo.Readings[0].Type)
	if err != nil {
		// Anything other than an exhausted chain is a store fault, e.g. a
		// failed placeholder write on the kiosk path.
		kind := KindStorageError
		if errors.Contains(err, ErrPatientNotFound) {
			kind = KindPatientNotFound
		}
		svc.failures.Record(FailureEvent{
			Kind:       kind,
			Stage:      StageResolve,
			Family:     family,
			Device:     vo.Identity.ID(),
			Detail:     err.Error(),
			OccurredAt: msg.ReceivedAt,
		})
		return err
	}

	for _, r := range vo.Readings {
		svc.store(ctx, ref, msg.Topic, r)
	}

	return nil
}

func (svc *ingestService) updateStatus(ctx context.Context, family Family, id DeviceIdentity, status string, at time.Time) {
	tctx, cancel := context.WithTimeout(ctx, svc.storeTimeout)
	defer cancel()

	if err := svc.status.UpdateStatus(tctx, family, id.ID(), status); err != nil {
		svc.failures.Record(FailureEvent{
			Kind:       KindStorageError,
			Stage:      StageStore,
			Family:     family,
			Device:     id.ID(),
			Detail:     fmt.Sprintf("status write: %s", err),
			OccurredAt: at,
		})
	}
}

// store persists one canonical reading. The latest-value and history writes
// are attempted independently: a failure in one does not block the other.
// There is no automatic retry; failed writes surface to the aggregator only.
func (svc *ingestService) store(ctx context.Context, ref PatientRef, topic string, r CanonicalReading) {
	if r.Type == ReadingEmergencyAlert {
		if err := svc.write(ctx, func(tctx context.Context) error {
			return svc.readings.AppendAlert(tctx, ref.ID, r)
		}); err != nil {
			svc.recordStorage(ref, r, "alert write", err)
		}
		svc.emergencyNotify(ctx, ref, topic, r)

		return
	}

	if !historyOnly[r.Type] {
		if err := svc.write(ctx, func(tctx context.Context) error {
			return svc.readings.UpsertLatest(tctx, ref.ID, r)
		}); err != nil {
			svc.recordStorage(ref, r, "latest-value write", err)
		}
	}

	if err := svc.write(ctx, func(tctx context.Context) error {
		return svc.readings.AppendHistory(tctx, ref.ID, r)
	}); err != nil {
		svc.recordStorage(ref, r, "history write", err)
		return
	}

	svc.publish(ctx, ref, r)
}

func (svc *ingestService) write(ctx context.Context, fn func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, svc.storeTimeout)
	defer cancel()

	return fn(tctx)
}

func (svc *ingestService) recordStorage(ref PatientRef, r CanonicalReading, write string, err error) {
	svc.failures.Record(FailureEvent{
		Kind:       KindStorageError,
		Stage:      StageStore,
		Family:     r.Family,
		Device:     r.DeviceID,
		Detail:     fmt.Sprintf("%s for patient %s: %s", write, ref.ID, err),
		OccurredAt: time.Now().UTC(),
	})
}

// emergencyNotify pages immediately on SOS and fall-detection readings,
// bypassing the aggregator's windowed threshold. Send failures are logged
// locally only.
func (svc *ingestService) emergencyNotify(ctx context.Context, ref PatientRef, topic string, r CanonicalReading) {
	status := asString(r.Fields["status"])
	title := fmt.Sprintf("Emergency alert: %s", status)
	body := fmt.Sprintf("Device %s (%s) reported %s for patient %s at %s",
		r.DeviceID, r.Family, status, ref.ID, r.CapturedAt.Format(time.RFC3339))

	device := DeviceContext{
		Family:    r.Family.String(),
		DeviceID:  r.DeviceID,
		PatientID: ref.ID,
		Topic:     topic,
	}
	if err := svc.notifier.Notify(ctx, "critical", title, body, device); err != nil {
		svc.logger.Warn("failed to send emergency notification",
			slog.String("device", r.DeviceID),
			slog.String("patient", ref.ID),
			slog.Any("error", err),
		)
	}
}

// publish republishes an accepted reading on the internal broker for
// downstream consumers. Publish failures never block persistence.
func (svc *ingestService) publish(ctx context.Context, ref PatientRef, r CanonicalReading) {
	payload, err := json.Marshal(map[string]any{
		"patient_id":  ref.ID,
		"type":        r.Type,
		"fields":      r.Fields,
		"family":      r.Family.String(),
		"device_id":   r.DeviceID,
		"captured_at": r.CapturedAt.Format(time.RFC3339),
	})
	if err != nil {
		svc.logger.Warn("failed to marshal reading event", slog.Any("error", err))
		return
	}

	msg := messaging.Message{
		Publisher: r.DeviceID,
		Protocol:  r.Family.String(),
		Payload:   payload,
		Created:   time.Now().UnixNano(),
	}
	topic := fmt.Sprintf("%s.%s", r.Family, r.Type)
	if err := svc.publisher.Publish(ctx, topic, &msg); err != nil {
		svc.logger.Warn("failed to publish reading event", slog.String("topic", topic), slog.Any("error", err))
	}
}
