// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/logger"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkMock struct {
	mu     sync.Mutex
	events []vitals.FailureEvent
}

func (s *sinkMock) Record(event vitals.FailureEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *sinkMock) Events() []vitals.FailureEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]vitals.FailureEvent, len(s.events))
	copy(out, s.events)

	return out
}

type serviceFixture struct {
	resolverFixture
	readings  mocks.ReadingRepository
	status    mocks.StatusRepository
	publisher mocks.Publisher
	notifier  mocks.Notifier
	failures  *sinkMock
	svc       vitals.Service
}

func newServiceFixture() serviceFixture {
	f := serviceFixture{
		resolverFixture: newResolverFixture(),
		readings:        mocks.NewReadingRepository(),
		status:          mocks.NewStatusRepository(),
		publisher:       mocks.NewPublisher(),
		notifier:        mocks.NewNotifier(),
		failures:        &sinkMock{},
	}
	f.svc = vitals.New(f.resolver, f.readings, f.status, f.publisher, f.notifier, f.failures, time.Second, logger.NewMock())

	return f
}

func rawMessage(topic, payload string) vitals.RawMessage {
	return vitals.RawMessage{
		Topic:      topic,
		Payload:    []byte(payload),
		ReceivedAt: receivedAt,
	}
}

func TestHandleBloodPressureEndToEnd(t *testing.T) {
	f := newServiceFixture()
	f.patients.RegisterGateway(gatewayMAC, vitals.PatientRef{ID: "patient-1"})

	payload := fmt.Sprintf(`{
		"mac": %q,
		"type": "reportAttribute",
		"data": {
			"attribute": "BP_BIOLIGTH",
			"value": {
				"device_list": [{"ble_addr": %q, "bp_high": 137, "bp_low": 95, "PR": 74}]
			}
		}
	}`, gatewayMAC, subMAC)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicAVA4Reading, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	latest, ok := f.readings.Latest("patient-1", vitals.ReadingBloodPressure)
	require.True(t, ok, "expected a latest-value slot")
	assert.Equal(t, float64(137), latest.Fields["systolic"])
	assert.Equal(t, float64(95), latest.Fields["diastolic"])

	history := f.readings.History()
	require.Len(t, history, 1, "expected one history entry")
	assert.Equal(t, "patient-1", history[0].PatientID)
	assert.Equal(t, vitals.ReadingBloodPressure, history[0].Reading.Type)

	published := f.publisher.Calls()
	require.Len(t, published, 1, "expected one downstream event")
	assert.Equal(t, "ava4.blood_pressure", published[0].Topic)

	assert.Empty(t, f.failures.Events(), "no failures expected")
}

func TestHandleKioskPlaceholderEndToEnd(t *testing.T) {
	f := newServiceFixture()

	payload := fmt.Sprintf(`{
		"mac": %q,
		"type": "reportAttribute",
		"data": {
			"citiz": "9-9999-99999-99-9",
			"nameTH": "สมหญิง รักดี",
			"attribute": "WBP_JUMPER",
			"value": {"bp_high": 124, "bp_low": 81, "pr": 66}
		}
	}`, kioskMAC)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicQube, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	assert.Equal(t, 1, f.patients.Placeholders(), "expected one provisioned placeholder")
	require.Len(t, f.readings.History(), 1, "expected one history entry")

	pid := f.readings.History()[0].PatientID
	_, ok := f.readings.Latest(pid, vitals.ReadingBloodPressure)
	assert.True(t, ok, "expected a latest-value slot for the placeholder")
}

func TestHandlePlaceholderWriteFailureIsStorageError(t *testing.T) {
	f := newServiceFixture()
	f.patients.FailPlaceholder(errors.New("connection reset"))

	payload := fmt.Sprintf(`{
		"mac": %q,
		"type": "reportAttribute",
		"data": {
			"citiz": "9-9999-99999-99-9",
			"attribute": "WBP_JUMPER",
			"value": {"bp_high": 124, "bp_low": 81, "pr": 66}
		}
	}`, kioskMAC)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicQube, payload))
	require.NotNil(t, err, "expected the placeholder write failure to surface")

	assert.Empty(t, f.readings.History(), "unresolved messages must not persist")
	assert.Empty(t, f.publisher.Calls(), "unresolved messages must not publish")

	events := f.failures.Events()
	require.Len(t, events, 1)
	assert.Equal(t, vitals.KindStorageError, events[0].Kind, "a failed placeholder write is a store fault, not a missing patient")
	assert.Equal(t, vitals.StageResolve, events[0].Stage)
}

func TestHandleUnmappedWatchSOS(t *testing.T) {
	f := newServiceFixture()

	payload := fmt.Sprintf(`{"IMEI": %q, "status": "SOS", "location": {"GPS": {"latitude": 13.75, "longitude": 100.5}}}`, watchIMEI)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicKatiSOS, payload))
	assert.True(t, errors.Contains(err, vitals.ErrPatientNotFound), fmt.Sprintf("expected %s got %s", vitals.ErrPatientNotFound, err))

	assert.Empty(t, f.readings.History(), "unresolved messages must not persist")
	assert.Empty(t, f.readings.Alerts(), "unresolved messages must not persist")
	assert.Empty(t, f.publisher.Calls(), "unresolved messages must not publish")

	events := f.failures.Events()
	require.Len(t, events, 1)
	assert.Equal(t, vitals.KindPatientNotFound, events[0].Kind)
	assert.Equal(t, vitals.StageResolve, events[0].Stage)
	assert.Equal(t, watchIMEI, events[0].Device)
}

func TestHandleMappedWatchSOS(t *testing.T) {
	f := newServiceFixture()
	f.devices.AddWatch(vitals.WatchAssignment{IMEI: watchIMEI, PatientID: "patient-7"})

	payload := fmt.Sprintf(`{"IMEI": %q, "status": "SOS", "location": {"GPS": {"latitude": 13.75, "longitude": 100.5}}}`, watchIMEI)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicKatiSOS, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	alerts := f.readings.Alerts()
	require.Len(t, alerts, 1, "expected one emergency alert entry")
	assert.Equal(t, "patient-7", alerts[0].PatientID)
	assert.Empty(t, f.readings.History(), "alerts never land in history")
	_, ok := f.readings.Latest("patient-7", vitals.ReadingEmergencyAlert)
	assert.False(t, ok, "alerts never touch the latest-value slot")

	calls := f.notifier.Calls()
	require.Len(t, calls, 1, "expected an immediate page")
	assert.Equal(t, "critical", calls[0].Severity)
	assert.Equal(t, "patient-7", calls[0].Device.PatientID)
}

func TestHandleLocationIsHistoryOnly(t *testing.T) {
	f := newServiceFixture()
	f.devices.AddWatch(vitals.WatchAssignment{IMEI: watchIMEI, PatientID: "patient-8"})

	payload := fmt.Sprintf(`{"IMEI": %q, "location": {"GPS": {"latitude": 13.75, "longitude": 100.5}}}`, watchIMEI)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicKatiLocation, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	require.Len(t, f.readings.History(), 1, "expected one history entry")
	_, ok := f.readings.Latest("patient-8", vitals.ReadingLocation)
	assert.False(t, ok, "location has no current value")
}

func TestHandleHeartbeat(t *testing.T) {
	f := newServiceFixture()

	payload := fmt.Sprintf(`{"mac": %q, "type": "HB_Msg", "data": {"msg": "Online"}}`, gatewayMAC)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicAVA4Heartbeat, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	status, ok := f.status.Status(vitals.FamilyAVA4, gatewayMAC)
	require.True(t, ok, "expected a recorded device status")
	assert.Equal(t, "Online", status)
	assert.Empty(t, f.readings.History(), "heartbeats carry no readings")
	assert.Empty(t, f.failures.Events(), "heartbeats need no patient resolution")
}

func TestHandleFailures(t *testing.T) {
	cases := []struct {
		desc  string
		topic string
		raw   []byte
		err   error
		kind  vitals.FailureKind
		stage vitals.Stage
	}{
		{
			desc:  "unclassified topic",
			topic: "ESP32_BLE_GW_RX",
			raw:   []byte(`{}`),
			err:   vitals.ErrUnknownTopic,
			kind:  vitals.KindValidationError,
			stage: vitals.StageValidate,
		},
		{
			desc:  "undecodable payload",
			topic: vitals.TopicAVA4Reading,
			raw:   []byte{0xff, 0xfe, 0xfd},
			err:   vitals.ErrDecode,
			kind:  vitals.KindDecodeError,
			stage: vitals.StageDecode,
		},
		{
			desc:  "schema violation",
			topic: vitals.TopicAVA4Reading,
			raw:   []byte(`{"type": "reportAttribute"}`),
			err:   vitals.ErrValidation,
			kind:  vitals.KindValidationError,
			stage: vitals.StageValidate,
		},
	}

	for _, tc := range cases {
		f := newServiceFixture()

		err := f.svc.Handle(context.Background(), vitals.RawMessage{Topic: tc.topic, Payload: tc.raw, ReceivedAt: receivedAt})
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.err, err))

		events := f.failures.Events()
		require.Len(t, events, 1, fmt.Sprintf("%s: expected one failure event\n", tc.desc))
		assert.Equal(t, tc.kind, events[0].Kind, fmt.Sprintf("%s: unexpected failure kind\n", tc.desc))
		assert.Equal(t, tc.stage, events[0].Stage, fmt.Sprintf("%s: unexpected failure stage\n", tc.desc))
		assert.Empty(t, f.readings.History(), fmt.Sprintf("%s: rejected messages must not persist\n", tc.desc))
	}
}

func TestHandleStorageFailureIsIndependent(t *testing.T) {
	f := newServiceFixture()
	f.patients.RegisterGateway(gatewayMAC, vitals.PatientRef{ID: "patient-1"})
	f.readings.FailWith(errors.New("latest write refused"), nil)

	payload := fmt.Sprintf(`{
		"mac": %q,
		"type": "reportAttribute",
		"data": {
			"attribute": "BodyScale_JUMPER",
			"value": {"weight": 71.4}
		}
	}`, gatewayMAC)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicAVA4Reading, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	assert.Len(t, f.readings.History(), 1, "history write must proceed past a failed latest write")
	assert.Len(t, f.publisher.Calls(), 1, "downstream event follows the history write")

	events := f.failures.Events()
	require.Len(t, events, 1)
	assert.Equal(t, vitals.KindStorageError, events[0].Kind)
	assert.Equal(t, vitals.StageStore, events[0].Stage)
}

func TestHandleBatchPersistsAllReadings(t *testing.T) {
	f := newServiceFixture()
	f.devices.AddWatch(vitals.WatchAssignment{IMEI: watchIMEI, PatientID: "patient-9"})

	payload := fmt.Sprintf(`{
		"IMEI": %q,
		"data": [
			{"heartRate": 66, "spO2": 97, "timestamp": 1755855000},
			{"heartRate": 71, "timestamp": 1755855600}
		]
	}`, watchIMEI)

	err := f.svc.Handle(context.Background(), rawMessage(vitals.TopicKatiBatch, payload))
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))

	assert.Len(t, f.readings.History(), 3, "expected every batched vital persisted")

	latest, ok := f.readings.Latest("patient-9", vitals.ReadingHeartRate)
	require.True(t, ok)
	assert.Equal(t, float64(71), latest.Fields["heart_rate"], "last batched value wins the latest slot")
}
