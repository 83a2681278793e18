// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/logger"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aggregatorConfig = vitals.AggregatorConfig{
	Window:    5 * time.Minute,
	Threshold: 10,
	Cooldown:  15 * time.Minute,
}

func failureAt(at time.Time) vitals.FailureEvent {
	return vitals.FailureEvent{
		Kind:       vitals.KindPatientNotFound,
		Stage:      vitals.StageResolve,
		Family:     vitals.FamilyKati,
		Device:     watchIMEI,
		Detail:     "no patient registered for device identity",
		OccurredAt: at,
	}
}

func TestAggregatorBelowThreshold(t *testing.T) {
	notifier := mocks.NewNotifier()
	agg := vitals.NewAggregator(aggregatorConfig, notifier, logger.NewMock())

	at := time.Now().UTC()
	for i := 0; i < aggregatorConfig.Threshold-1; i++ {
		agg.Record(failureAt(at.Add(time.Duration(i) * time.Second)))
	}

	assert.Empty(t, notifier.Calls(), "no alert expected below the threshold")
}

func TestAggregatorBurstAlertsOnce(t *testing.T) {
	notifier := mocks.NewNotifier()
	agg := vitals.NewAggregator(aggregatorConfig, notifier, logger.NewMock())

	// A burst of ten times the threshold within one window pages exactly
	// once: the first crossing alerts, the rest land in the cooldown.
	at := time.Now().UTC()
	for i := 0; i < aggregatorConfig.Threshold*10; i++ {
		agg.Record(failureAt(at.Add(time.Duration(i) * time.Millisecond)))
	}

	calls := notifier.Calls()
	require.Len(t, calls, 1, "expected exactly one aggregated alert")
	assert.Equal(t, "warning", calls[0].Severity)
	assert.Contains(t, calls[0].Title, "patient_not_found")
	assert.True(t, strings.Contains(calls[0].Body, fmt.Sprintf("%d patient_not_found failures", aggregatorConfig.Threshold)),
		fmt.Sprintf("unexpected alert body: %s", calls[0].Body))
}

func TestAggregatorCooldownExpiry(t *testing.T) {
	notifier := mocks.NewNotifier()
	agg := vitals.NewAggregator(aggregatorConfig, notifier, logger.NewMock())

	at := time.Now().UTC()
	for i := 0; i < aggregatorConfig.Threshold; i++ {
		agg.Record(failureAt(at))
	}
	require.Len(t, notifier.Calls(), 1)

	// A second burst after the cooldown pages again. Events land inside a
	// fresh window so the count crosses the threshold once more.
	later := at.Add(aggregatorConfig.Cooldown + time.Minute)
	for i := 0; i < aggregatorConfig.Threshold; i++ {
		agg.Record(failureAt(later))
	}

	assert.Len(t, notifier.Calls(), 2, "expected a second alert after the cooldown")
}

func TestAggregatorWindowReset(t *testing.T) {
	notifier := mocks.NewNotifier()
	agg := vitals.NewAggregator(aggregatorConfig, notifier, logger.NewMock())

	// Failures trickling in slower than the window never accumulate enough
	// to page.
	at := time.Now().UTC()
	for i := 0; i < aggregatorConfig.Threshold*2; i++ {
		agg.Record(failureAt(at.Add(time.Duration(i) * (aggregatorConfig.Window + time.Second))))
	}

	assert.Empty(t, notifier.Calls(), "spread-out failures must not alert")
}

func TestAggregatorKindsCountedSeparately(t *testing.T) {
	notifier := mocks.NewNotifier()
	agg := vitals.NewAggregator(aggregatorConfig, notifier, logger.NewMock())

	at := time.Now().UTC()
	for i := 0; i < aggregatorConfig.Threshold-1; i++ {
		agg.Record(failureAt(at))
		agg.Record(vitals.FailureEvent{
			Kind:       vitals.KindStorageError,
			Stage:      vitals.StageStore,
			Family:     vitals.FamilyAVA4,
			OccurredAt: at,
		})
	}
	assert.Empty(t, notifier.Calls(), "kinds must not share one counter")

	agg.Record(vitals.FailureEvent{
		Kind:       vitals.KindStorageError,
		Stage:      vitals.StageStore,
		Family:     vitals.FamilyAVA4,
		OccurredAt: at,
	})

	calls := notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "critical", calls[0].Severity, "storage failures page at high severity")
	assert.Contains(t, calls[0].Title, "storage_error")
}
