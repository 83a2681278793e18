// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

// StoredReading is one persisted reading with its patient attribution.
type StoredReading struct {
	PatientID string
	Reading   vitals.CanonicalReading
}

var _ vitals.ReadingRepository = (*readingRepositoryMock)(nil)

type readingRepositoryMock struct {
	mu      sync.Mutex
	latest  map[string]StoredReading
	history []StoredReading
	alerts  []StoredReading

	failLatest  error
	failHistory error
}

// ReadingRepository is the in-memory reading store used in tests.
type ReadingRepository interface {
	vitals.ReadingRepository

	// Latest returns the latest-value slot for a patient and reading type.
	Latest(patientID string, rt vitals.ReadingType) (vitals.CanonicalReading, bool)

	// History returns all appended history entries.
	History() []StoredReading

	// Alerts returns all appended emergency alerts.
	Alerts() []StoredReading

	// FailWith makes subsequent latest/history writes return the given
	// errors; nil restores success.
	FailWith(latest, history error)
}

// NewReadingRepository creates in-memory reading store.
func NewReadingRepository() ReadingRepository {
	return &readingRepositoryMock{
		latest: make(map[string]StoredReading),
	}
}

func (rrm *readingRepositoryMock) FailWith(latest, history error) {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()
	rrm.failLatest = latest
	rrm.failHistory = history
}

func (rrm *readingRepositoryMock) UpsertLatest(_ context.Context, patientID string, r vitals.CanonicalReading) error {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	if rrm.failLatest != nil {
		return rrm.failLatest
	}
	rrm.latest[latestKey(patientID, r.Type)] = StoredReading{PatientID: patientID, Reading: r}

	return nil
}

func (rrm *readingRepositoryMock) AppendHistory(_ context.Context, patientID string, r vitals.CanonicalReading) error {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	if rrm.failHistory != nil {
		return rrm.failHistory
	}
	rrm.history = append(rrm.history, StoredReading{PatientID: patientID, Reading: r})

	return nil
}

func (rrm *readingRepositoryMock) AppendAlert(_ context.Context, patientID string, r vitals.CanonicalReading) error {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	rrm.alerts = append(rrm.alerts, StoredReading{PatientID: patientID, Reading: r})

	return nil
}

func (rrm *readingRepositoryMock) Latest(patientID string, rt vitals.ReadingType) (vitals.CanonicalReading, bool) {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	sr, ok := rrm.latest[latestKey(patientID, rt)]
	return sr.Reading, ok
}

func (rrm *readingRepositoryMock) History() []StoredReading {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	out := make([]StoredReading, len(rrm.history))
	copy(out, rrm.history)

	return out
}

func (rrm *readingRepositoryMock) Alerts() []StoredReading {
	rrm.mu.Lock()
	defer rrm.mu.Unlock()

	out := make([]StoredReading, len(rrm.alerts))
	copy(out, rrm.alerts)

	return out
}

func latestKey(patientID string, rt vitals.ReadingType) string {
	return fmt.Sprintf("%s:%s", patientID, rt)
}
