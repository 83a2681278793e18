// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

var _ vitals.StatusRepository = (*statusRepositoryMock)(nil)

type statusRepositoryMock struct {
	mu       sync.Mutex
	statuses map[string]string
}

// StatusRepository is the in-memory device status store used in tests.
type StatusRepository interface {
	vitals.StatusRepository

	// Status returns the recorded status of a device.
	Status(family vitals.Family, deviceID string) (string, bool)
}

// NewStatusRepository creates in-memory device status store.
func NewStatusRepository() StatusRepository {
	return &statusRepositoryMock{
		statuses: make(map[string]string),
	}
}

func (srm *statusRepositoryMock) UpdateStatus(_ context.Context, family vitals.Family, deviceID, status string) error {
	srm.mu.Lock()
	defer srm.mu.Unlock()

	srm.statuses[statusKey(family, deviceID)] = status
	return nil
}

func (srm *statusRepositoryMock) Status(family vitals.Family, deviceID string) (string, bool) {
	srm.mu.Lock()
	defer srm.mu.Unlock()

	s, ok := srm.statuses[statusKey(family, deviceID)]
	return s, ok
}

func statusKey(family vitals.Family, deviceID string) string {
	return fmt.Sprintf("%s:%s", family, deviceID)
}
