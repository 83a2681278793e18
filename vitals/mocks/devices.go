// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

var _ vitals.DeviceRepository = (*deviceRepositoryMock)(nil)

type deviceRepositoryMock struct {
	mu          sync.Mutex
	assignments map[string]vitals.DeviceAssignment
	watches     map[string]vitals.WatchAssignment
}

// DeviceRepository is the in-memory device registry used in tests.
type DeviceRepository interface {
	vitals.DeviceRepository

	// AddAssignment registers a sub-device assignment.
	AddAssignment(a vitals.DeviceAssignment)

	// AddWatch registers a watch record.
	AddWatch(w vitals.WatchAssignment)
}

// NewDeviceRepository creates in-memory device registry.
func NewDeviceRepository() DeviceRepository {
	return &deviceRepositoryMock{
		assignments: make(map[string]vitals.DeviceAssignment),
		watches:     make(map[string]vitals.WatchAssignment),
	}
}

func (drm *deviceRepositoryMock) AddAssignment(a vitals.DeviceAssignment) {
	drm.mu.Lock()
	defer drm.mu.Unlock()
	drm.assignments[a.MAC] = a
}

func (drm *deviceRepositoryMock) AddWatch(w vitals.WatchAssignment) {
	drm.mu.Lock()
	defer drm.mu.Unlock()
	drm.watches[w.IMEI] = w
}

func (drm *deviceRepositoryMock) RetrieveAssignment(_ context.Context, mac string) (vitals.DeviceAssignment, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	a, ok := drm.assignments[mac]
	if !ok {
		return vitals.DeviceAssignment{}, errors.ErrNotFound
	}

	return a, nil
}

func (drm *deviceRepositoryMock) RetrieveWatch(_ context.Context, imei string) (vitals.WatchAssignment, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	w, ok := drm.watches[imei]
	if !ok {
		return vitals.WatchAssignment{}, errors.ErrNotFound
	}

	return w, nil
}

var _ vitals.HospitalRepository = (*hospitalRepositoryMock)(nil)

type hospitalRepositoryMock struct {
	mu     sync.Mutex
	kiosks map[string]vitals.Hospital
}

// HospitalRepository is the in-memory facility registry used in tests.
type HospitalRepository interface {
	vitals.HospitalRepository

	// AddKiosk maps a kiosk MAC to a facility.
	AddKiosk(mac string, h vitals.Hospital)
}

// NewHospitalRepository creates in-memory facility registry.
func NewHospitalRepository() HospitalRepository {
	return &hospitalRepositoryMock{
		kiosks: make(map[string]vitals.Hospital),
	}
}

func (hrm *hospitalRepositoryMock) AddKiosk(mac string, h vitals.Hospital) {
	hrm.mu.Lock()
	defer hrm.mu.Unlock()
	hrm.kiosks[mac] = h
}

func (hrm *hospitalRepositoryMock) RetrieveByKioskMAC(_ context.Context, mac string) (vitals.Hospital, error) {
	hrm.mu.Lock()
	defer hrm.mu.Unlock()

	h, ok := hrm.kiosks[mac]
	if !ok {
		return vitals.Hospital{}, errors.ErrNotFound
	}

	return h, nil
}
