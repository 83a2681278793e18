// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package mocks contains in-memory implementations of the pipeline's
// external collaborators.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

var _ vitals.PatientRepository = (*patientRepositoryMock)(nil)

type patientRepositoryMock struct {
	mu           sync.Mutex
	byGateway    map[string]vitals.PatientRef
	bySubDevice  map[string]vitals.PatientRef
	byIMEI       map[string]vitals.PatientRef
	byCitizen    map[string]vitals.PatientRef
	placeholders int
	placeholdErr error
}

// PatientRepository is the in-memory patient store used in tests.
type PatientRepository interface {
	vitals.PatientRepository

	// RegisterGateway maps a gateway MAC to a patient.
	RegisterGateway(mac string, ref vitals.PatientRef)

	// RegisterSubDevice maps a peripheral MAC to a patient for one reading type.
	RegisterSubDevice(rt vitals.ReadingType, mac string, ref vitals.PatientRef)

	// RegisterIMEI maps a watch IMEI to a patient.
	RegisterIMEI(imei string, ref vitals.PatientRef)

	// RegisterCitizen maps a citizen id to a patient.
	RegisterCitizen(citizenID string, ref vitals.PatientRef)

	// Placeholders returns how many placeholder patients were provisioned.
	Placeholders() int

	// FailPlaceholder makes subsequent placeholder writes return the given
	// error. Pass nil to restore normal behavior.
	FailPlaceholder(err error)
}

// NewPatientRepository creates in-memory patient repository.
func NewPatientRepository() PatientRepository {
	return &patientRepositoryMock{
		byGateway:   make(map[string]vitals.PatientRef),
		bySubDevice: make(map[string]vitals.PatientRef),
		byIMEI:      make(map[string]vitals.PatientRef),
		byCitizen:   make(map[string]vitals.PatientRef),
	}
}

func (prm *patientRepositoryMock) RegisterGateway(mac string, ref vitals.PatientRef) {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	prm.byGateway[mac] = ref
}

func (prm *patientRepositoryMock) RegisterSubDevice(rt vitals.ReadingType, mac string, ref vitals.PatientRef) {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	prm.bySubDevice[subDeviceKey(rt, mac)] = ref
}

func (prm *patientRepositoryMock) RegisterIMEI(imei string, ref vitals.PatientRef) {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	prm.byIMEI[imei] = ref
}

func (prm *patientRepositoryMock) RegisterCitizen(citizenID string, ref vitals.PatientRef) {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	prm.byCitizen[vitals.NormalizeCitizenID(citizenID)] = ref
}

func (prm *patientRepositoryMock) Placeholders() int {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	return prm.placeholders
}

func (prm *patientRepositoryMock) RetrieveByGatewayMAC(_ context.Context, mac string) (vitals.PatientRef, error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()

	ref, ok := prm.byGateway[mac]
	if !ok {
		return vitals.PatientRef{}, errors.ErrNotFound
	}

	return ref, nil
}

func (prm *patientRepositoryMock) RetrieveBySubDeviceMAC(_ context.Context, rt vitals.ReadingType, mac string) (vitals.PatientRef, error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()

	ref, ok := prm.bySubDevice[subDeviceKey(rt, mac)]
	if !ok {
		return vitals.PatientRef{}, errors.ErrNotFound
	}

	return ref, nil
}

func (prm *patientRepositoryMock) RetrieveByWatchIMEI(_ context.Context, imei string) (vitals.PatientRef, error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()

	ref, ok := prm.byIMEI[imei]
	if !ok {
		return vitals.PatientRef{}, errors.ErrNotFound
	}

	return ref, nil
}

func (prm *patientRepositoryMock) RetrieveByCitizenID(_ context.Context, citizenID string) (vitals.PatientRef, error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()

	ref, ok := prm.byCitizen[vitals.NormalizeCitizenID(citizenID)]
	if !ok {
		return vitals.PatientRef{}, errors.ErrNotFound
	}

	return ref, nil
}

func (prm *patientRepositoryMock) FailPlaceholder(err error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()
	prm.placeholdErr = err
}

func (prm *patientRepositoryMock) EnsurePlaceholder(_ context.Context, citizenID string, d vitals.Demographics) (vitals.PatientRef, error) {
	prm.mu.Lock()
	defer prm.mu.Unlock()

	if prm.placeholdErr != nil {
		return vitals.PatientRef{}, prm.placeholdErr
	}

	key := vitals.NormalizeCitizenID(citizenID)
	if ref, ok := prm.byCitizen[key]; ok {
		return ref, nil
	}

	prm.placeholders++
	ref := vitals.PatientRef{
		ID:          fmt.Sprintf("placeholder-%06d", prm.placeholders),
		DisplayName: d.Name,
		Placeholder: true,
	}
	prm.byCitizen[key] = ref

	return ref, nil
}

func subDeviceKey(rt vitals.ReadingType, mac string) string {
	return fmt.Sprintf("%s:%s", rt, mac)
}
