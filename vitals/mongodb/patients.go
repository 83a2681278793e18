// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package mongodb contains the MongoDB implementations of the patient,
// device, facility and reading repositories.
package mongodb

import (
	"context"

	stardust "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const patientsCollection = "patients"

// deviceMACFields maps a reading type to the patient record field holding
// the registered peripheral MAC for that type.
var deviceMACFields = map[vitals.ReadingType]string{
	vitals.ReadingBloodPressure:   "blood_pressure_mac_address",
	vitals.ReadingBloodGlucose:    "blood_glucose_mac_address",
	vitals.ReadingSpO2:            "fingertip_pulse_oximeter_mac_address",
	vitals.ReadingBodyTemperature: "body_temperature_mac_address",
	vitals.ReadingWeight:          "weight_scale_mac_address",
	vitals.ReadingUricAcid:        "uric_mac_address",
	vitals.ReadingCholesterol:     "cholesterol_mac_address",
}

var errNoDeviceField = errors.New("reading type has no device mapping field")

type patientDoc struct {
	ID          string `bson:"id"`
	FirstName   string `bson:"first_name,omitempty"`
	LastName    string `bson:"last_name,omitempty"`
	Gender      string `bson:"gender,omitempty"`
	BirthDate   string `bson:"birth_date,omitempty"`
	IDCard      string `bson:"id_card,omitempty"`
	CitizenKey  string `bson:"citizen_key,omitempty"`
	Placeholder bool   `bson:"is_placeholder,omitempty"`
}

func (d patientDoc) ref() vitals.PatientRef {
	name := d.FirstName
	if d.LastName != "" {
		name = name + " " + d.LastName
	}

	return vitals.PatientRef{
		ID:          d.ID,
		DisplayName: name,
		Placeholder: d.Placeholder,
	}
}

var _ vitals.PatientRepository = (*patientRepository)(nil)

type patientRepository struct {
	db  *mongo.Database
	idp stardust.IDProvider
}

// NewPatientRepository instantiates a MongoDB implementation of the patient
// repository.
func NewPatientRepository(db *mongo.Database, idp stardust.IDProvider) vitals.PatientRepository {
	return &patientRepository{
		db:  db,
		idp: idp,
	}
}

func (pr *patientRepository) RetrieveByGatewayMAC(ctx context.Context, mac string) (vitals.PatientRef, error) {
	return pr.retrieveOne(ctx, bson.D{{Key: "ava_mac_address", Value: mac}})
}

func (pr *patientRepository) RetrieveBySubDeviceMAC(ctx context.Context, rt vitals.ReadingType, mac string) (vitals.PatientRef, error) {
	field, ok := deviceMACFields[rt]
	if !ok {
		return vitals.PatientRef{}, errNoDeviceField
	}

	return pr.retrieveOne(ctx, bson.D{{Key: field, Value: mac}})
}

func (pr *patientRepository) RetrieveByWatchIMEI(ctx context.Context, imei string) (vitals.PatientRef, error) {
	return pr.retrieveOne(ctx, bson.D{{Key: "watch_mac_address", Value: imei}})
}

// RetrieveByCitizenID matches against both legacy citizen id field names and
// the digits-only normalized key.
func (pr *patientRepository) RetrieveByCitizenID(ctx context.Context, citizenID string) (vitals.PatientRef, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "id_card", Value: citizenID}},
		bson.D{{Key: "citizen_id", Value: citizenID}},
		bson.D{{Key: "citizen_key", Value: vitals.NormalizeCitizenID(citizenID)}},
	}}}

	return pr.retrieveOne(ctx, filter)
}

// EnsurePlaceholder provisions a placeholder patient through a single
// atomic find-or-create. The upsert keyed on the unique citizen key makes
// concurrent first-sightings of the same citizen id yield one record.
func (pr *patientRepository) EnsurePlaceholder(ctx context.Context, citizenID string, d vitals.Demographics) (vitals.PatientRef, error) {
	id, err := pr.idp.ID()
	if err != nil {
		return vitals.PatientRef{}, err
	}

	coll := pr.db.Collection(patientsCollection)
	key := vitals.NormalizeCitizenID(citizenID)

	filter := bson.D{{Key: "citizen_key", Value: key}}
	update := bson.D{{Key: "$setOnInsert", Value: patientDoc{
		ID:          id,
		FirstName:   d.Name,
		Gender:      d.Gender,
		BirthDate:   d.BirthDate,
		IDCard:      citizenID,
		CitizenKey:  key,
		Placeholder: true,
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc patientDoc
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return vitals.PatientRef{}, errors.Wrap(errors.ErrCreateEntity, err)
	}

	return doc.ref(), nil
}

func (pr *patientRepository) retrieveOne(ctx context.Context, filter bson.D) (vitals.PatientRef, error) {
	coll := pr.db.Collection(patientsCollection)

	var doc patientDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return vitals.PatientRef{}, errors.ErrNotFound
		}
		return vitals.PatientRef{}, errors.Wrap(errors.ErrViewEntity, err)
	}

	return doc.ref(), nil
}
