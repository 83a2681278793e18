// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	devicesCollection = "amy_devices"
	watchesCollection = "watches"
)

type deviceDoc struct {
	MAC        string `bson:"mac"`
	PatientID  string `bson:"patient_id"`
	DeviceType string `bson:"device_type,omitempty"`
}

type watchDoc struct {
	IMEI      string `bson:"imei"`
	PatientID string `bson:"patient_id"`
	Status    string `bson:"status,omitempty"`
}

var _ vitals.DeviceRepository = (*deviceRepository)(nil)

type deviceRepository struct {
	db *mongo.Database
}

// NewDeviceRepository instantiates a MongoDB implementation of the device
// registry.
func NewDeviceRepository(db *mongo.Database) vitals.DeviceRepository {
	return &deviceRepository{db: db}
}

func (dr *deviceRepository) RetrieveAssignment(ctx context.Context, mac string) (vitals.DeviceAssignment, error) {
	coll := dr.db.Collection(devicesCollection)

	var doc deviceDoc
	filter := bson.D{{Key: "mac", Value: mac}}
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return vitals.DeviceAssignment{}, errors.ErrNotFound
		}
		return vitals.DeviceAssignment{}, errors.Wrap(errors.ErrViewEntity, err)
	}
	if doc.PatientID == "" {
		return vitals.DeviceAssignment{}, errors.ErrNotFound
	}

	return vitals.DeviceAssignment{
		MAC:        doc.MAC,
		PatientID:  doc.PatientID,
		DeviceType: doc.DeviceType,
	}, nil
}

func (dr *deviceRepository) RetrieveWatch(ctx context.Context, imei string) (vitals.WatchAssignment, error) {
	coll := dr.db.Collection(watchesCollection)

	var doc watchDoc
	filter := bson.D{{Key: "imei", Value: imei}}
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return vitals.WatchAssignment{}, errors.ErrNotFound
		}
		return vitals.WatchAssignment{}, errors.Wrap(errors.ErrViewEntity, err)
	}
	if doc.PatientID == "" {
		return vitals.WatchAssignment{}, errors.ErrNotFound
	}

	return vitals.WatchAssignment{
		IMEI:      doc.IMEI,
		PatientID: doc.PatientID,
		Status:    doc.Status,
	}, nil
}
