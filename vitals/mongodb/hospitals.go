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

// Kiosk boxes carry the owning facility reference.
const kiosksCollection = "mfc_hv01_boxes"

type kioskDoc struct {
	MAC          string `bson:"mac"`
	HospitalID   string `bson:"hospital_id"`
	HospitalName string `bson:"hospital_name,omitempty"`
}

var _ vitals.HospitalRepository = (*hospitalRepository)(nil)

type hospitalRepository struct {
	db *mongo.Database
}

// NewHospitalRepository instantiates a MongoDB implementation of the
// facility registry.
func NewHospitalRepository(db *mongo.Database) vitals.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (hr *hospitalRepository) RetrieveByKioskMAC(ctx context.Context, mac string) (vitals.Hospital, error) {
	coll := hr.db.Collection(kiosksCollection)

	var doc kioskDoc
	filter := bson.D{{Key: "mac", Value: mac}}
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return vitals.Hospital{}, errors.ErrNotFound
		}
		return vitals.Hospital{}, errors.Wrap(errors.ErrViewEntity, err)
	}

	return vitals.Hospital{
		ID:   doc.HospitalID,
		Name: doc.HospitalName,
	}, nil
}
