// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	latestCollection = "patient_vitals_latest"
	alertsCollection = "emergency_alarms"
)

// historyCollections maps each reading type to its append-only history
// collection. The mapping is static and covers every canonical reading
// type. Collection names keep their legacy spellings.
var historyCollections = map[vitals.ReadingType]string{
	vitals.ReadingBloodPressure:   "blood_pressure_histories",
	vitals.ReadingBloodGlucose:    "blood_sugar_histories",
	vitals.ReadingSpO2:            "spo2_histories",
	vitals.ReadingBodyTemperature: "temprature_data_histories",
	vitals.ReadingWeight:          "body_data_histories",
	vitals.ReadingHeartRate:       "heart_rate_histories",
	vitals.ReadingStepCount:       "step_histories",
	vitals.ReadingUricAcid:        "uric_acid_histories",
	vitals.ReadingCholesterol:     "cholesterol_histories",
	vitals.ReadingLocation:        "location_histories",
	vitals.ReadingSleepData:       "sleep_data_histories",
	vitals.ReadingEmergencyAlert:  alertsCollection,
}

var (
	errSaveReading        = errors.New("failed to save reading to mongodb database")
	errUnknownReadingType = errors.New("no history collection for reading type")
)

type historyDoc struct {
	PatientID  string         `bson:"patient_id"`
	Type       string         `bson:"type"`
	Data       map[string]any `bson:"data"`
	Source     string         `bson:"source"`
	DeviceID   string         `bson:"device_id"`
	CapturedAt time.Time      `bson:"captured_at"`
	StoredAt   time.Time      `bson:"stored_at"`
}

var _ vitals.ReadingRepository = (*readingRepository)(nil)

type readingRepository struct {
	db *mongo.Database
}

// NewReadingRepository instantiates a MongoDB implementation of the reading
// store.
func NewReadingRepository(db *mongo.Database) vitals.ReadingRepository {
	return &readingRepository{db: db}
}

// UpsertLatest overwrites the latest-value slot keyed by patient and reading
// type. Last write wins; out-of-order delivery across a brief window can
// leave a stale latest value, which is an accepted tradeoff.
func (rr *readingRepository) UpsertLatest(ctx context.Context, patientID string, r vitals.CanonicalReading) error {
	coll := rr.db.Collection(latestCollection)

	filter := bson.D{
		{Key: "patient_id", Value: patientID},
		{Key: "type", Value: string(r.Type)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "data", Value: r.Fields},
		{Key: "source", Value: r.Family.String()},
		{Key: "device_id", Value: r.DeviceID},
		{Key: "captured_at", Value: r.CapturedAt},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.Update().SetUpsert(true)

	if _, err := coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.Wrap(errSaveReading, err)
	}

	return nil
}

func (rr *readingRepository) AppendHistory(ctx context.Context, patientID string, r vitals.CanonicalReading) error {
	name, ok := historyCollections[r.Type]
	if !ok {
		return errUnknownReadingType
	}

	return rr.insert(ctx, name, patientID, r)
}

func (rr *readingRepository) AppendAlert(ctx context.Context, patientID string, r vitals.CanonicalReading) error {
	return rr.insert(ctx, alertsCollection, patientID, r)
}

func (rr *readingRepository) insert(ctx context.Context, coll, patientID string, r vitals.CanonicalReading) error {
	doc := historyDoc{
		PatientID:  patientID,
		Type:       string(r.Type),
		Data:       r.Fields,
		Source:     r.Family.String(),
		DeviceID:   r.DeviceID,
		CapturedAt: r.CapturedAt,
		StoredAt:   time.Now().UTC(),
	}

	if _, err := rr.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errSaveReading, err)
	}

	return nil
}

var _ vitals.StatusRepository = (*statusRepository)(nil)

// statusCollections maps a family to the collection carrying its device
// online status.
var statusCollections = map[vitals.Family]struct {
	name  string
	field string
}{
	vitals.FamilyAVA4:      {name: "amy_boxes", field: "mac"},
	vitals.FamilyKati:      {name: watchesCollection, field: "imei"},
	vitals.FamilyQubeVital: {name: kiosksCollection, field: "mac"},
}

type statusRepository struct {
	db *mongo.Database
}

// NewStatusRepository instantiates a MongoDB implementation of the device
// online-status store.
func NewStatusRepository(db *mongo.Database) vitals.StatusRepository {
	return &statusRepository{db: db}
}

func (sr *statusRepository) UpdateStatus(ctx context.Context, family vitals.Family, deviceID, status string) error {
	target, ok := statusCollections[family]
	if !ok {
		return errors.ErrNotFound
	}

	filter := bson.D{{Key: target.field, Value: deviceID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "last_seen", Value: time.Now().UTC()},
	}}}
	opts := options.Update().SetUpsert(true)

	if _, err := sr.db.Collection(target.name).UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.Wrap(errors.ErrUpdateEntity, err)
	}

	return nil
}
