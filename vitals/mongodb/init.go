// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the pipeline relies on. The unique
// citizen key index backs the atomic placeholder find-or-create; the
// compound latest-value index backs the per-patient, per-type slot upsert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	patients := db.Collection(patientsCollection)
	_, err := patients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "citizen_key", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "citizen_key", Value: bson.D{{Key: "$type", Value: "string"}}}}),
	})
	if err != nil {
		return err
	}

	latest := db.Collection(latestCollection)
	_, err = latest.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "patient_id", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return err
}
