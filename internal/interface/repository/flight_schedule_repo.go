package repository

import (
	"context"
	"fmt"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// scheduleDocument stores a schedule under its shard path
// routes/{route}/{date}/flights/{id}, which doubles as the primary key.
type scheduleDocument struct {
	Path                  string `bson:"_id"`
	Route                 string `bson:"route"`
	entity.FlightSchedule `bson:",inline"`
}

// MongoShardStore implements ShardStore on a single MongoDB collection
type MongoShardStore struct {
	collection *mongo.Collection
}

// NewMongoShardStore creates the shard store and ensures its indexes
func NewMongoShardStore(ctx context.Context, db *mongo.Database) (repository.ShardStore, error) {
	collection := db.Collection("flight_schedules")

	// one shard = all documents of a (route, departureDate) pair
	shardIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "route", Value: 1},
			{Key: "departureDate", Value: 1},
			{Key: "departureTime", Value: 1},
		},
	}

	scheduleIDIndex := mongo.IndexModel{
		Keys: bson.M{"scheduleId": 1},
	}

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{shardIndex, scheduleIDIndex}); err != nil {
		return nil, fmt.Errorf("failed to create flight schedule indexes: %w", err)
	}

	return &MongoShardStore{collection: collection}, nil
}

// Exists checks whether a document is stored at the shard path
func (r *MongoShardStore) Exists(ctx context.Context, key entity.ShardKey) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": key.Path()}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key.Path(), err)
	}
	return n > 0, nil
}

// CommitBatch writes all schedules in one ordered bulk operation. Documents are
// replaced under their deterministic path so an overlapping run cannot duplicate them.
func (r *MongoShardStore) CommitBatch(ctx context.Context, schedules []*entity.FlightSchedule) error {
	if len(schedules) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(schedules))
	for _, s := range schedules {
		doc := scheduleDocument{
			Path:           s.Key().Path(),
			Route:          s.Route(),
			FlightSchedule: *s,
		}

		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.Path}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// FindByShard returns every schedule stored under route/date ordered by departure time
func (r *MongoShardStore) FindByShard(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error) {
	filter := bson.M{"route": route, "departureDate": date}
	opts := options.Find().SetSort(bson.D{{Key: "departureTime", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read shard %s/%s: %w", route, date, err)
	}
	defer cursor.Close(ctx)

	var docs []scheduleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode shard %s/%s: %w", route, date, err)
	}

	schedules := make([]*entity.FlightSchedule, 0, len(docs))
	for i := range docs {
		schedules = append(schedules, &docs[i].FlightSchedule)
	}

	return schedules, nil
}
