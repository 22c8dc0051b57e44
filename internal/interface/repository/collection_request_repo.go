package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCollectionRequestRepository implements CollectionRequestRepository
type MongoCollectionRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoCollectionRequestRepository creates a new collection request repository
func NewMongoCollectionRequestRepository(ctx context.Context, db *mongo.Database) (repository.CollectionRequestRepository, error) {
	collection := db.Collection("collection_requests")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.M{"departureIata": 1}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create collection request indexes: %w", err)
	}

	return &MongoCollectionRequestRepository{collection: collection}, nil
}

// Create inserts a new run record
func (r *MongoCollectionRequestRepository) Create(ctx context.Context, req *entity.CollectionRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = entity.RunPending
	}

	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create collection request: %w", err)
	}
	return nil
}

// FindByID finds a run record by id
func (r *MongoCollectionRequestRepository) FindByID(ctx context.Context, id string) (*entity.CollectionRequest, error) {
	var req entity.CollectionRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus moves the run forward. The filter only matches valid
// predecessor statuses, so concurrent writers cannot move a run backwards.
func (r *MongoCollectionRequestRepository) UpdateStatus(ctx context.Context, id, status, errorDetail string) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if errorDetail != "" {
		set["errorDetail"] = errorDetail
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": entity.PreviousRunStatuses(status)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, current.Status, status)
	}

	return nil
}

// UpdateProgress stores the counters; $max keeps them monotonic
func (r *MongoCollectionRequestRepository) UpdateProgress(ctx context.Context, id string, progress entity.RunProgress) error {
	update := bson.M{
		"$max": progress,
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no collection request with id %s: %w", id, entity.ErrNotFound)
	}

	return nil
}
