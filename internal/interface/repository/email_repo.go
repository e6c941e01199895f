// internal/interface/repository/email_repo.go
package repository

import (
	"context"
	"fmt"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(ctx context.Context, db *mongo.Database) (repository.EmailRepository, error) {
	collection := db.Collection("emailLogs")

	emailIDIndex := mongo.IndexModel{
		Keys:    bson.M{"emailId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on processStatus for finding failed extractions
	processStatusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		emailIDIndex,
		processStatusIndex,
		receivedAtIndex,
	}); err != nil {
		return nil, fmt.Errorf("failed to create emailLogs indexes: %w", err)
	}

	return &MongoEmailRepository{
		collection: collection,
		now:        time.Now,
	}, nil
}

// Save upserts an email by emailId; a re-fetched email starts a fresh audit entry
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"emailId": email.EmailID},
		email,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save email %s: %w", email.EmailID, err)
	}
	return nil
}

// MarkAsProcessedByEmailID records the extraction result of an email
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"emailId": emailID},
		processedUpdate(r.now(), status, processorType, errorDetail, extractedData),
	)
	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with emailID: %s", emailID)
	}

	return nil
}

func processedUpdate(now time.Time, status, processorType, errorDetail string, extractedData map[string]interface{}) bson.M {
	set := bson.M{
		"processedAt":   now,
		"processStatus": status,
		"processorType": processorType,
	}

	if len(extractedData) > 0 {
		set["extractedData"] = extractedData
	}

	if errorDetail != "" {
		set["errorDetail"] = errorDetail
	}

	return bson.M{"$set": set}
}
