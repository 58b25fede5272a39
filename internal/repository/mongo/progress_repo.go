package mongo

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "program_progress"

// mongoProgressRepository implements repository.ProgramProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new ProgramProgress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgramProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts the progress pointer for a fresh assignment.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error) {
	if progress.ProgramAssignmentID == primitive.NilObjectID || progress.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires programAssignmentId and clientId")
	}

	progress.ID = primitive.NewObjectID()
	progress.UpdatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByAssignmentID retrieves the progress pointer for an assignment.
func (r *mongoProgressRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.ProgramProgress, error) {
	var progress domain.ProgramProgress
	filter := bson.M{"programAssignmentId": assignmentID}

	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Update advances (or rewrites) the progress pointer.
func (r *mongoProgressRepository) Update(ctx context.Context, progress *domain.ProgramProgress) error {
	if progress.ID == primitive.NilObjectID {
		return errors.New("progress ID is required for update")
	}

	filter := bson.M{"_id": progress.ID}
	update := bson.M{
		"$set": bson.M{
			"currentWeekIndex": progress.CurrentWeekIndex,
			"currentDayIndex":  progress.CurrentDayIndex,
			"isCompleted":      progress.IsCompleted,
			"updatedAt":        time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates indexes for the program_progress collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One progress pointer per assignment.
			Keys:    bson.D{{Key: "programAssignmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
