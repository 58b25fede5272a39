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

const workoutAssignmentCollectionName = "workout_assignments"

// mongoWorkoutAssignmentRepository implements repository.WorkoutAssignmentRepository
type mongoWorkoutAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutAssignmentRepository creates a new WorkoutAssignment repository.
func NewMongoWorkoutAssignmentRepository(db *mongo.Database) repository.WorkoutAssignmentRepository {
	return &mongoWorkoutAssignmentRepository{
		collection: db.Collection(workoutAssignmentCollectionName),
	}
}

// Create inserts a new workout assignment.
func (r *mongoWorkoutAssignmentRepository) Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	if assignment.ClientID == primitive.NilObjectID || assignment.TemplateID == primitive.NilObjectID || assignment.Name == "" {
		return primitive.NilObjectID, errors.New("workout assignment requires clientId, templateId, and name")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Date.IsZero() {
		assignment.Date = now
	}
	if assignment.Status == "" {
		assignment.Status = domain.WorkoutAssigned
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a workout assignment by its ID.
func (r *mongoWorkoutAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	var assignment domain.WorkoutAssignment
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// UpdateStatus transitions a workout assignment's status.
func (r *mongoWorkoutAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.WorkoutStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
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

// EnsureWorkoutAssignmentIndexes creates indexes for workout_assignments.
func EnsureWorkoutAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "programDay.programAssignmentId", Value: 1}, {Key: "programDay.programScheduleId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
