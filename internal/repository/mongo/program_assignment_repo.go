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

const programAssignmentCollectionName = "program_assignments"

// mongoProgramAssignmentRepository implements repository.ProgramAssignmentRepository
type mongoProgramAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramAssignmentRepository creates a new ProgramAssignment repository.
func NewMongoProgramAssignmentRepository(db *mongo.Database) repository.ProgramAssignmentRepository {
	return &mongoProgramAssignmentRepository{
		collection: db.Collection(programAssignmentCollectionName),
	}
}

// Create inserts a new program assignment. The partial unique index on
// (clientId, programId) filtered to status=active turns a double-activate
// race into ErrConflict instead of a second active row.
func (r *mongoProgramAssignmentRepository) Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error) {
	if assignment.ProgramID == primitive.NilObjectID || assignment.ClientID == primitive.NilObjectID || assignment.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires programId, clientId, and coachId")
	}
	if assignment.Status == "" {
		assignment.Status = domain.AssignmentAssigned
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.StartDate.IsZero() {
		assignment.StartDate = now
	}

	result, err := r.collection.InsertOne(ctx, assignment)
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

// GetByID retrieves an assignment by its ID.
func (r *mongoProgramAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	var assignment domain.ProgramAssignment
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

// GetActiveByClientID retrieves the client's single active assignment.
func (r *mongoProgramAssignmentRepository) GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ProgramAssignment, error) {
	var assignment domain.ProgramAssignment
	filter := bson.M{"clientId": clientID, "status": domain.AssignmentActive}

	// Newest first in case legacy data holds more than one active row.
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOneOptions).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByClientID retrieves all assignments for a client, newest first.
func (r *mongoProgramAssignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	var assignments []domain.ProgramAssignment
	filter := bson.M{"clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateStatus transitions an assignment's lifecycle status.
func (r *mongoProgramAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Activating would create a second active row for the same
			// (client, program).
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramAssignmentIndexes creates indexes for program_assignments.
// The partial unique index is what makes "at most one active assignment
// per (client, program)" a store-level guarantee.
func EnsureProgramAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "programId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.AssignmentActive}).
				SetName("one_active_assignment_per_client_program"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "programId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
