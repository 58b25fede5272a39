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

const logCollectionName = "workout_logs"

// mongoLogRepository implements repository.WorkoutLogRepository
type mongoLogRepository struct {
	collection *mongo.Collection
}

// NewMongoLogRepository creates a new WorkoutLog repository.
func NewMongoLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoLogRepository{
		collection: db.Collection(logCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.ClientID == primitive.NilObjectID || log.WorkoutAssignmentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("log requires clientId and workoutAssignmentId")
	}

	log.ID = primitive.NewObjectID()
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a log by its ID.
func (r *mongoLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindIncompleteByProgramDay finds the client's unfinished log for one
// exact program day (completedAt unset).
func (r *mongoLogRepository) FindIncompleteByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	filter := bson.M{
		"clientId":                       clientID,
		"programDay.programAssignmentId": ref.ProgramAssignmentID,
		"programDay.programScheduleId":   ref.ProgramScheduleID,
		"completedAt":                    bson.M{"$exists": false},
	}
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOneOptions).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindIncompleteByTemplate is the degraded, pre-migration lookup.
func (r *mongoLogRepository) FindIncompleteByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	filter := bson.M{
		"clientId":    clientID,
		"templateId":  templateID,
		"completedAt": bson.M{"$exists": false},
	}
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOneOptions).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// AppendSetLog pushes one performed set onto the log.
func (r *mongoLogRepository) AppendSetLog(ctx context.Context, id primitive.ObjectID, set domain.WorkoutSetLog) error {
	if set.LoggedAt.IsZero() {
		set.LoggedAt = time.Now().UTC()
	}

	filter := bson.M{"_id": id, "completedAt": bson.M{"$exists": false}}
	update := bson.M{"$push": bson.M{"setLogs": set}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Complete stamps the log's completion time.
func (r *mongoLogRepository) Complete(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "completedAt": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"completedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureLogIndexes creates indexes for the workout_logs collection.
func EnsureLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "clientId", Value: 1},
				{Key: "programDay.programAssignmentId", Value: 1},
				{Key: "programDay.programScheduleId", Value: 1},
			},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "templateId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
