package mongo

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "workout_sessions"

// sessionProgramDayIndexName is the partial unique index that enforces at
// most one in-progress session per (client, program day). Its absence
// means the deployment predates the program-day tagging migration, in
// which case tagged lookups fall back to template matching.
const sessionProgramDayIndexName = "one_in_progress_session_per_program_day"

// mongoSessionRepository implements repository.WorkoutSessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection

	tagIndexOnce    sync.Once
	tagIndexPresent bool
}

// NewMongoSessionRepository creates a new WorkoutSession repository.
func NewMongoSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// hasProgramDayIndex reports whether the tagging index exists. Checked
// once per process; a new deployment after migration restarts anyway.
func (r *mongoSessionRepository) hasProgramDayIndex(ctx context.Context) bool {
	r.tagIndexOnce.Do(func() {
		cursor, err := r.collection.Indexes().List(ctx)
		if err != nil {
			logrus.WithError(err).Warn("could not list workout_sessions indexes, assuming pre-migration schema")
			return
		}
		defer cursor.Close(ctx)

		var specs []bson.M
		if err := cursor.All(ctx, &specs); err != nil {
			logrus.WithError(err).Warn("could not read workout_sessions indexes, assuming pre-migration schema")
			return
		}
		for _, spec := range specs {
			if name, _ := spec["name"].(string); name == sessionProgramDayIndexName {
				r.tagIndexPresent = true
				return
			}
		}
	})
	return r.tagIndexPresent
}

// Create inserts a new session. A duplicate-key error on the program-day
// index means a concurrent starter won the race; the caller re-reads the
// winner's row via FindInProgressByProgramDay.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.ClientID == primitive.NilObjectID || session.WorkoutAssignmentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires clientId and workoutAssignmentId")
	}

	session.ID = primitive.NewObjectID()
	if session.Status == "" {
		session.Status = domain.WorkoutInProgress
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, session)
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

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindInProgressByProgramDay finds the client's in-progress session for
// one exact program day. Returns ErrSchemaOutdated when the store has no
// program-day tagging yet.
func (r *mongoSessionRepository) FindInProgressByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutSession, error) {
	if !r.hasProgramDayIndex(ctx) {
		return nil, repository.ErrSchemaOutdated
	}

	var session domain.WorkoutSession
	filter := bson.M{
		"clientId":                       clientID,
		"programDay.programAssignmentId": ref.ProgramAssignmentID,
		"programDay.programScheduleId":   ref.ProgramScheduleID,
		"status":                         domain.WorkoutInProgress,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindInProgressByTemplate is the degraded, pre-migration lookup: matches
// on template only, so it can reuse across different days sharing a
// template. Callers flag the response accordingly.
func (r *mongoSessionRepository) FindInProgressByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	filter := bson.M{
		"clientId":   clientID,
		"templateId": templateID,
		"status":     domain.WorkoutInProgress,
	}
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOneOptions).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Complete marks a session completed and stamps the completion time.
func (r *mongoSessionRepository) Complete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "status": domain.WorkoutInProgress}
	update := bson.M{
		"$set": bson.M{
			"status":      domain.WorkoutCompleted,
			"completedAt": now,
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

// EnsureSessionIndexes creates indexes for workout_sessions, including the
// partial unique index that makes concurrent start-workout calls safe: the
// check-then-act window in the resolver is closed at the data layer, not
// in handler logic.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "clientId", Value: 1},
				{Key: "programDay.programAssignmentId", Value: 1},
				{Key: "programDay.programScheduleId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.WorkoutInProgress}).
				SetName(sessionProgramDayIndexName),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "templateId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
