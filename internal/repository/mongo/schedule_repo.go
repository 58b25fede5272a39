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

const scheduleCollectionName = "program_schedule"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new Schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Upsert creates or replaces the row for (programId, weekNumber, dayOfWeek)
// and returns the row id. The unique index on that triple makes the upsert
// race-safe: two concurrent writers for the same day converge on one row.
func (r *mongoScheduleRepository) Upsert(ctx context.Context, day *domain.ScheduleDay) (primitive.ObjectID, error) {
	if day.ProgramID == primitive.NilObjectID || day.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("schedule day requires programId and templateId")
	}
	if day.WeekNumber < 1 {
		return primitive.NilObjectID, errors.New("week number must be at least 1")
	}
	if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
		return primitive.NilObjectID, errors.New("day of week must be within [0,6]")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"programId":  day.ProgramID,
		"weekNumber": day.WeekNumber,
		"dayOfWeek":  day.DayOfWeek,
	}
	update := bson.M{
		"$set": bson.M{
			"templateId": day.TemplateID,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"programId":  day.ProgramID,
			"weekNumber": day.WeekNumber,
			"dayOfWeek":  day.DayOfWeek,
			"createdAt":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var updated domain.ScheduleDay
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		return primitive.NilObjectID, err
	}

	day.ID = updated.ID
	day.CreatedAt = updated.CreatedAt
	day.UpdatedAt = updated.UpdatedAt
	return updated.ID, nil
}

// GetByID retrieves a schedule day by its row id.
func (r *mongoScheduleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleDay, error) {
	var day domain.ScheduleDay
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetDay retrieves the row for (programId, weekNumber, dayOfWeek).
func (r *mongoScheduleRepository) GetDay(ctx context.Context, programID primitive.ObjectID, weekNumber, dayOfWeek int) (*domain.ScheduleDay, error) {
	var day domain.ScheduleDay
	filter := bson.M{
		"programId":  programID,
		"weekNumber": weekNumber,
		"dayOfWeek":  dayOfWeek,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetWeek retrieves all scheduled days in a week, ordered by day of week.
func (r *mongoScheduleRepository) GetWeek(ctx context.Context, programID primitive.ObjectID, weekNumber int) ([]domain.ScheduleDay, error) {
	var days []domain.ScheduleDay
	filter := bson.M{"programId": programID, "weekNumber": weekNumber}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// GetByProgramID retrieves every schedule row of a program, ordered by
// week then day.
func (r *mongoScheduleRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ScheduleDay, error) {
	var days []domain.ScheduleDay
	filter := bson.M{"programId": programID}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}, {Key: "dayOfWeek", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// Delete removes a schedule row by id.
func (r *mongoScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureScheduleIndexes creates indexes for the program_schedule collection.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Each (program, week, day) maps to exactly one template.
			Keys: bson.D{
				{Key: "programId", Value: 1},
				{Key: "weekNumber", Value: 1},
				{Key: "dayOfWeek", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
