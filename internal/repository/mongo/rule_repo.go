package mongo

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ruleCollectionName = "program_progression_rules"

// mongoRuleRepository implements repository.ProgressionRuleRepository
type mongoRuleRepository struct {
	collection *mongo.Collection
}

// NewMongoRuleRepository creates a new ProgressionRule repository.
func NewMongoRuleRepository(db *mongo.Database) repository.ProgressionRuleRepository {
	return &mongoRuleRepository{
		collection: db.Collection(ruleCollectionName),
	}
}

// ReplaceForWeek deletes every rule for (scheduleId, weekNumber) and then
// bulk-inserts the given rules as one ordered InsertMany. If the insert
// fails partway, the week's rows are deleted again so the week reads as
// unmaterialized rather than half-copied; the caller retries the whole
// copy. The delete strictly precedes the insert so old and new rules
// never coexist.
func (r *mongoRuleRepository) ReplaceForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int, rules []domain.ProgressionRule) error {
	if scheduleID == primitive.NilObjectID {
		return errors.New("schedule ID is required")
	}
	if weekNumber < 1 {
		return errors.New("week number must be at least 1")
	}

	weekFilter := bson.M{"scheduleId": scheduleID, "weekNumber": weekNumber}
	if _, err := r.collection.DeleteMany(ctx, weekFilter); err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(rules))
	for i := range rules {
		rules[i].ID = primitive.NewObjectID()
		rules[i].ScheduleID = scheduleID
		rules[i].WeekNumber = weekNumber
		rules[i].CreatedAt = now
		rules[i].UpdatedAt = now
		docs[i] = rules[i]
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		// Roll back whatever landed; a half-copied week must not be
		// observable as success.
		if _, delErr := r.collection.DeleteMany(ctx, weekFilter); delErr != nil {
			return fmt.Errorf("rule copy failed (%w) and cleanup failed: %v", err, delErr)
		}
		return fmt.Errorf("rule copy failed, retry the copy: %w", err)
	}
	return nil
}

// GetByID retrieves a progression rule by its id.
func (r *mongoRuleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionRule, error) {
	var rule domain.ProgressionRule
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// GetForWeek retrieves all rules for (scheduleId, weekNumber), in block order.
func (r *mongoRuleRepository) GetForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int) ([]domain.ProgressionRule, error) {
	var rules []domain.ProgressionRule
	filter := bson.M{"scheduleId": scheduleID, "weekNumber": weekNumber}
	findOptions := options.Find().SetSort(bson.D{{Key: "blockKey", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Update rewrites a rule's mutable fields. The write addresses the rule's
// own row only; other weeks' rows are untouched by construction since the
// filter is the rule id. The placeholder flag is stored as given: first
// write from the service layer clears it for good.
func (r *mongoRuleRepository) Update(ctx context.Context, rule *domain.ProgressionRule) error {
	if rule.ID == primitive.NilObjectID {
		return errors.New("rule ID is required for update")
	}

	filter := bson.M{"_id": rule.ID}
	update := bson.M{
		"$set": bson.M{
			"exerciseId":    rule.ExerciseID,
			"blockType":     rule.BlockType,
			"params":        rule.Params,
			"isPlaceholder": rule.IsPlaceholder,
			"updatedAt":     time.Now().UTC(),
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

// DeleteForSchedule hard-deletes all rules carrying the schedule id.
// Used before re-materialization when the day's template is replaced.
func (r *mongoRuleRepository) DeleteForSchedule(ctx context.Context, scheduleID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"scheduleId": scheduleID})
	return err
}

// EnsureRuleIndexes creates indexes for program_progression_rules.
func EnsureRuleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One rule per block per week per schedule day.
			Keys: bson.D{
				{Key: "scheduleId", Value: 1},
				{Key: "weekNumber", Value: 1},
				{Key: "blockKey", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logrus.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
