package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRuleNotFound     = errors.New("progression rule not found")
	ErrRuleAccessDenied = errors.New("access denied to modify this progression rule")
)

type ProgressionService interface {
	// CopyWorkoutToProgram materializes one ProgressionRule per template
	// block into (scheduleID, weekNumber). Week 1 rules are real data;
	// copies into later weeks start as placeholders.
	CopyWorkoutToProgram(ctx context.Context, programID, scheduleID, templateID primitive.ObjectID, weekNumber int) error
	GetProgressionRules(ctx context.Context, programID primitive.ObjectID, weekNumber int, scheduleID primitive.ObjectID) ([]domain.ProgressionRule, error)
	UpdateProgressionRule(ctx context.Context, coachID, ruleID primitive.ObjectID, params domain.BlockParams) (*domain.ProgressionRule, error)
	ReplaceExercise(ctx context.Context, coachID, ruleID, newExerciseID primitive.ObjectID) (*domain.ProgressionRule, error)
	DeleteProgressionRules(ctx context.Context, scheduleID primitive.ObjectID) error
}

// progressionService implements the ProgressionService interface.
type progressionService struct {
	ruleRepo     repository.ProgressionRuleRepository
	templateRepo repository.TemplateRepository
	programRepo  repository.ProgramRepository
	exerciseRepo repository.ExerciseRepository
}

// NewProgressionService creates a new instance of progressionService.
func NewProgressionService(
	ruleRepo repository.ProgressionRuleRepository,
	templateRepo repository.TemplateRepository,
	programRepo repository.ProgramRepository,
	exerciseRepo repository.ExerciseRepository,
) ProgressionService {
	return &progressionService{
		ruleRepo:     ruleRepo,
		templateRepo: templateRepo,
		programRepo:  programRepo,
		exerciseRepo: exerciseRepo,
	}
}

// CopyWorkoutToProgram reads the template's blocks and writes one rule per
// block into the given (scheduleID, weekNumber). The write replaces any
// rules already materialized for that key, so re-running after a partial
// failure converges instead of accumulating rows. Rules copied into weeks
// past the first carry IsPlaceholder until the coach edits them.
func (s *progressionService) CopyWorkoutToProgram(ctx context.Context, programID, scheduleID, templateID primitive.ObjectID, weekNumber int) error {
	if programID == primitive.NilObjectID || scheduleID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return errors.New("program ID, schedule ID and template ID are required")
	}
	if weekNumber < 1 {
		return errors.New("week number must be at least 1")
	}

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	rules := make([]domain.ProgressionRule, 0, len(template.Blocks))
	for i, block := range template.Blocks {
		rules = append(rules, domain.ProgressionRule{
			ProgramID:     programID,
			ScheduleID:    scheduleID,
			WeekNumber:    weekNumber,
			BlockKey:      i,
			ExerciseID:    block.ExerciseID,
			BlockType:     block.BlockType,
			Params:        block.Params,
			IsPlaceholder: weekNumber > 1,
		})
	}

	return s.ruleRepo.ReplaceForWeek(ctx, scheduleID, weekNumber, rules)
}

// GetProgressionRules returns every rule for one scheduled day in one week,
// ordered by block position.
func (s *progressionService) GetProgressionRules(ctx context.Context, programID primitive.ObjectID, weekNumber int, scheduleID primitive.ObjectID) ([]domain.ProgressionRule, error) {
	if scheduleID == primitive.NilObjectID {
		return nil, errors.New("schedule ID is required")
	}
	if weekNumber < 1 {
		return nil, errors.New("week number must be at least 1")
	}
	rules, err := s.ruleRepo.GetForWeek(ctx, scheduleID, weekNumber)
	if err != nil {
		return nil, err
	}
	// Drop rows that leaked in from another program, if the caller passed
	// an id to scope by.
	if programID != primitive.NilObjectID {
		filtered := rules[:0]
		for _, r := range rules {
			if r.ProgramID == programID {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}
	return rules, nil
}

// authorizeRule loads a rule and checks the caller owns its program.
func (s *progressionService) authorizeRule(ctx context.Context, coachID, ruleID primitive.ObjectID) (*domain.ProgressionRule, error) {
	if coachID == primitive.NilObjectID || ruleID == primitive.NilObjectID {
		return nil, errors.New("coach ID and rule ID are required")
	}
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, rule.ProgramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrRuleAccessDenied
	}
	return rule, nil
}

// UpdateProgressionRule overwrites a rule's parameters after validating
// them against the rule's block type. Only the targeted week's row is
// written; sibling weeks for the same schedule day are untouched. The
// first edit clears the placeholder flag for good.
func (s *progressionService) UpdateProgressionRule(ctx context.Context, coachID, ruleID primitive.ObjectID, params domain.BlockParams) (*domain.ProgressionRule, error) {
	rule, err := s.authorizeRule(ctx, coachID, ruleID)
	if err != nil {
		return nil, err
	}

	if err := params.Validate(rule.BlockType); err != nil {
		return nil, err
	}

	rule.Params = params
	rule.IsPlaceholder = false

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// ReplaceExercise swaps only the exercise identity on a rule. Every
// type-specific parameter keeps its current value.
func (s *progressionService) ReplaceExercise(ctx context.Context, coachID, ruleID, newExerciseID primitive.ObjectID) (*domain.ProgressionRule, error) {
	if newExerciseID == primitive.NilObjectID {
		return nil, errors.New("new exercise ID is required")
	}

	rule, err := s.authorizeRule(ctx, coachID, ruleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.exerciseRepo.GetByID(ctx, newExerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	rule.ExerciseID = newExerciseID
	rule.IsPlaceholder = false

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// DeleteProgressionRules hard-deletes every rule carrying the schedule id,
// ahead of re-materialization from a new template. A schedule row belongs
// to exactly one week, so rules for other days are never touched.
func (s *progressionService) DeleteProgressionRules(ctx context.Context, scheduleID primitive.ObjectID) error {
	if scheduleID == primitive.NilObjectID {
		return errors.New("schedule ID is required")
	}
	return s.ruleRepo.DeleteForSchedule(ctx, scheduleID)
}
