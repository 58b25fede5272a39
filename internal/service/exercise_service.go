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
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name          string
	Description   string
	MuscleGroup   string
	Equipment     string
	Applicability string
	Difficulty    string
	VideoURL      string
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise handles the creation of a new exercise by a coach.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		CoachID:       coachID,
		Name:          input.Name,
		Description:   input.Description,
		MuscleGroup:   input.MuscleGroup,
		Equipment:     input.Equipment,
		Applicability: input.Applicability,
		Difficulty:    input.Difficulty,
		VideoURL:      input.VideoURL,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again so the caller sees repository-set timestamps.
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByCoach retrieves all exercises for a specific coach.
func (s *exerciseService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("coach ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.MuscleGroup = input.MuscleGroup
	existing.Equipment = input.Equipment
	existing.Applicability = input.Applicability
	existing.Difficulty = input.Difficulty
	existing.VideoURL = input.VideoURL

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership.
// The repository's filter includes the coach id, so ownership is enforced
// at the store and a mismatch surfaces as not-found.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("coach ID and exercise ID are required")
	}

	err := s.exerciseRepo.Delete(ctx, exerciseID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
