package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("workout template not found")
	ErrTemplateAccessDenied = errors.New("access denied to modify this workout template")
	ErrTemplateHasNoBlocks  = errors.New("workout template must contain at least one block")
)

// TemplateInput carries the editable fields of a workout template.
type TemplateInput struct {
	Name   string
	Notes  string
	Blocks []domain.TemplateBlock
}

type TemplateService interface {
	CreateTemplate(ctx context.Context, coachID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error)
	GetTemplateByID(ctx context.Context, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	UpdateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
	exerciseRepo repository.ExerciseRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.TemplateRepository, exerciseRepo repository.ExerciseRepository) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		exerciseRepo: exerciseRepo,
	}
}

// validateBlocks rejects templates whose blocks carry an unknown type,
// params that do not match their type, or a dangling exercise reference.
func (s *templateService) validateBlocks(ctx context.Context, blocks []domain.TemplateBlock) error {
	if len(blocks) == 0 {
		return ErrTemplateHasNoBlocks
	}
	for i := range blocks {
		if err := blocks[i].Params.Validate(blocks[i].BlockType); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if blocks[i].ExerciseID == primitive.NilObjectID {
			return fmt.Errorf("block %d: exercise ID is required", i)
		}
		if _, err := s.exerciseRepo.GetByID(ctx, blocks[i].ExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("block %d: %w", i, ErrExerciseNotFound)
			}
			return err
		}
	}
	return nil
}

// CreateTemplate creates a new coach-owned workout template.
func (s *templateService) CreateTemplate(ctx context.Context, coachID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	if input.Name == "" {
		return nil, errors.New("template name is required")
	}
	if err := s.validateBlocks(ctx, input.Blocks); err != nil {
		return nil, err
	}

	template := &domain.WorkoutTemplate{
		CoachID: coachID,
		Name:    input.Name,
		Notes:   input.Notes,
		Blocks:  input.Blocks,
	}

	templateID, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, templateID)
}

// GetTemplateByID retrieves a single workout template.
func (s *templateService) GetTemplateByID(ctx context.Context, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

// GetTemplatesByCoach lists the coach's workout templates.
func (s *templateService) GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.templateRepo.GetByCoachID(ctx, coachID)
}

// UpdateTemplate updates an existing template, ensuring ownership.
func (s *templateService) UpdateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, input TemplateInput) (*domain.WorkoutTemplate, error) {
	if input.Name == "" {
		return nil, errors.New("template name is required")
	}
	if err := s.validateBlocks(ctx, input.Blocks); err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	template.Name = input.Name
	template.Notes = input.Notes
	template.Blocks = input.Blocks

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeleteTemplate deletes a template, ensuring ownership.
func (s *templateService) DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return errors.New("coach ID and template ID are required")
	}
	err := s.templateRepo.Delete(ctx, templateID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}
