package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound         = errors.New("program not found")
	ErrProgramAccessDenied     = errors.New("access denied to modify this program")
	ErrAssignmentNotFound      = errors.New("program assignment not found")
	ErrAssignmentAccessDenied  = errors.New("access denied to modify this assignment")
	ErrAssignmentAlreadyActive = errors.New("client already has an active assignment for this program")
	ErrInvalidStatusTransition = errors.New("invalid assignment status transition")
)

// ProgramInput carries the editable fields of a program.
type ProgramInput struct {
	Name            string
	Description     string
	DurationWeeks   int
	DifficultyLevel domain.DifficultyLevel
	TargetAudience  string
}

type ProgramService interface {
	CreateProgram(ctx context.Context, coachID primitive.ObjectID, input ProgramInput) (*domain.Program, error)
	GetProgramByID(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error)
	GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	UpdateProgram(ctx context.Context, coachID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error)

	AssignProgram(ctx context.Context, coachID, programID, clientID primitive.ObjectID, startDate time.Time) (*domain.ProgramAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, coachID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.ProgramAssignment, error)
	GetAssignmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error)
}

// programService implements the ProgramService interface.
type programService struct {
	programRepo    repository.ProgramRepository
	assignmentRepo repository.ProgramAssignmentRepository
	progressRepo   repository.ProgramProgressRepository
	userRepo       repository.UserRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(
	programRepo repository.ProgramRepository,
	assignmentRepo repository.ProgramAssignmentRepository,
	progressRepo repository.ProgramProgressRepository,
	userRepo repository.UserRepository,
) ProgramService {
	return &programService{
		programRepo:    programRepo,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		userRepo:       userRepo,
	}
}

// CreateProgram creates a new coach-owned program.
func (s *programService) CreateProgram(ctx context.Context, coachID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	if input.Name == "" {
		return nil, errors.New("program name is required")
	}
	if input.DurationWeeks < 1 {
		return nil, errors.New("program duration must be at least one week")
	}

	program := &domain.Program{
		CoachID:         coachID,
		Name:            input.Name,
		Description:     input.Description,
		DurationWeeks:   input.DurationWeeks,
		DifficultyLevel: input.DifficultyLevel,
		TargetAudience:  input.TargetAudience,
	}

	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	return s.programRepo.GetByID(ctx, programID)
}

// GetProgramByID retrieves a single program.
func (s *programService) GetProgramByID(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// GetProgramsByCoach lists the coach's programs.
func (s *programService) GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.programRepo.GetByCoachID(ctx, coachID)
}

// UpdateProgram updates an existing program, ensuring ownership.
func (s *programService) UpdateProgram(ctx context.Context, coachID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if input.Name == "" {
		return nil, errors.New("program name is required")
	}
	if input.DurationWeeks < 1 {
		return nil, errors.New("program duration must be at least one week")
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrProgramAccessDenied
	}

	program.Name = input.Name
	program.Description = input.Description
	program.DurationWeeks = input.DurationWeeks
	program.DifficultyLevel = input.DifficultyLevel
	program.TargetAudience = input.TargetAudience

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// AssignProgram binds a program to one of the coach's clients. The new
// assignment starts in the "assigned" state with a fresh progress pointer
// at week 0, day 0.
func (s *programService) AssignProgram(ctx context.Context, coachID, programID, clientID primitive.ObjectID, startDate time.Time) (*domain.ProgramAssignment, error) {
	if coachID == primitive.NilObjectID || programID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID, program ID and client ID are required")
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrProgramAccessDenied
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrClientNotManaged
	}

	if startDate.IsZero() {
		startDate = time.Now()
	}

	assignment := &domain.ProgramAssignment{
		ProgramID: programID,
		ClientID:  clientID,
		CoachID:   coachID,
		StartDate: startDate,
		Status:    domain.AssignmentAssigned,
	}

	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAssignmentAlreadyActive
		}
		return nil, err
	}
	assignment.ID = assignmentID

	progress := &domain.ProgramProgress{
		ProgramAssignmentID: assignmentID,
		ClientID:            clientID,
	}
	if _, err := s.progressRepo.Create(ctx, progress); err != nil {
		return nil, err
	}

	return s.assignmentRepo.GetByID(ctx, assignmentID)
}

// allowedTransitions lists the reachable statuses per current status.
var allowedTransitions = map[domain.AssignmentStatus][]domain.AssignmentStatus{
	domain.AssignmentAssigned: {domain.AssignmentActive, domain.AssignmentCancelled},
	domain.AssignmentActive:   {domain.AssignmentPaused, domain.AssignmentCompleted, domain.AssignmentCancelled},
	domain.AssignmentPaused:   {domain.AssignmentActive, domain.AssignmentCancelled},
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
// Completed and cancelled are terminal.
func (s *programService) UpdateAssignmentStatus(ctx context.Context, coachID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.ProgramAssignment, error) {
	if coachID == primitive.NilObjectID || assignmentID == primitive.NilObjectID {
		return nil, errors.New("coach ID and assignment ID are required")
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != coachID {
		return nil, ErrAssignmentAccessDenied
	}

	allowed := false
	for _, next := range allowedTransitions[assignment.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, status); err != nil {
		// Activating can trip the one-active-per-program index if another
		// assignment for the same (client, program) is already active.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAssignmentAlreadyActive
		}
		return nil, err
	}
	assignment.Status = status
	return assignment, nil
}

// GetAssignmentsByClient lists a client's program assignments.
func (s *programService) GetAssignmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}
