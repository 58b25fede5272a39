package repository

import (
	"coachfit/coaching-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict: row already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	// ErrSchemaOutdated signals that the store predates the program-day
	// tagging migration, so tagged lookups are not trustworthy and the
	// caller must fall back to template-based matching.
	ErrSchemaOutdated = RepositoryError("store schema predates program-day tagging")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the exercise
}

// ProgramRepository manages coach-authored programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// ProgramAssignmentRepository manages program-to-client bindings.
// Create returns ErrConflict when an active assignment for the same
// (client, program) already exists and the new one is active too.
type ProgramAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error)
	GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ProgramAssignment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error
}

// ProgramProgressRepository manages the per-assignment progress pointer.
type ProgramProgressRepository interface {
	Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.ProgramProgress, error)
	Update(ctx context.Context, progress *domain.ProgramProgress) error
}

// ScheduleRepository manages (program, week, day-of-week) -> template rows.
type ScheduleRepository interface {
	// Upsert creates or replaces the row for (programId, weekNumber,
	// dayOfWeek) and returns the row id (existing id on replace).
	Upsert(ctx context.Context, day *domain.ScheduleDay) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleDay, error)
	GetDay(ctx context.Context, programID primitive.ObjectID, weekNumber, dayOfWeek int) (*domain.ScheduleDay, error)
	GetWeek(ctx context.Context, programID primitive.ObjectID, weekNumber int) ([]domain.ScheduleDay, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ScheduleDay, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgressionRuleRepository manages the per-week materialized rules.
type ProgressionRuleRepository interface {
	// ReplaceForWeek deletes every rule for (scheduleId, weekNumber) and
	// bulk-inserts the given rules in one ordered operation. Either all
	// rules land or the error instructs the caller to retry the whole
	// copy; no partially-copied week is reported as success.
	ReplaceForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int, rules []domain.ProgressionRule) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionRule, error)
	GetForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int) ([]domain.ProgressionRule, error)
	Update(ctx context.Context, rule *domain.ProgressionRule) error
	// DeleteForSchedule removes every rule carrying the schedule id,
	// ahead of re-materialization when the day's template changes.
	DeleteForSchedule(ctx context.Context, scheduleID primitive.ObjectID) error
}

// TemplateRepository manages reusable workout templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, template *domain.WorkoutTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// WorkoutAssignmentRepository manages concrete workout instances.
type WorkoutAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.WorkoutStatus) error
}

// WorkoutSessionRepository manages execution sessions.
//
// Create returns ErrConflict when another in-progress session already
// exists for the same (client, program day); the loser of a concurrent
// start race sees the winner's row instead of inserting a duplicate.
// FindInProgressByProgramDay returns ErrSchemaOutdated when the store
// predates program-day tagging; callers then fall back to
// FindInProgressByTemplate.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	FindInProgressByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutSession, error)
	FindInProgressByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutSession, error)
	Complete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutLogRepository manages per-attempt logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	FindIncompleteByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutLog, error)
	FindIncompleteByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutLog, error)
	AppendSetLog(ctx context.Context, id primitive.ObjectID, set domain.WorkoutSetLog) error
	Complete(ctx context.Context, id primitive.ObjectID) error
}

// ProgressPhotoRepository manages progress photo metadata.
type ProgressPhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressPhoto, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error)
}
