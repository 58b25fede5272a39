package service

import (
	"context"
	"testing"
	"time"

	"coachfit/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type programFixture struct {
	programs    *memProgramRepo
	assignments *memAssignmentRepo
	progress    *memProgressRepo
	users       *memUserRepo

	svc ProgramService

	coach  *domain.User
	client *domain.User
}

func newProgramFixture(t *testing.T) *programFixture {
	t.Helper()

	f := &programFixture{
		programs:    newMemProgramRepo(),
		assignments: newMemAssignmentRepo(),
		progress:    newMemProgressRepo(),
		users:       newMemUserRepo(),
	}
	f.svc = NewProgramService(f.programs, f.assignments, f.progress, f.users)

	f.coach = f.users.put(&domain.User{Name: "Coach", Email: "coach@test.io", Role: domain.RoleCoach})
	f.client = f.users.put(&domain.User{Name: "Client", Email: "client@test.io", Role: domain.RoleClient, CoachID: &f.coach.ID})

	return f
}

func (f *programFixture) createProgram(t *testing.T, weeks int) *domain.Program {
	t.Helper()
	program, err := f.svc.CreateProgram(context.Background(), f.coach.ID, ProgramInput{Name: "Base Block", DurationWeeks: weeks})
	require.NoError(t, err)
	return program
}

func TestCreateProgram(t *testing.T) {
	f := newProgramFixture(t)

	program := f.createProgram(t, 4)
	assert.Equal(t, f.coach.ID, program.CoachID)
	assert.Equal(t, 4, program.DurationWeeks)

	_, err := f.svc.CreateProgram(context.Background(), f.coach.ID, ProgramInput{Name: "Too Short", DurationWeeks: 0})
	assert.Error(t, err)
	_, err = f.svc.CreateProgram(context.Background(), f.coach.ID, ProgramInput{DurationWeeks: 4})
	assert.Error(t, err)
}

func TestUpdateProgram_Ownership(t *testing.T) {
	f := newProgramFixture(t)
	program := f.createProgram(t, 4)

	_, err := f.svc.UpdateProgram(context.Background(), primitive.NewObjectID(), program.ID, ProgramInput{Name: "Hijacked", DurationWeeks: 4})
	assert.ErrorIs(t, err, ErrProgramAccessDenied)

	updated, err := f.svc.UpdateProgram(context.Background(), f.coach.ID, program.ID, ProgramInput{Name: "Renamed", DurationWeeks: 6})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 6, updated.DurationWeeks)
}

func TestAssignProgram_CreatesFreshProgress(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	assignment, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentAssigned, assignment.Status)
	assert.Equal(t, f.client.ID, assignment.ClientID)
	assert.False(t, assignment.StartDate.IsZero())

	progress, err := f.progress.GetByAssignmentID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CurrentWeekIndex)
	assert.Equal(t, 0, progress.CurrentDayIndex)
	assert.False(t, progress.IsCompleted)
}

func TestAssignProgram_ClientNotOnRoster(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	loner := f.users.put(&domain.User{Name: "Loner", Email: "loner@test.io", Role: domain.RoleClient})
	_, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, loner.ID, time.Time{})
	assert.ErrorIs(t, err, ErrClientNotManaged)

	_, err = f.svc.AssignProgram(ctx, f.coach.ID, program.ID, primitive.NewObjectID(), time.Time{})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestAssignProgram_ForeignProgram(t *testing.T) {
	f := newProgramFixture(t)
	program := f.createProgram(t, 4)

	_, err := f.svc.AssignProgram(context.Background(), primitive.NewObjectID(), program.ID, f.client.ID, time.Time{})
	assert.ErrorIs(t, err, ErrProgramAccessDenied)
}

func TestAssignProgram_DuplicateAssignment(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	_, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	require.NoError(t, err)
	_, err = f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	assert.ErrorIs(t, err, ErrAssignmentAlreadyActive)
}

func TestUpdateAssignmentStatus_Lifecycle(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	assignment, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	require.NoError(t, err)

	activated, err := f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentActive)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, activated.Status)

	paused, err := f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentPaused, paused.Status)

	resumed, err := f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentActive)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, resumed.Status)

	completed, err := f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCompleted, completed.Status)
}

func TestUpdateAssignmentStatus_InvalidTransitions(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	assignment, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	require.NoError(t, err)

	// Assigned cannot jump straight to paused or completed.
	_, err = f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentPaused)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, err = f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// Cancelled is terminal.
	_, err = f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentCancelled)
	require.NoError(t, err)
	_, err = f.svc.UpdateAssignmentStatus(ctx, f.coach.ID, assignment.ID, domain.AssignmentActive)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateAssignmentStatus_AccessDenied(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()
	program := f.createProgram(t, 4)

	assignment, err := f.svc.AssignProgram(ctx, f.coach.ID, program.ID, f.client.ID, time.Time{})
	require.NoError(t, err)

	_, err = f.svc.UpdateAssignmentStatus(ctx, primitive.NewObjectID(), assignment.ID, domain.AssignmentActive)
	assert.ErrorIs(t, err, ErrAssignmentAccessDenied)
}
