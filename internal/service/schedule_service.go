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
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 0 and 6")
	ErrInvalidWeekNumber  = errors.New("week number is outside the program's duration")
	ErrScheduleNotFound   = errors.New("schedule day not found")
	ErrScheduleWrongOwner = errors.New("access denied to modify this program's schedule")
)

type ScheduleService interface {
	// SetDay upserts one (week, day-of-week) -> template assignment and
	// materializes that day's progression rules for the week.
	SetDay(ctx context.Context, coachID, programID primitive.ObjectID, weekNumber, dayOfWeek int, templateID primitive.ObjectID) (primitive.ObjectID, error)
	// AutoFillFromWeek1 copies week 1's day-by-day schedule into weeks
	// 2..durationWeeks, skipping days already scheduled. Re-running never
	// clobbers a coach's manual edits.
	AutoFillFromWeek1(ctx context.Context, coachID, programID primitive.ObjectID) error
	// ReplaceTemplate swaps the template on one schedule day: every rule
	// for that day is deleted, then re-materialized from the new template
	// at its defaults, for that week only.
	ReplaceTemplate(ctx context.Context, coachID, programID, scheduleID, newTemplateID primitive.ObjectID) error
	GetWeek(ctx context.Context, programID primitive.ObjectID, weekNumber int) ([]domain.ScheduleDay, error)
	GetSchedule(ctx context.Context, programID primitive.ObjectID) ([]domain.ScheduleDay, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	programRepo  repository.ProgramRepository
	templateRepo repository.TemplateRepository
	progression  ProgressionService
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	programRepo repository.ProgramRepository,
	templateRepo repository.TemplateRepository,
	progression ProgressionService,
) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		programRepo:  programRepo,
		templateRepo: templateRepo,
		progression:  progression,
	}
}

// ownedProgram loads a program and checks the caller owns it.
func (s *scheduleService) ownedProgram(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrScheduleWrongOwner
	}
	return program, nil
}

// SetDay upserts the schedule row for (program, week, day), then
// materializes progression rules for it. The materialization replaces
// whatever rules were keyed to this row and week, so reassigning a day
// starts it over from the template's defaults.
func (s *scheduleService) SetDay(ctx context.Context, coachID, programID primitive.ObjectID, weekNumber, dayOfWeek int, templateID primitive.ObjectID) (primitive.ObjectID, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return primitive.NilObjectID, ErrInvalidDayOfWeek
	}

	program, err := s.ownedProgram(ctx, coachID, programID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if weekNumber < 1 || weekNumber > program.DurationWeeks {
		return primitive.NilObjectID, ErrInvalidWeekNumber
	}

	if _, err := s.templateRepo.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrTemplateNotFound
		}
		return primitive.NilObjectID, err
	}

	scheduleID, err := s.scheduleRepo.Upsert(ctx, &domain.ScheduleDay{
		ProgramID:  programID,
		WeekNumber: weekNumber,
		DayOfWeek:  dayOfWeek,
		TemplateID: templateID,
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	if err := s.progression.CopyWorkoutToProgram(ctx, programID, scheduleID, templateID, weekNumber); err != nil {
		return primitive.NilObjectID, fmt.Errorf("schedule day saved but rule copy failed: %w", err)
	}
	return scheduleID, nil
}

// AutoFillFromWeek1 walks week 1's scheduled days and repeats them across
// weeks 2..durationWeeks. A day that already has a schedule row for a
// target week was either filled before or set by hand; either way it is
// left alone, which makes re-running this a no-op for those days.
func (s *scheduleService) AutoFillFromWeek1(ctx context.Context, coachID, programID primitive.ObjectID) error {
	program, err := s.ownedProgram(ctx, coachID, programID)
	if err != nil {
		return err
	}

	week1, err := s.scheduleRepo.GetWeek(ctx, programID, 1)
	if err != nil {
		return err
	}

	for week := 2; week <= program.DurationWeeks; week++ {
		for _, sourceDay := range week1 {
			if sourceDay.TemplateID == primitive.NilObjectID {
				continue
			}

			_, err := s.scheduleRepo.GetDay(ctx, programID, week, sourceDay.DayOfWeek)
			if err == nil {
				continue // already scheduled, leave the coach's version
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}

			scheduleID, err := s.scheduleRepo.Upsert(ctx, &domain.ScheduleDay{
				ProgramID:  programID,
				WeekNumber: week,
				DayOfWeek:  sourceDay.DayOfWeek,
				TemplateID: sourceDay.TemplateID,
			})
			if err != nil {
				return err
			}
			if err := s.progression.CopyWorkoutToProgram(ctx, programID, scheduleID, sourceDay.TemplateID, week); err != nil {
				return fmt.Errorf("auto-fill week %d day %d: %w", week, sourceDay.DayOfWeek, err)
			}
		}
	}
	return nil
}

// ReplaceTemplate points an existing schedule day at a different template.
// Old rules are removed before the new ones are written so the two sets
// never coexist.
func (s *scheduleService) ReplaceTemplate(ctx context.Context, coachID, programID, scheduleID, newTemplateID primitive.ObjectID) error {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return err
	}

	day, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	if day.ProgramID != programID {
		return ErrScheduleNotFound
	}

	if _, err := s.templateRepo.GetByID(ctx, newTemplateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	day.TemplateID = newTemplateID
	if _, err := s.scheduleRepo.Upsert(ctx, day); err != nil {
		return err
	}

	if err := s.progression.DeleteProgressionRules(ctx, scheduleID); err != nil {
		return err
	}
	return s.progression.CopyWorkoutToProgram(ctx, programID, scheduleID, newTemplateID, day.WeekNumber)
}

// GetWeek returns the schedule rows for one week.
func (s *scheduleService) GetWeek(ctx context.Context, programID primitive.ObjectID, weekNumber int) ([]domain.ScheduleDay, error) {
	if weekNumber < 1 {
		return nil, ErrInvalidWeekNumber
	}
	return s.scheduleRepo.GetWeek(ctx, programID, weekNumber)
}

// GetSchedule returns every schedule row of a program.
func (s *scheduleService) GetSchedule(ctx context.Context, programID primitive.ObjectID) ([]domain.ScheduleDay, error) {
	return s.scheduleRepo.GetByProgramID(ctx, programID)
}
