package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutOwnership     = errors.New("not allowed to act on this client's workouts")
	ErrProgramCompleted     = errors.New("program is already completed")
	ErrProgramNotActive     = errors.New("client has no active program")
	ErrInvalidProgramConfig = errors.New("current program day is missing its schedule or template")
	ErrNoWorkoutInProgress  = errors.New("no workout in progress for the current program day")
	ErrInvalidSetLog        = errors.New("set log entry requires an exercise, a block key and a set number")
)

// Reuse reasons reported by StartFromProgress.
const (
	ReuseInProgressSessionByProgramDay = "in_progress_session_by_program_day"
	ReuseIncompleteLogByProgramDay     = "incomplete_log_by_program_day"
	ReuseInProgressSessionByTemplate   = "in_progress_session_by_template"
	ReuseIncompleteLogByTemplate       = "incomplete_log_by_template"
)

// StartResult describes the workout the client should be doing right now.
// SessionID and LogID are nil when the corresponding companion record
// could not be created or was not part of the reused state.
type StartResult struct {
	WorkoutAssignmentID primitive.ObjectID
	TemplateID          primitive.ObjectID
	WeekNumber          int // 1-based
	DayPosition         int // day of week, 0-6
	PositionLabel       string
	ProgramAssignmentID primitive.ObjectID
	ProgramScheduleID   primitive.ObjectID
	ReusedExisting      bool
	ReuseReason         string
	SessionID           *primitive.ObjectID
	LogID               *primitive.ObjectID
	MigrationNeeded     bool
}

type WorkoutDayService interface {
	// StartFromProgress resolves the client's current program day and
	// idempotently starts or resumes its workout. Calling it twice with
	// no state change in between returns the same assignment both times.
	StartFromProgress(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*StartResult, error)
	// LogSet appends one performed set to the unfinished log of the
	// client's current program day and returns that log's id.
	LogSet(ctx context.Context, caller *domain.User, clientID primitive.ObjectID, set domain.WorkoutSetLog) (primitive.ObjectID, error)
	// CompleteWorkoutDay finishes the in-progress workout for the current
	// program day and advances the progress pointer to the next scheduled
	// day, or marks the program completed when none remains.
	CompleteWorkoutDay(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*domain.ProgramProgress, error)
}

// workoutDayService implements the WorkoutDayService interface.
type workoutDayService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.ProgramAssignmentRepository
	progressRepo   repository.ProgramProgressRepository
	scheduleRepo   repository.ScheduleRepository
	programRepo    repository.ProgramRepository
	templateRepo   repository.TemplateRepository
	workoutRepo    repository.WorkoutAssignmentRepository
	sessionRepo    repository.WorkoutSessionRepository
	logRepo        repository.WorkoutLogRepository
	logger         *logrus.Logger
}

// NewWorkoutDayService creates a new instance of workoutDayService.
func NewWorkoutDayService(
	userRepo repository.UserRepository,
	assignmentRepo repository.ProgramAssignmentRepository,
	progressRepo repository.ProgramProgressRepository,
	scheduleRepo repository.ScheduleRepository,
	programRepo repository.ProgramRepository,
	templateRepo repository.TemplateRepository,
	workoutRepo repository.WorkoutAssignmentRepository,
	sessionRepo repository.WorkoutSessionRepository,
	logRepo repository.WorkoutLogRepository,
	logger *logrus.Logger,
) WorkoutDayService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &workoutDayService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		scheduleRepo:   scheduleRepo,
		programRepo:    programRepo,
		templateRepo:   templateRepo,
		workoutRepo:    workoutRepo,
		sessionRepo:    sessionRepo,
		logRepo:        logRepo,
		logger:         logger,
	}
}

// authorize checks the caller may act on the client's workouts: clients
// act on themselves, coaches act on clients they manage. The self check
// needs no reads at all.
func (s *workoutDayService) authorize(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) error {
	if caller == nil || clientID == primitive.NilObjectID {
		return ErrWorkoutOwnership
	}
	if caller.ID == clientID {
		return nil
	}
	if caller.Role != domain.RoleCoach {
		return ErrWorkoutOwnership
	}
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutOwnership
		}
		return err
	}
	if client.CoachID == nil || *client.CoachID != caller.ID {
		return ErrWorkoutOwnership
	}
	return nil
}

// programDay is the resolved "what day is it" answer for one client.
type programDay struct {
	assignment *domain.ProgramAssignment
	day        *domain.ScheduleDay
	weekNumber int
	dayOfWeek  int
	ref        domain.ProgramDayRef
}

// resolveProgramDay turns the client's progress pointer into the concrete
// schedule row they should be training from right now.
func (s *workoutDayService) resolveProgramDay(ctx context.Context, clientID primitive.ObjectID) (*programDay, *domain.ProgramProgress, error) {
	assignment, err := s.assignmentRepo.GetActiveByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, s.classifyInactive(ctx, clientID)
		}
		return nil, nil, err
	}

	progress, err := s.progressRepo.GetByAssignmentID(ctx, assignment.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidProgramConfig
		}
		return nil, nil, err
	}
	if progress.IsCompleted {
		return nil, nil, ErrProgramCompleted
	}

	weekNumber := progress.CurrentWeekIndex + 1
	dayOfWeek := progress.CurrentDayIndex

	day, err := s.scheduleRepo.GetDay(ctx, assignment.ProgramID, weekNumber, dayOfWeek)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidProgramConfig
		}
		return nil, nil, err
	}
	if day.TemplateID == primitive.NilObjectID || day.ID == primitive.NilObjectID {
		return nil, nil, ErrInvalidProgramConfig
	}

	return &programDay{
		assignment: assignment,
		day:        day,
		weekNumber: weekNumber,
		dayOfWeek:  dayOfWeek,
		ref: domain.ProgramDayRef{
			ProgramAssignmentID: assignment.ID,
			ProgramScheduleID:   day.ID,
		},
	}, progress, nil
}

// classifyInactive decides between "already completed" and "nothing
// active" when no active assignment exists, so callers can tell a
// finished program apart from a missing one.
func (s *workoutDayService) classifyInactive(ctx context.Context, clientID primitive.ObjectID) error {
	assignments, err := s.assignmentRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.Status == domain.AssignmentCompleted {
			return ErrProgramCompleted
		}
	}
	return ErrProgramNotActive
}

// StartFromProgress implements the start-from-progress flow. The
// idempotency key is (client, program assignment, schedule row), never
// the template, because templates recur across days and weeks.
func (s *workoutDayService) StartFromProgress(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*StartResult, error) {
	if err := s.authorize(ctx, caller, clientID); err != nil {
		return nil, err
	}

	pd, _, err := s.resolveProgramDay(ctx, clientID)
	if err != nil {
		return nil, err
	}

	result := &StartResult{
		TemplateID:          pd.day.TemplateID,
		WeekNumber:          pd.weekNumber,
		DayPosition:         pd.dayOfWeek,
		PositionLabel:       pd.day.PositionLabel(),
		ProgramAssignmentID: pd.assignment.ID,
		ProgramScheduleID:   pd.day.ID,
	}

	// Reuse an in-progress session for this exact program day.
	session, err := s.sessionRepo.FindInProgressByProgramDay(ctx, clientID, pd.ref)
	switch {
	case err == nil:
		result.WorkoutAssignmentID = session.WorkoutAssignmentID
		result.ReusedExisting = true
		result.ReuseReason = ReuseInProgressSessionByProgramDay
		result.SessionID = &session.ID
		return result, nil
	case errors.Is(err, repository.ErrSchemaOutdated):
		// Pre-migration store: fall back to template-level matching,
		// which can conflate days that share a template, and say so.
		result.MigrationNeeded = true
		session, err = s.sessionRepo.FindInProgressByTemplate(ctx, clientID, pd.day.TemplateID)
		if err == nil {
			result.WorkoutAssignmentID = session.WorkoutAssignmentID
			result.ReusedExisting = true
			result.ReuseReason = ReuseInProgressSessionByTemplate
			result.SessionID = &session.ID
			return result, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	// No session; an unfinished log still identifies the workout.
	log, err := s.findIncompleteLog(ctx, clientID, pd, result.MigrationNeeded)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if log != nil {
		result.WorkoutAssignmentID = log.WorkoutAssignmentID
		result.ReusedExisting = true
		if result.MigrationNeeded {
			result.ReuseReason = ReuseIncompleteLogByTemplate
		} else {
			result.ReuseReason = ReuseIncompleteLogByProgramDay
		}
		result.LogID = &log.ID
		return result, nil
	}

	return s.createWorkout(ctx, clientID, pd, result)
}

func (s *workoutDayService) findIncompleteLog(ctx context.Context, clientID primitive.ObjectID, pd *programDay, degraded bool) (*domain.WorkoutLog, error) {
	if degraded {
		return s.logRepo.FindIncompleteByTemplate(ctx, clientID, pd.day.TemplateID)
	}
	return s.logRepo.FindIncompleteByProgramDay(ctx, clientID, pd.ref)
}

// LogSet records one performed set against the unfinished log for the
// client's current program day. Sets only land on the workout the
// progress pointer says the client is doing; with no such log in flight
// there is nothing to append to and the call fails.
func (s *workoutDayService) LogSet(ctx context.Context, caller *domain.User, clientID primitive.ObjectID, set domain.WorkoutSetLog) (primitive.ObjectID, error) {
	if err := s.authorize(ctx, caller, clientID); err != nil {
		return primitive.NilObjectID, err
	}
	if set.ExerciseID == primitive.NilObjectID || set.BlockKey < 0 || set.SetNumber < 1 {
		return primitive.NilObjectID, ErrInvalidSetLog
	}

	pd, _, err := s.resolveProgramDay(ctx, clientID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	log, err := s.findIncompleteLog(ctx, clientID, pd, false)
	if errors.Is(err, repository.ErrSchemaOutdated) {
		log, err = s.findIncompleteLog(ctx, clientID, pd, true)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrNoWorkoutInProgress
		}
		return primitive.NilObjectID, err
	}

	set.LoggedAt = time.Now()
	if err := s.logRepo.AppendSetLog(ctx, log.ID, set); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrNoWorkoutInProgress
		}
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

// createWorkout is the create path of StartFromProgress: a workout
// assignment, then best-effort session and log companions. The assignment
// is the durable record; a failed session or log insert does not fail the
// start, the companions get recreated on a later attempt.
func (s *workoutDayService) createWorkout(ctx context.Context, clientID primitive.ObjectID, pd *programDay, result *StartResult) (*StartResult, error) {
	template, err := s.templateRepo.GetByID(ctx, pd.day.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidProgramConfig
		}
		return nil, err
	}

	now := time.Now()
	workout := &domain.WorkoutAssignment{
		ClientID:   clientID,
		CoachID:    pd.assignment.CoachID,
		TemplateID: template.ID,
		Name:       fmt.Sprintf("%s (%s)", template.Name, pd.day.PositionLabel()),
		Date:       now,
		Status:     domain.WorkoutAssigned,
		ProgramDay: pd.ref,
	}
	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	result.WorkoutAssignmentID = workoutID

	session := &domain.WorkoutSession{
		WorkoutAssignmentID: workoutID,
		ClientID:            clientID,
		TemplateID:          template.ID,
		Status:              domain.WorkoutInProgress,
		ProgramDay:          pd.ref,
		StartedAt:           now,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	switch {
	case err == nil:
		result.SessionID = &sessionID
	case errors.Is(err, repository.ErrConflict):
		// A concurrent start won the race; its session is the truth.
		winner, findErr := s.sessionRepo.FindInProgressByProgramDay(ctx, clientID, pd.ref)
		if findErr == nil {
			result.WorkoutAssignmentID = winner.WorkoutAssignmentID
			result.ReusedExisting = true
			result.ReuseReason = ReuseInProgressSessionByProgramDay
			result.SessionID = &winner.ID
			return result, nil
		}
		s.logger.WithError(findErr).Warn("lost start race but could not read winning session")
	default:
		s.logger.WithError(err).WithField("workoutAssignmentId", workoutID.Hex()).
			Warn("workout session creation failed, assignment remains usable")
	}

	workoutLog := &domain.WorkoutLog{
		WorkoutAssignmentID: result.WorkoutAssignmentID,
		ClientID:            clientID,
		TemplateID:          template.ID,
		ProgramDay:          pd.ref,
		StartedAt:           now,
	}
	logID, err := s.logRepo.Create(ctx, workoutLog)
	if err != nil {
		s.logger.WithError(err).WithField("workoutAssignmentId", result.WorkoutAssignmentID.Hex()).
			Warn("workout log creation failed, assignment remains usable")
	} else {
		result.LogID = &logID
	}

	return result, nil
}

// CompleteWorkoutDay closes out the current program day and moves the
// progress pointer forward.
func (s *workoutDayService) CompleteWorkoutDay(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*domain.ProgramProgress, error) {
	if err := s.authorize(ctx, caller, clientID); err != nil {
		return nil, err
	}

	pd, progress, err := s.resolveProgramDay(ctx, clientID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindInProgressByProgramDay(ctx, clientID, pd.ref)
	if err != nil {
		if errors.Is(err, repository.ErrSchemaOutdated) {
			session, err = s.sessionRepo.FindInProgressByTemplate(ctx, clientID, pd.day.TemplateID)
		}
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNoWorkoutInProgress
			}
			return nil, err
		}
	}

	if err := s.sessionRepo.Complete(ctx, session.ID); err != nil {
		return nil, err
	}
	if err := s.workoutRepo.UpdateStatus(ctx, session.WorkoutAssignmentID, domain.WorkoutCompleted); err != nil {
		s.logger.WithError(err).Warn("could not mark workout assignment completed")
	}

	workoutLog, err := s.findIncompleteLog(ctx, clientID, pd, false)
	if err == nil {
		if err := s.logRepo.Complete(ctx, workoutLog.ID); err != nil {
			s.logger.WithError(err).Warn("could not stamp workout log completion")
		}
	} else if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrSchemaOutdated) {
		return nil, err
	}

	return s.advanceProgress(ctx, pd, progress)
}

// advanceProgress moves the pointer to the next scheduled day: the next
// scheduled day-of-week within the current week, else the first scheduled
// day of the next non-empty week. Running out of weeks completes the
// program.
func (s *workoutDayService) advanceProgress(ctx context.Context, pd *programDay, progress *domain.ProgramProgress) (*domain.ProgramProgress, error) {
	program, err := s.programRepo.GetByID(ctx, pd.assignment.ProgramID)
	if err != nil {
		return nil, err
	}

	nextWeek, nextDay, found, err := s.nextScheduledDay(ctx, program, pd.weekNumber, pd.dayOfWeek)
	if err != nil {
		return nil, err
	}

	if !found {
		progress.IsCompleted = true
		if err := s.progressRepo.Update(ctx, progress); err != nil {
			return nil, err
		}
		if err := s.assignmentRepo.UpdateStatus(ctx, pd.assignment.ID, domain.AssignmentCompleted); err != nil {
			return nil, err
		}
		return progress, nil
	}

	progress.CurrentWeekIndex = nextWeek - 1
	progress.CurrentDayIndex = nextDay
	if err := s.progressRepo.Update(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// nextScheduledDay scans forward from (weekNumber, dayOfWeek) for the next
// schedule row carrying a template.
func (s *workoutDayService) nextScheduledDay(ctx context.Context, program *domain.Program, weekNumber, dayOfWeek int) (int, int, bool, error) {
	for week := weekNumber; week <= program.DurationWeeks; week++ {
		days, err := s.scheduleRepo.GetWeek(ctx, program.ID, week)
		if err != nil {
			return 0, 0, false, err
		}
		floor := -1
		if week == weekNumber {
			floor = dayOfWeek
		}
		best := -1
		for _, d := range days {
			if d.TemplateID == primitive.NilObjectID {
				continue
			}
			if d.DayOfWeek > floor && (best == -1 || d.DayOfWeek < best) {
				best = d.DayOfWeek
			}
		}
		if best != -1 {
			return week, best, true, nil
		}
	}
	return 0, 0, false, nil
}
