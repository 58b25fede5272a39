package service

import (
	"context"
	"sort"
	"time"

	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mirror the
// contract of the mongo implementations, including the sentinel errors
// and the uniqueness rules the real indexes enforce.

var (
	_ repository.UserRepository              = (*memUserRepo)(nil)
	_ repository.ExerciseRepository          = (*memExerciseRepo)(nil)
	_ repository.ProgramRepository           = (*memProgramRepo)(nil)
	_ repository.ProgramAssignmentRepository = (*memAssignmentRepo)(nil)
	_ repository.ProgramProgressRepository   = (*memProgressRepo)(nil)
	_ repository.ScheduleRepository          = (*memScheduleRepo)(nil)
	_ repository.ProgressionRuleRepository   = (*memRuleRepo)(nil)
	_ repository.TemplateRepository          = (*memTemplateRepo)(nil)
	_ repository.WorkoutAssignmentRepository = (*memWorkoutRepo)(nil)
	_ repository.WorkoutSessionRepository    = (*memSessionRepo)(nil)
	_ repository.WorkoutLogRepository        = (*memLogRepo)(nil)
)

// straightSet builds straight-set block params for fixtures.
func straightSet(sets int, reps string, rest int) domain.BlockParams {
	return domain.BlockParams{StraightSet: &domain.StraightSetParams{Sets: sets, Reps: reps, RestSeconds: rest}}
}

type memUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *memUserRepo) put(u *domain.User) *domain.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = u
	return u
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	// Store a detached copy so later caller mutations don't reach the
	// "database", matching the real mongo implementation.
	stored := *user
	r.put(&stored)
	return stored.ID, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *memUserRepo) AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error {
	coach, ok := r.users[coachID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range coach.ClientIDs {
		if id == clientID {
			return nil
		}
	}
	coach.ClientIDs = append(coach.ClientIDs, clientID)
	return nil
}

func (r *memUserRepo) GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.CoachID = &coachID
	return nil
}

type memExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newMemExerciseRepo() *memExerciseRepo {
	return &memExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *memExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.ID.IsZero() {
		exercise.ID = primitive.NewObjectID()
	}
	r.exercises[exercise.ID] = exercise
	return exercise.ID, nil
}

func (r *memExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

func (r *memExerciseRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.CoachID == coachID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = exercise
	return nil
}

func (r *memExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok || e.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type memProgramRepo struct {
	programs map[primitive.ObjectID]*domain.Program
}

func newMemProgramRepo() *memProgramRepo {
	return &memProgramRepo{programs: make(map[primitive.ObjectID]*domain.Program)}
}

func (r *memProgramRepo) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.ID.IsZero() {
		program.ID = primitive.NewObjectID()
	}
	r.programs[program.ID] = program
	return program.ID, nil
}

func (r *memProgramRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *memProgramRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	var out []domain.Program
	for _, p := range r.programs {
		if p.CoachID == coachID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProgramRepo) Update(ctx context.Context, program *domain.Program) error {
	if _, ok := r.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	r.programs[program.ID] = program
	return nil
}

func (r *memProgramRepo) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	p, ok := r.programs[id]
	if !ok || p.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.programs, id)
	return nil
}

type memAssignmentRepo struct {
	assignments map[primitive.ObjectID]*domain.ProgramAssignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[primitive.ObjectID]*domain.ProgramAssignment)}
}

func (r *memAssignmentRepo) Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error) {
	if assignment.Status == domain.AssignmentActive || assignment.Status == domain.AssignmentAssigned {
		for _, a := range r.assignments {
			if a.ClientID == assignment.ClientID && a.ProgramID == assignment.ProgramID &&
				(a.Status == domain.AssignmentActive || a.Status == domain.AssignmentAssigned) {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	if assignment.ID.IsZero() {
		assignment.ID = primitive.NewObjectID()
	}
	r.assignments[assignment.ID] = assignment
	return assignment.ID, nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (r *memAssignmentRepo) GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ProgramAssignment, error) {
	for _, a := range r.assignments {
		if a.ClientID == clientID && a.Status == domain.AssignmentActive {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAssignmentRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

type memProgressRepo struct {
	rows map[primitive.ObjectID]*domain.ProgramProgress
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{rows: make(map[primitive.ObjectID]*domain.ProgramProgress)}
}

func (r *memProgressRepo) Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error) {
	if progress.ID.IsZero() {
		progress.ID = primitive.NewObjectID()
	}
	r.rows[progress.ID] = progress
	return progress.ID, nil
}

func (r *memProgressRepo) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.ProgramProgress, error) {
	for _, p := range r.rows {
		if p.ProgramAssignmentID == assignmentID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProgressRepo) Update(ctx context.Context, progress *domain.ProgramProgress) error {
	if _, ok := r.rows[progress.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *progress
	r.rows[progress.ID] = &copy
	return nil
}

type scheduleKey struct {
	programID  primitive.ObjectID
	weekNumber int
	dayOfWeek  int
}

type memScheduleRepo struct {
	days map[primitive.ObjectID]*domain.ScheduleDay
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{days: make(map[primitive.ObjectID]*domain.ScheduleDay)}
}

func (r *memScheduleRepo) Upsert(ctx context.Context, day *domain.ScheduleDay) (primitive.ObjectID, error) {
	key := scheduleKey{day.ProgramID, day.WeekNumber, day.DayOfWeek}
	for id, existing := range r.days {
		if (scheduleKey{existing.ProgramID, existing.WeekNumber, existing.DayOfWeek}) == key {
			existing.TemplateID = day.TemplateID
			existing.UpdatedAt = time.Now()
			return id, nil
		}
	}
	copy := *day
	copy.ID = primitive.NewObjectID()
	copy.CreatedAt = time.Now()
	r.days[copy.ID] = &copy
	return copy.ID, nil
}

func (r *memScheduleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleDay, error) {
	d, ok := r.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (r *memScheduleRepo) GetDay(ctx context.Context, programID primitive.ObjectID, weekNumber, dayOfWeek int) (*domain.ScheduleDay, error) {
	for _, d := range r.days {
		if d.ProgramID == programID && d.WeekNumber == weekNumber && d.DayOfWeek == dayOfWeek {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memScheduleRepo) GetWeek(ctx context.Context, programID primitive.ObjectID, weekNumber int) ([]domain.ScheduleDay, error) {
	var out []domain.ScheduleDay
	for _, d := range r.days {
		if d.ProgramID == programID && d.WeekNumber == weekNumber {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (r *memScheduleRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ScheduleDay, error) {
	var out []domain.ScheduleDay
	for _, d := range r.days {
		if d.ProgramID == programID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber < out[j].WeekNumber
		}
		return out[i].DayOfWeek < out[j].DayOfWeek
	})
	return out, nil
}

func (r *memScheduleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.days[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.days, id)
	return nil
}

type memRuleRepo struct {
	rules map[primitive.ObjectID]*domain.ProgressionRule
}

func newMemRuleRepo() *memRuleRepo {
	return &memRuleRepo{rules: make(map[primitive.ObjectID]*domain.ProgressionRule)}
}

func (r *memRuleRepo) ReplaceForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int, rules []domain.ProgressionRule) error {
	for id, rule := range r.rules {
		if rule.ScheduleID == scheduleID && rule.WeekNumber == weekNumber {
			delete(r.rules, id)
		}
	}
	for i := range rules {
		copy := rules[i]
		copy.ID = primitive.NewObjectID()
		copy.CreatedAt = time.Now()
		r.rules[copy.ID] = &copy
	}
	return nil
}

func (r *memRuleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressionRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rule
	return &copy, nil
}

func (r *memRuleRepo) GetForWeek(ctx context.Context, scheduleID primitive.ObjectID, weekNumber int) ([]domain.ProgressionRule, error) {
	var out []domain.ProgressionRule
	for _, rule := range r.rules {
		if rule.ScheduleID == scheduleID && rule.WeekNumber == weekNumber {
			out = append(out, *rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockKey < out[j].BlockKey })
	return out, nil
}

func (r *memRuleRepo) Update(ctx context.Context, rule *domain.ProgressionRule) error {
	if _, ok := r.rules[rule.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *rule
	copy.UpdatedAt = time.Now()
	r.rules[rule.ID] = &copy
	return nil
}

func (r *memRuleRepo) DeleteForSchedule(ctx context.Context, scheduleID primitive.ObjectID) error {
	for id, rule := range r.rules {
		if rule.ScheduleID == scheduleID {
			delete(r.rules, id)
		}
	}
	return nil
}

type memTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.WorkoutTemplate
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[primitive.ObjectID]*domain.WorkoutTemplate)}
}

func (r *memTemplateRepo) Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	r.templates[template.ID] = template
	return template.ID, nil
}

func (r *memTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (r *memTemplateRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	var out []domain.WorkoutTemplate
	for _, t := range r.templates {
		if t.CoachID == coachID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTemplateRepo) Update(ctx context.Context, template *domain.WorkoutTemplate) error {
	if _, ok := r.templates[template.ID]; !ok {
		return repository.ErrNotFound
	}
	r.templates[template.ID] = template
	return nil
}

func (r *memTemplateRepo) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	t, ok := r.templates[id]
	if !ok || t.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

type memWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.WorkoutAssignment
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.WorkoutAssignment)}
}

func (r *memWorkoutRepo) Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	if assignment.ID.IsZero() {
		assignment.ID = primitive.NewObjectID()
	}
	r.workouts[assignment.ID] = assignment
	return assignment.ID, nil
}

func (r *memWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *w
	return &copy, nil
}

func (r *memWorkoutRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.WorkoutStatus) error {
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.Status = status
	return nil
}

// memSessionRepo enforces the one-in-progress-session-per-program-day
// rule the way the partial unique index does. schemaOutdated simulates a
// store that predates program-day tagging; createErr forces the next
// Create to fail with the given error without inserting.
type memSessionRepo struct {
	sessions       map[primitive.ObjectID]*domain.WorkoutSession
	schemaOutdated bool
	createErr      error
	beforeCreate   func() // runs once before the next Create's uniqueness check
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook()
	}
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return primitive.NilObjectID, err
	}
	if session.Status == domain.WorkoutInProgress && !session.ProgramDay.IsZero() {
		for _, s := range r.sessions {
			if s.ClientID == session.ClientID && s.Status == domain.WorkoutInProgress && s.ProgramDay == session.ProgramDay {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	r.sessions[session.ID] = session
	return session.ID, nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *memSessionRepo) FindInProgressByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutSession, error) {
	if r.schemaOutdated {
		return nil, repository.ErrSchemaOutdated
	}
	for _, s := range r.sessions {
		if s.ClientID == clientID && s.Status == domain.WorkoutInProgress && s.ProgramDay == ref {
			copy := *s
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) FindInProgressByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutSession, error) {
	for _, s := range r.sessions {
		if s.ClientID == clientID && s.Status == domain.WorkoutInProgress && s.TemplateID == templateID {
			copy := *s
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) Complete(ctx context.Context, id primitive.ObjectID) error {
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.Status = domain.WorkoutCompleted
	s.CompletedAt = &now
	return nil
}

// memLogRepo's schemaOutdated mirrors the session repo knob: program-day
// lookups fail as pre-migration, forcing the template fallback.
type memLogRepo struct {
	logs           map[primitive.ObjectID]*domain.WorkoutLog
	schemaOutdated bool
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{logs: make(map[primitive.ObjectID]*domain.WorkoutLog)}
}

func (r *memLogRepo) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	r.logs[log.ID] = log
	return log.ID, nil
}

func (r *memLogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *l
	return &copy, nil
}

func (r *memLogRepo) FindIncompleteByProgramDay(ctx context.Context, clientID primitive.ObjectID, ref domain.ProgramDayRef) (*domain.WorkoutLog, error) {
	if r.schemaOutdated {
		return nil, repository.ErrSchemaOutdated
	}
	for _, l := range r.logs {
		if l.ClientID == clientID && l.CompletedAt == nil && l.ProgramDay == ref {
			copy := *l
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memLogRepo) FindIncompleteByTemplate(ctx context.Context, clientID, templateID primitive.ObjectID) (*domain.WorkoutLog, error) {
	for _, l := range r.logs {
		if l.ClientID == clientID && l.CompletedAt == nil && l.TemplateID == templateID {
			copy := *l
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memLogRepo) AppendSetLog(ctx context.Context, id primitive.ObjectID, set domain.WorkoutSetLog) error {
	l, ok := r.logs[id]
	if !ok || l.CompletedAt != nil {
		return repository.ErrNotFound
	}
	if set.LoggedAt.IsZero() {
		set.LoggedAt = time.Now()
	}
	l.SetLogs = append(l.SetLogs, set)
	return nil
}

func (r *memLogRepo) Complete(ctx context.Context, id primitive.ObjectID) error {
	l, ok := r.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	l.CompletedAt = &now
	return nil
}
