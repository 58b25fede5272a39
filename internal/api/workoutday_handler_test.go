package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubWorkoutDayService returns canned results and records the arguments
// it was called with.
type stubWorkoutDayService struct {
	startResult *service.StartResult
	startErr    error
	progress    *domain.ProgramProgress
	completeErr error

	logID  primitive.ObjectID
	logErr error

	gotCaller   *domain.User
	gotClientID primitive.ObjectID
	gotSet      domain.WorkoutSetLog
}

func (s *stubWorkoutDayService) StartFromProgress(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*service.StartResult, error) {
	s.gotCaller = caller
	s.gotClientID = clientID
	return s.startResult, s.startErr
}

func (s *stubWorkoutDayService) LogSet(ctx context.Context, caller *domain.User, clientID primitive.ObjectID, set domain.WorkoutSetLog) (primitive.ObjectID, error) {
	s.gotCaller = caller
	s.gotClientID = clientID
	s.gotSet = set
	return s.logID, s.logErr
}

func (s *stubWorkoutDayService) CompleteWorkoutDay(ctx context.Context, caller *domain.User, clientID primitive.ObjectID) (*domain.ProgramProgress, error) {
	s.gotCaller = caller
	s.gotClientID = clientID
	return s.progress, s.completeErr
}

func workoutDayRouter(stub *stubWorkoutDayService, caller *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewWorkoutDayHandler(stub)
	auth := func(c *gin.Context) {
		c.Set(ContextUserIDKey, caller.ID.Hex())
		c.Set(ContextUserRoleKey, caller.Role)
		c.Next()
	}
	group := router.Group("/api/v1", auth)
	group.POST("/workout-day/start", handler.StartWorkoutDay)
	group.POST("/workout-day/log-set", handler.LogSet)
	group.POST("/workout-day/complete", handler.CompleteWorkoutDay)
	return router
}

func TestStartWorkoutDay_ResponseShape(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	sessionID := primitive.NewObjectID()
	logID := primitive.NewObjectID()
	stub := &stubWorkoutDayService{
		startResult: &service.StartResult{
			WorkoutAssignmentID: primitive.NewObjectID(),
			TemplateID:          primitive.NewObjectID(),
			WeekNumber:          2,
			DayPosition:         3,
			PositionLabel:       "Week 2 · Wednesday",
			ProgramAssignmentID: primitive.NewObjectID(),
			ProgramScheduleID:   primitive.NewObjectID(),
			SessionID:           &sessionID,
			LogID:               &logID,
		},
	}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/start", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller.ID, stub.gotClientID) // missing body defaults to the caller

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, stub.startResult.WorkoutAssignmentID.Hex(), body["workout_assignment_id"])
	assert.Equal(t, float64(2), body["week_number"])
	assert.Equal(t, float64(3), body["day_position"])
	assert.Equal(t, "Week 2 · Wednesday", body["position_label"])
	assert.Equal(t, false, body["reused_existing"])
	assert.Nil(t, body["reuse_reason"])
	assert.Equal(t, sessionID.Hex(), body["session_id"])
	assert.Equal(t, logID.Hex(), body["log_id"])
	// Healthy stores never surface migration fields.
	_, present := body["migration_needed"]
	assert.False(t, present)
}

func TestStartWorkoutDay_ReusedWithMigrationFlag(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	stub := &stubWorkoutDayService{
		startResult: &service.StartResult{
			WorkoutAssignmentID: primitive.NewObjectID(),
			TemplateID:          primitive.NewObjectID(),
			WeekNumber:          1,
			PositionLabel:       "Week 1 · Sunday",
			ProgramAssignmentID: primitive.NewObjectID(),
			ProgramScheduleID:   primitive.NewObjectID(),
			ReusedExisting:      true,
			ReuseReason:         service.ReuseInProgressSessionByTemplate,
			MigrationNeeded:     true,
		},
	}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/start", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["reused_existing"])
	assert.Equal(t, service.ReuseInProgressSessionByTemplate, body["reuse_reason"])
	assert.Equal(t, true, body["migration_needed"])
}

func TestStartWorkoutDay_ClientIDFromBody(t *testing.T) {
	coach := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleCoach}
	clientID := primitive.NewObjectID()
	stub := &stubWorkoutDayService{
		startResult: &service.StartResult{
			WorkoutAssignmentID: primitive.NewObjectID(),
			TemplateID:          primitive.NewObjectID(),
			WeekNumber:          1,
			ProgramAssignmentID: primitive.NewObjectID(),
			ProgramScheduleID:   primitive.NewObjectID(),
		},
	}
	router := workoutDayRouter(stub, coach)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/start",
		strings.NewReader(`{"client_id":"`+clientID.Hex()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clientID, stub.gotClientID)
	assert.Equal(t, coach.ID, stub.gotCaller.ID)
}

func TestStartWorkoutDay_ErrorMapping(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"ownership", service.ErrWorkoutOwnership, http.StatusForbidden},
		{"completed", service.ErrProgramCompleted, http.StatusConflict},
		{"not active", service.ErrProgramNotActive, http.StatusNotFound},
		{"bad config", service.ErrInvalidProgramConfig, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubWorkoutDayService{startErr: tc.err}
			router := workoutDayRouter(stub, caller)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/start", nil)
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCompleteWorkoutDay(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	stub := &stubWorkoutDayService{
		progress: &domain.ProgramProgress{
			ProgramAssignmentID: primitive.NewObjectID(),
			CurrentWeekIndex:    1,
			CurrentDayIndex:     3,
		},
	}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/complete", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["current_week_index"])
	assert.Equal(t, float64(3), body["current_day_index"])
	assert.Equal(t, false, body["is_completed"])
}

func TestCompleteWorkoutDay_NothingInProgress(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	stub := &stubWorkoutDayService{completeErr: service.ErrNoWorkoutInProgress}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/complete", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogSet_RecordsSetForCaller(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	exerciseID := primitive.NewObjectID()
	logID := primitive.NewObjectID()
	stub := &stubWorkoutDayService{logID: logID}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/log-set",
		strings.NewReader(`{"exercise_id":"`+exerciseID.Hex()+`","block_key":1,"set_number":2,"reps":8,"weight_kg":82.5,"rpe":9}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller.ID, stub.gotClientID)
	assert.Equal(t, exerciseID, stub.gotSet.ExerciseID)
	assert.Equal(t, 1, stub.gotSet.BlockKey)
	assert.Equal(t, 2, stub.gotSet.SetNumber)
	assert.Equal(t, 8, stub.gotSet.Reps)
	assert.Equal(t, 82.5, stub.gotSet.WeightKg)
	require.NotNil(t, stub.gotSet.RPE)
	assert.Equal(t, 9.0, *stub.gotSet.RPE)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, logID.Hex(), body["log_id"])
}

func TestLogSet_Validation(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"missing exercise", `{"set_number":1}`},
		{"zero set number", `{"exercise_id":"` + primitive.NewObjectID().Hex() + `","set_number":0}`},
		{"malformed exercise id", `{"exercise_id":"nope","set_number":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubWorkoutDayService{}
			router := workoutDayRouter(stub, caller)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/log-set", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogSet_NothingInProgress(t *testing.T) {
	caller := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	stub := &stubWorkoutDayService{logErr: service.ErrNoWorkoutInProgress}
	router := workoutDayRouter(stub, caller)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workout-day/log-set",
		strings.NewReader(`{"exercise_id":"`+primitive.NewObjectID().Hex()+`","set_number":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
