package api

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutDayHandler holds the workout-day service dependency.
type WorkoutDayHandler struct {
	workoutDayService service.WorkoutDayService
}

// NewWorkoutDayHandler creates a new WorkoutDayHandler.
func NewWorkoutDayHandler(workoutDayService service.WorkoutDayService) *WorkoutDayHandler {
	return &WorkoutDayHandler{workoutDayService: workoutDayService}
}

// --- DTOs ---

// StartWorkoutDayRequest optionally names the client to start for; it
// defaults to the caller. Coaches may start on behalf of clients they
// manage.
type StartWorkoutDayRequest struct {
	ClientID string `json:"client_id"`
}

type StartWorkoutDayResponse struct {
	WorkoutAssignmentID string  `json:"workout_assignment_id"`
	TemplateID          string  `json:"template_id"`
	WeekNumber          int     `json:"week_number"`
	DayPosition         int     `json:"day_position"`
	PositionLabel       string  `json:"position_label"`
	ProgramAssignmentID string  `json:"program_assignment_id"`
	ProgramScheduleID   string  `json:"program_schedule_id"`
	ReusedExisting      bool    `json:"reused_existing"`
	ReuseReason         *string `json:"reuse_reason"`
	SessionID           *string `json:"session_id,omitempty"`
	LogID               *string `json:"log_id,omitempty"`
	MigrationNeeded     *bool   `json:"migration_needed,omitempty"`
}

// LogSetRequest records one performed set. ClientID follows the same
// convention as StartWorkoutDayRequest: absent means the caller.
type LogSetRequest struct {
	ClientID   string   `json:"client_id"`
	ExerciseID string   `json:"exercise_id" binding:"required"`
	BlockKey   int      `json:"block_key"`
	SetNumber  int      `json:"set_number" binding:"required,min=1"`
	Reps       int      `json:"reps"`
	WeightKg   float64  `json:"weight_kg"`
	RPE        *float64 `json:"rpe"`
}

type LogSetResponse struct {
	LogID string `json:"log_id"`
}

type ProgramProgressResponse struct {
	ProgramAssignmentID string `json:"program_assignment_id"`
	CurrentWeekIndex    int    `json:"current_week_index"`
	CurrentDayIndex     int    `json:"current_day_index"`
	IsCompleted         bool   `json:"is_completed"`
}

// --- Handler Methods ---

// StartWorkoutDay resolves the caller's (or named client's) current
// program day and idempotently starts or resumes its workout.
func (h *WorkoutDayHandler) StartWorkoutDay(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	// The body is optional entirely.
	var req StartWorkoutDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	clientID := caller.ID
	if req.ClientID != "" {
		clientID, err = primitive.ObjectIDFromHex(req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
			return
		}
	}

	result, err := h.workoutDayService.StartFromProgress(c.Request.Context(), caller, clientID)
	if err != nil {
		h.writeWorkoutDayError(c, err, "Failed to start workout day.")
		return
	}

	resp := StartWorkoutDayResponse{
		WorkoutAssignmentID: result.WorkoutAssignmentID.Hex(),
		TemplateID:          result.TemplateID.Hex(),
		WeekNumber:          result.WeekNumber,
		DayPosition:         result.DayPosition,
		PositionLabel:       result.PositionLabel,
		ProgramAssignmentID: result.ProgramAssignmentID.Hex(),
		ProgramScheduleID:   result.ProgramScheduleID.Hex(),
		ReusedExisting:      result.ReusedExisting,
	}
	if result.ReuseReason != "" {
		reason := result.ReuseReason
		resp.ReuseReason = &reason
	}
	if result.SessionID != nil {
		sessionID := result.SessionID.Hex()
		resp.SessionID = &sessionID
	}
	if result.LogID != nil {
		logID := result.LogID.Hex()
		resp.LogID = &logID
	}
	if result.MigrationNeeded {
		needed := true
		resp.MigrationNeeded = &needed
	}

	c.JSON(http.StatusOK, resp)
}

// LogSet appends one performed set to the unfinished log for the current
// program day.
func (h *WorkoutDayHandler) LogSet(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID := caller.ID
	if req.ClientID != "" {
		clientID, err = primitive.ObjectIDFromHex(req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
			return
		}
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	set := domain.WorkoutSetLog{
		ExerciseID: exerciseID,
		BlockKey:   req.BlockKey,
		SetNumber:  req.SetNumber,
		Reps:       req.Reps,
		WeightKg:   req.WeightKg,
		RPE:        req.RPE,
	}
	logID, err := h.workoutDayService.LogSet(c.Request.Context(), caller, clientID, set)
	if err != nil {
		h.writeWorkoutDayError(c, err, "Failed to log set.")
		return
	}

	c.JSON(http.StatusOK, LogSetResponse{LogID: logID.Hex()})
}

// CompleteWorkoutDay finishes the current day's workout and advances the
// client's progress pointer.
func (h *WorkoutDayHandler) CompleteWorkoutDay(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req StartWorkoutDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	clientID := caller.ID
	if req.ClientID != "" {
		clientID, err = primitive.ObjectIDFromHex(req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
			return
		}
	}

	progress, err := h.workoutDayService.CompleteWorkoutDay(c.Request.Context(), caller, clientID)
	if err != nil {
		h.writeWorkoutDayError(c, err, "Failed to complete workout day.")
		return
	}

	c.JSON(http.StatusOK, ProgramProgressResponse{
		ProgramAssignmentID: progress.ProgramAssignmentID.Hex(),
		CurrentWeekIndex:    progress.CurrentWeekIndex,
		CurrentDayIndex:     progress.CurrentDayIndex,
		IsCompleted:         progress.IsCompleted,
	})
}

func (h *WorkoutDayHandler) writeWorkoutDayError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrWorkoutOwnership):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrProgramCompleted):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrProgramNotActive):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidProgramConfig):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoWorkoutInProgress):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSetLog):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
