package api

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/service"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler holds the schedule and progression service dependencies.
type ScheduleHandler struct {
	scheduleService    service.ScheduleService
	progressionService service.ProgressionService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, progressionService service.ProgressionService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService:    scheduleService,
		progressionService: progressionService,
	}
}

// --- DTOs ---

type SetDayRequest struct {
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
	DayOfWeek  *int   `json:"dayOfWeek" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
}

type ReplaceTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

type ScheduleDayResponse struct {
	ID            string    `json:"id"`
	ProgramID     string    `json:"programId"`
	WeekNumber    int       `json:"weekNumber"`
	DayOfWeek     int       `json:"dayOfWeek"`
	TemplateID    string    `json:"templateId"`
	PositionLabel string    `json:"positionLabel"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type UpdateRuleRequest struct {
	Params domain.BlockParams `json:"params" binding:"required"`
}

type ReplaceExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type ProgressionRuleResponse struct {
	ID            string             `json:"id"`
	ProgramID     string             `json:"programId"`
	ScheduleID    string             `json:"scheduleId"`
	WeekNumber    int                `json:"weekNumber"`
	BlockKey      int                `json:"blockKey"`
	ExerciseID    string             `json:"exerciseId"`
	BlockType     domain.BlockType   `json:"blockType"`
	Params        domain.BlockParams `json:"params"`
	IsPlaceholder bool               `json:"isPlaceholder"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// MapScheduleDayToResponse converts a domain.ScheduleDay to its DTO.
func MapScheduleDayToResponse(d *domain.ScheduleDay) ScheduleDayResponse {
	if d == nil {
		return ScheduleDayResponse{}
	}
	return ScheduleDayResponse{
		ID:            d.ID.Hex(),
		ProgramID:     d.ProgramID.Hex(),
		WeekNumber:    d.WeekNumber,
		DayOfWeek:     d.DayOfWeek,
		TemplateID:    d.TemplateID.Hex(),
		PositionLabel: d.PositionLabel(),
		UpdatedAt:     d.UpdatedAt,
	}
}

// MapRuleToResponse converts a domain.ProgressionRule to its DTO.
func MapRuleToResponse(r *domain.ProgressionRule) ProgressionRuleResponse {
	if r == nil {
		return ProgressionRuleResponse{}
	}
	return ProgressionRuleResponse{
		ID:            r.ID.Hex(),
		ProgramID:     r.ProgramID.Hex(),
		ScheduleID:    r.ScheduleID.Hex(),
		WeekNumber:    r.WeekNumber,
		BlockKey:      r.BlockKey,
		ExerciseID:    r.ExerciseID.Hex(),
		BlockType:     r.BlockType,
		Params:        r.Params,
		IsPlaceholder: r.IsPlaceholder,
		UpdatedAt:     r.UpdatedAt,
	}
}

// --- Handler Methods ---

// SetDay upserts one (week, day-of-week) -> template assignment.
func (h *ScheduleHandler) SetDay(c *gin.Context) {
	var req SetDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	scheduleID, err := h.scheduleService.SetDay(c.Request.Context(), coachID, programID, req.WeekNumber, *req.DayOfWeek, templateID)
	if err != nil {
		h.writeScheduleError(c, err, "Failed to set schedule day.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduleId": scheduleID.Hex()})
}

// AutoFill copies week 1's schedule into every later week.
func (h *ScheduleHandler) AutoFill(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}

	if err := h.scheduleService.AutoFillFromWeek1(c.Request.Context(), coachID, programID); err != nil {
		h.writeScheduleError(c, err, "Failed to auto-fill schedule.")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceTemplate swaps the template on one schedule day and starts its
// rules over from the new template's defaults.
func (h *ScheduleHandler) ReplaceTemplate(c *gin.Context) {
	var req ReplaceTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}
	scheduleID, err := primitive.ObjectIDFromHex(c.Param("scheduleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format.")
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	if err := h.scheduleService.ReplaceTemplate(c.Request.Context(), coachID, programID, scheduleID, templateID); err != nil {
		h.writeScheduleError(c, err, "Failed to replace template.")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSchedule returns a program's schedule rows, optionally scoped to one
// week with ?week=N.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}

	var days []domain.ScheduleDay
	if weekStr := c.Query("week"); weekStr != "" {
		week, err := strconv.Atoi(weekStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid week query parameter.")
			return
		}
		days, err = h.scheduleService.GetWeek(c.Request.Context(), programID, week)
		if err != nil {
			h.writeScheduleError(c, err, "Failed to retrieve schedule.")
			return
		}
	} else {
		days, err = h.scheduleService.GetSchedule(c.Request.Context(), programID)
		if err != nil {
			h.writeScheduleError(c, err, "Failed to retrieve schedule.")
			return
		}
	}

	responses := make([]ScheduleDayResponse, len(days))
	for i := range days {
		responses[i] = MapScheduleDayToResponse(&days[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetProgressionRules lists the rules for one schedule day in one week.
func (h *ScheduleHandler) GetProgressionRules(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}
	scheduleID, err := primitive.ObjectIDFromHex(c.Param("scheduleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule ID format.")
		return
	}
	week, err := strconv.Atoi(c.DefaultQuery("week", "1"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid week query parameter.")
		return
	}

	rules, err := h.progressionService.GetProgressionRules(c.Request.Context(), programID, week, scheduleID)
	if err != nil {
		h.writeScheduleError(c, err, "Failed to retrieve progression rules.")
		return
	}

	responses := make([]ProgressionRuleResponse, len(rules))
	for i := range rules {
		responses[i] = MapRuleToResponse(&rules[i])
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateProgressionRule overwrites one rule's parameters.
func (h *ScheduleHandler) UpdateProgressionRule(c *gin.Context) {
	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	ruleID, err := primitive.ObjectIDFromHex(c.Param("ruleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid rule ID format.")
		return
	}

	rule, err := h.progressionService.UpdateProgressionRule(c.Request.Context(), coachID, ruleID, req.Params)
	if err != nil {
		h.writeScheduleError(c, err, "Failed to update progression rule.")
		return
	}
	c.JSON(http.StatusOK, MapRuleToResponse(rule))
}

// ReplaceExercise swaps the exercise on one rule, keeping its parameters.
func (h *ScheduleHandler) ReplaceExercise(c *gin.Context) {
	var req ReplaceExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	ruleID, err := primitive.ObjectIDFromHex(c.Param("ruleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid rule ID format.")
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	rule, err := h.progressionService.ReplaceExercise(c.Request.Context(), coachID, ruleID, exerciseID)
	if err != nil {
		h.writeScheduleError(c, err, "Failed to replace exercise.")
		return
	}
	c.JSON(http.StatusOK, MapRuleToResponse(rule))
}

// GetBlockSchema returns the field schema for one block type.
func (h *ScheduleHandler) GetBlockSchema(c *gin.Context) {
	blockType := domain.BlockType(c.Param("blockType"))
	schema, err := domain.BlockSchema(blockType)
	if err != nil {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"blockType": blockType, "fields": schema})
}

// ListBlockTypes returns every supported block type.
func (h *ScheduleHandler) ListBlockTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"blockTypes": domain.AllBlockTypes})
}

func (h *ScheduleHandler) writeScheduleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrScheduleWrongOwner),
		errors.Is(err, service.ErrRuleAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidDayOfWeek),
		errors.Is(err, service.ErrInvalidWeekNumber),
		errors.Is(err, domain.ErrUnknownBlockType),
		errors.Is(err, domain.ErrInvalidBlockParams):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
