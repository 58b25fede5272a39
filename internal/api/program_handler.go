package api

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type ProgramRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationWeeks   int    `json:"durationWeeks" binding:"required,min=1"`
	DifficultyLevel string `json:"difficultyLevel" binding:"omitempty,oneof=beginner intermediate advanced"`
	TargetAudience  string `json:"targetAudience"`
}

type ProgramResponse struct {
	ID              string    `json:"id"`
	CoachID         string    `json:"coachId"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationWeeks   int       `json:"durationWeeks"`
	DifficultyLevel string    `json:"difficultyLevel,omitempty"`
	TargetAudience  string    `json:"targetAudience,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type AssignProgramRequest struct {
	ClientID  string     `json:"clientId" binding:"required"`
	StartDate *time.Time `json:"startDate"`
}

type AssignmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active paused completed cancelled"`
}

type ProgramAssignmentResponse struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"programId"`
	ClientID  string    `json:"clientId"`
	CoachID   string    `json:"coachId"`
	StartDate time.Time `json:"startDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapProgramToResponse converts a domain.Program to its DTO.
func MapProgramToResponse(p *domain.Program) ProgramResponse {
	if p == nil {
		return ProgramResponse{}
	}
	return ProgramResponse{
		ID:              p.ID.Hex(),
		CoachID:         p.CoachID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		DurationWeeks:   p.DurationWeeks,
		DifficultyLevel: string(p.DifficultyLevel),
		TargetAudience:  p.TargetAudience,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// MapAssignmentToResponse converts a domain.ProgramAssignment to its DTO.
func MapAssignmentToResponse(a *domain.ProgramAssignment) ProgramAssignmentResponse {
	if a == nil {
		return ProgramAssignmentResponse{}
	}
	return ProgramAssignmentResponse{
		ID:        a.ID.Hex(),
		ProgramID: a.ProgramID.Hex(),
		ClientID:  a.ClientID.Hex(),
		CoachID:   a.CoachID.Hex(),
		StartDate: a.StartDate,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

func (r ProgramRequest) toInput() service.ProgramInput {
	return service.ProgramInput{
		Name:            r.Name,
		Description:     r.Description,
		DurationWeeks:   r.DurationWeeks,
		DifficultyLevel: domain.DifficultyLevel(r.DifficultyLevel),
		TargetAudience:  r.TargetAudience,
	}
}

// --- Handler Methods ---

// CreateProgram creates a new program for the authenticated coach.
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), coachID, req.toInput())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create program.")
		return
	}
	c.JSON(http.StatusCreated, MapProgramToResponse(program))
}

// GetCoachPrograms lists the coach's programs.
func (h *ProgramHandler) GetCoachPrograms(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	programs, err := h.programService.GetProgramsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve programs.")
		return
	}

	responses := make([]ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = MapProgramToResponse(&programs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetProgram returns one program by id.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}

	program, err := h.programService.GetProgramByID(c.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve program.")
		}
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(program))
}

// UpdateProgram updates a program the authenticated coach owns.
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	var req ProgramRequest
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

	program, err := h.programService.UpdateProgram(c.Request.Context(), coachID, programID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrProgramAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update program.")
		}
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(program))
}

// AssignProgram assigns a program to one of the coach's clients.
func (h *ProgramHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
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
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	startDate := time.Time{}
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	assignment, err := h.programService.AssignProgram(c.Request.Context(), coachID, programID, clientID, startDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound), errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrProgramAccessDenied), errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAssignmentAlreadyActive):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign program.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapAssignmentToResponse(assignment))
}

// UpdateAssignmentStatus moves a program assignment through its lifecycle.
func (h *ProgramHandler) UpdateAssignmentStatus(c *gin.Context) {
	var req AssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
		return
	}

	assignment, err := h.programService.UpdateAssignmentStatus(c.Request.Context(), coachID, assignmentID, domain.AssignmentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssignmentAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidStatusTransition):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssignmentAlreadyActive):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update assignment status.")
		}
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment))
}

// GetMyAssignments lists the authenticated client's program assignments.
func (h *ProgramHandler) GetMyAssignments(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	assignments, err := h.programService.GetAssignmentsByClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}

	responses := make([]ProgramAssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = MapAssignmentToResponse(&assignments[i])
	}
	c.JSON(http.StatusOK, responses)
}
