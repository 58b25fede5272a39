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

// TemplateHandler holds the workout template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

type TemplateBlockRequest struct {
	ExerciseID string             `json:"exerciseId" binding:"required"`
	BlockType  domain.BlockType   `json:"blockType" binding:"required"`
	Params     domain.BlockParams `json:"params" binding:"required"`
	Notes      string             `json:"notes"`
}

type TemplateRequest struct {
	Name   string                 `json:"name" binding:"required"`
	Notes  string                 `json:"notes"`
	Blocks []TemplateBlockRequest `json:"blocks" binding:"required,min=1,dive"`
}

type TemplateBlockResponse struct {
	ExerciseID string             `json:"exerciseId"`
	BlockType  domain.BlockType   `json:"blockType"`
	Params     domain.BlockParams `json:"params"`
	Notes      string             `json:"notes,omitempty"`
}

type TemplateResponse struct {
	ID        string                  `json:"id"`
	CoachID   string                  `json:"coachId"`
	Name      string                  `json:"name"`
	Notes     string                  `json:"notes,omitempty"`
	Blocks    []TemplateBlockResponse `json:"blocks"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// MapTemplateToResponse converts a domain.WorkoutTemplate to its DTO.
func MapTemplateToResponse(t *domain.WorkoutTemplate) TemplateResponse {
	if t == nil {
		return TemplateResponse{}
	}
	blocks := make([]TemplateBlockResponse, len(t.Blocks))
	for i, b := range t.Blocks {
		blocks[i] = TemplateBlockResponse{
			ExerciseID: b.ExerciseID.Hex(),
			BlockType:  b.BlockType,
			Params:     b.Params,
			Notes:      b.Notes,
		}
	}
	return TemplateResponse{
		ID:        t.ID.Hex(),
		CoachID:   t.CoachID.Hex(),
		Name:      t.Name,
		Notes:     t.Notes,
		Blocks:    blocks,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r TemplateRequest) toInput() (service.TemplateInput, error) {
	blocks := make([]domain.TemplateBlock, len(r.Blocks))
	for i, b := range r.Blocks {
		exerciseID, err := primitive.ObjectIDFromHex(b.ExerciseID)
		if err != nil {
			return service.TemplateInput{}, errors.New("invalid exercise ID format in block")
		}
		blocks[i] = domain.TemplateBlock{
			ExerciseID: exerciseID,
			BlockType:  b.BlockType,
			Params:     b.Params,
			Notes:      b.Notes,
		}
	}
	return service.TemplateInput{
		Name:   r.Name,
		Notes:  r.Notes,
		Blocks: blocks,
	}, nil
}

// --- Handler Methods ---

// CreateTemplate creates a new workout template for the authenticated coach.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), coachID, input)
	if err != nil {
		h.writeTemplateError(c, err, "Failed to create workout template.")
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(template))
}

// GetCoachTemplates lists the coach's workout templates.
func (h *TemplateHandler) GetCoachTemplates(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	templates, err := h.templateService.GetTemplatesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout templates.")
		return
	}

	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapTemplateToResponse(&templates[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetTemplate returns one workout template by id.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	template, err := h.templateService.GetTemplateByID(c.Request.Context(), templateID)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout template.")
		}
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(template))
}

// UpdateTemplate updates a template the authenticated coach owns.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), coachID, templateID, input)
	if err != nil {
		h.writeTemplateError(c, err, "Failed to update workout template.")
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(template))
}

// DeleteTemplate deletes a template the authenticated coach owns.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), coachID, templateID); err != nil {
		h.writeTemplateError(c, err, "Failed to delete workout template.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TemplateHandler) writeTemplateError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTemplateHasNoBlocks),
		errors.Is(err, domain.ErrUnknownBlockType),
		errors.Is(err, domain.ErrInvalidBlockParams):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
