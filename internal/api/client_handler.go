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

// ClientHandler holds the client-facing service dependencies.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type RequestPhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoUploadRequest struct {
	ObjectKey   string    `json:"objectKey" binding:"required"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	TakenAt     time.Time `json:"takenAt"`
	Notes       string    `json:"notes"`
}

type ProgressPhotoResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	FileName    string    `json:"fileName,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty"`
	TakenAt     time.Time `json:"takenAt"`
	Notes       string    `json:"notes,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// MapPhotoToResponse converts a domain.ProgressPhoto to its DTO. The
// object key stays server-side; viewers go through the download URL
// endpoint instead.
func MapPhotoToResponse(p *domain.ProgressPhoto) ProgressPhotoResponse {
	if p == nil {
		return ProgressPhotoResponse{}
	}
	resp := ProgressPhotoResponse{
		ID:          p.ID.Hex(),
		ClientID:    p.ClientID.Hex(),
		FileName:    p.FileName,
		ContentType: p.ContentType,
		Size:        p.Size,
		Notes:       p.Notes,
		UploadedAt:  p.UploadedAt,
	}
	if p.TakenAt != nil {
		resp.TakenAt = *p.TakenAt
	}
	return resp
}

// --- Handler Methods ---

// RequestPhotoUploadURL returns a pre-signed URL the client uploads a
// progress photo to.
func (h *ClientHandler) RequestPhotoUploadURL(c *gin.Context) {
	var req RequestPhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	resp, err := h.clientService.RequestPhotoUploadURL(c.Request.Context(), clientID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUploadURLError) {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPhotoUpload records the photo metadata after the upload finished.
func (h *ClientHandler) ConfirmPhotoUpload(c *gin.Context) {
	var req ConfirmPhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	photo, err := h.clientService.ConfirmPhotoUpload(
		c.Request.Context(), clientID,
		req.ObjectKey, req.FileName, req.ContentType, req.Size, req.TakenAt, req.Notes,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUploadConfirmFailed):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapPhotoToResponse(photo))
}

// GetMyPhotos lists the authenticated client's progress photos.
func (h *ClientHandler) GetMyPhotos(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	photos, err := h.clientService.GetMyPhotos(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve photos.")
		return
	}

	responses := make([]ProgressPhotoResponse, len(photos))
	for i := range photos {
		responses[i] = MapPhotoToResponse(&photos[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClientPhotos lists a managed client's photos for their coach.
func (h *ClientHandler) GetClientPhotos(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	photos, err := h.clientService.GetClientPhotos(c.Request.Context(), coachID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve photos.")
		}
		return
	}

	responses := make([]ProgressPhotoResponse, len(photos))
	for i := range photos {
		responses[i] = MapPhotoToResponse(&photos[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetPhotoDownloadURL returns a temporary viewing URL for one photo.
func (h *ClientHandler) GetPhotoDownloadURL(c *gin.Context) {
	requesterID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	photoID, err := primitive.ObjectIDFromHex(c.Param("photoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid photo ID format.")
		return
	}

	url, err := h.clientService.GetPhotoDownloadURL(c.Request.Context(), requesterID, photoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPhotoAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
