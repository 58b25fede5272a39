package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"coachfit/coaching-app/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPhotoNotFound       = errors.New("progress photo not found")
	ErrPhotoAccessDenied   = errors.New("access denied to this progress photo")
	ErrUploadConfirmFailed = errors.New("failed to confirm upload")
	ErrUploadURLError      = errors.New("failed to generate upload URL")
	ErrDownloadURLError    = errors.New("failed to generate download URL")
)

// UploadURLResponse carries a pre-signed URL and the object key the client
// must report back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ClientService interface {
	// Progress photo upload flow
	RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmPhotoUpload(ctx context.Context, clientID primitive.ObjectID, objectKey, fileName, contentType string, fileSize int64, takenAt time.Time, notes string) (*domain.ProgressPhoto, error)

	// Viewing
	GetMyPhotos(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	GetClientPhotos(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	GetPhotoDownloadURL(ctx context.Context, requesterID, photoID primitive.ObjectID) (string, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	userRepo    repository.UserRepository
	photoRepo   repository.ProgressPhotoRepository
	fileStorage storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	userRepo repository.UserRepository,
	photoRepo repository.ProgressPhotoRepository,
	fileStorage storage.FileStorage,
) ClientService {
	return &clientService{
		userRepo:    userRepo,
		photoRepo:   photoRepo,
		fileStorage: fileStorage,
	}
}

// RequestPhotoUploadURL generates a pre-signed URL for a client to upload a
// progress photo directly to object storage.
func (s *clientService) RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, errors.New("invalid or missing image content type")
	}

	uniqueID := uuid.NewString()
	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("progress-photos", clientID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmPhotoUpload records the photo metadata after the client has uploaded
// the file to storage using the pre-signed URL.
func (s *clientService) ConfirmPhotoUpload(ctx context.Context, clientID primitive.ObjectID, objectKey, fileName, contentType string, fileSize int64, takenAt time.Time, notes string) (*domain.ProgressPhoto, error) {
	if clientID == primitive.NilObjectID || objectKey == "" {
		return nil, errors.New("client ID and object key are required")
	}
	// Reject keys outside the client's own prefix.
	if !strings.HasPrefix(objectKey, path.Join("progress-photos", clientID.Hex())+"/") {
		return nil, ErrPhotoAccessDenied
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	photo := &domain.ProgressPhoto{
		ClientID:    clientID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        fileSize,
		TakenAt:     &takenAt,
		Notes:       notes,
	}
	if client.CoachID != nil {
		photo.CoachID = *client.CoachID
	}

	photoID, err := s.photoRepo.Create(ctx, photo)
	if err != nil {
		return nil, ErrUploadConfirmFailed
	}
	return s.photoRepo.GetByID(ctx, photoID)
}

// GetMyPhotos lists the client's own progress photos.
func (s *clientService) GetMyPhotos(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.photoRepo.GetByClientID(ctx, clientID)
}

// GetClientPhotos lists a managed client's progress photos for their coach.
func (s *clientService) GetClientPhotos(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrClientNotManaged
	}
	return s.photoRepo.GetByClientID(ctx, clientID)
}

// GetPhotoDownloadURL generates a temporary URL for viewing a photo. The
// requester must be the photo's owner or that client's coach.
func (s *clientService) GetPhotoDownloadURL(ctx context.Context, requesterID, photoID primitive.ObjectID) (string, error) {
	if requesterID == primitive.NilObjectID || photoID == primitive.NilObjectID {
		return "", errors.New("requester ID and photo ID are required")
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPhotoNotFound
		}
		return "", err
	}

	if photo.ClientID != requesterID && photo.CoachID != requesterID {
		return "", ErrPhotoAccessDenied
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, photo.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}
