package service

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound       = errors.New("client user not found")
	ErrClientNotRole        = errors.New("user found but is not a client")
	ErrClientAlreadyCoached = errors.New("client is already coached by another coach")
	ErrClientNotManaged     = errors.New("client is not managed by this coach")
)

type CoachService interface {
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo repository.UserRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository) CoachService {
	return &coachService{
		userRepo: userRepo,
	}
}

// AddClientByEmail finds a client by email and adds them to the coach's roster.
func (s *coachService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("coach ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.CoachID != nil && *client.CoachID != primitive.NilObjectID {
		if *client.CoachID == coachID {
			// Already on this coach's roster; adding again is a no-op.
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyCoached
	}

	// Link both sides of the relationship.
	err = s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID)
	if err != nil {
		return nil, err
	}
	err = s.userRepo.SetCoachForClient(ctx, client.ID, coachID)
	if err != nil {
		return nil, err
	}

	client.CoachID = &coachID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients coached by the coach.
func (s *coachService) GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}
