// Package businessflow contains the core business logic and use cases for broadcast workflows
package businessflow

import (
	"context"

	"gorm.io/gorm"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/models"
	"github.com/heraldhq/herald/repository"
)

// UserFlow handles the user business logic
type UserFlow interface {
	GetAll(ctx context.Context) (*dto.ListUsersResponse, error)
	Add(ctx context.Context, req *dto.UserRequest, metadata *ClientMetadata) (*dto.UserResponse, error)
	Update(ctx context.Context, req *dto.UserRequest, metadata *ClientMetadata) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uint, metadata *ClientMetadata) error
}

// UserFlowImpl implements the user business flow
type UserFlowImpl struct {
	userRepo repository.UserRepository
	db       *gorm.DB
}

// NewUserFlow creates a new user flow instance
func NewUserFlow(userRepo repository.UserRepository, db *gorm.DB) UserFlow {
	return &UserFlowImpl{
		userRepo: userRepo,
		db:       db,
	}
}

// GetAll returns every user. An empty store yields an empty list, never
// an error.
func (s *UserFlowImpl) GetAll(ctx context.Context) (*dto.ListUsersResponse, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to list users", err)
	}

	resp := &dto.ListUsersResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Total: len(users),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	return resp, nil
}

// Add persists a new user
func (s *UserFlowImpl) Add(ctx context.Context, req *dto.UserRequest, metadata *ClientMetadata) (*dto.UserResponse, error) {
	existing, err := s.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_TAKEN", "Email already exists", ErrEmailTaken)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, NewBusinessError("USER_CREATION_FAILED", "User creation failed", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Update applies full-replace semantics to an existing user keyed by id.
// An unknown id is reported as not found.
func (s *UserFlowImpl) Update(ctx context.Context, req *dto.UserRequest, metadata *ClientMetadata) (*dto.UserResponse, error) {
	existing, err := s.userRepo.ByID(ctx, req.ID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if existing == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.Phone = req.Phone

	if err := s.userRepo.Update(ctx, *existing); err != nil {
		return nil, NewBusinessError("USER_UPDATE_FAILED", "User update failed", err)
	}

	resp := toUserResponse(existing)
	return &resp, nil
}

// Delete removes a user by id. Deleting an unknown id is a no-op.
func (s *UserFlowImpl) Delete(ctx context.Context, id uint, metadata *ClientMetadata) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("USER_DELETION_FAILED", "User deletion failed", err)
	}
	return nil
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		UUID:      u.UUID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
