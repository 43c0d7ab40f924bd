package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// UserService manages user accounts.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser validates and persists a new user.
func (s *UserService) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("name is required")
	}

	user := &models.User{Name: name, Email: strings.TrimSpace(email)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("CreateUser failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("User created", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser changes a user's name and email.
func (s *UserService) UpdateUser(ctx context.Context, userID, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("name is required")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = strings.TrimSpace(email)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		slog.Error("UpdateUser failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("User updated", "user_id", user.ID)
	return user, nil
}

// DeleteUser removes a user. Users who belong to a group or have paid
// expenses cannot be deleted; their history would dangle.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}

	memberships, err := s.store.CountUserMemberships(ctx, userID)
	if err != nil {
		return err
	}
	if memberships > 0 {
		return validationf("cannot delete a user who is a member of a group")
	}

	expenses, err := s.store.CountUserExpenses(ctx, userID)
	if err != nil {
		return err
	}
	if expenses > 0 {
		return validationf("cannot delete a user who has expenses")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		slog.Error("DeleteUser failed", "user_id", userID, "error", err)
		return err
	}

	slog.Info("User deleted", "user_id", userID)
	return nil
}
