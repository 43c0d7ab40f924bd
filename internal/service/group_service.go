package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// GroupService manages groups and their membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup validates and persists a new group.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("group name is required")
	}

	group := &models.Group{Name: name, Description: strings.TrimSpace(description)}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// UpdateGroup changes a group's name and description.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("group name is required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.Name = name
	group.Description = strings.TrimSpace(description)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Group updated", "group_id", group.ID)
	return group, nil
}

// DeleteGroup removes a group and its memberships. Groups with expenses
// cannot be deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}

	expenses, err := s.store.CountGroupExpenses(ctx, groupID)
	if err != nil {
		return err
	}
	if expenses > 0 {
		return validationf("cannot delete a group that has expenses")
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// ListMembers retrieves a group's members.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGroupMembers(ctx, groupID)
}

// AddMember adds a user to a group. Both must exist and the user must not
// already be a member.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	if userID == "" {
		return validationf("user ID is required")
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}

	isMember, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return validationf("user is already a member of this group")
	}

	if err := s.store.AddGroupMember(ctx, groupID, userID); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}

	slog.Info("Member added", "group_id", groupID, "user_id", userID)
	return nil
}

// RemoveMember removes a user from a group. Members still referenced by the
// group's expenses, shares or payments cannot leave; balances would no
// longer cancel out.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	expenseIDs := make([]string, len(expenses))
	for i, e := range expenses {
		if e.PaidBy == userID {
			return validationf("cannot remove a member who has paid expenses in the group")
		}
		expenseIDs[i] = e.ID
	}

	sharesByExpense, err := s.store.ListSharesForExpenses(ctx, expenseIDs)
	if err != nil {
		return err
	}
	for _, shares := range sharesByExpense {
		for _, share := range shares {
			if share.UserID == userID {
				return validationf("cannot remove a member who holds expense shares in the group")
			}
		}
	}

	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.FromUserID == userID || p.ToUserID == userID {
			return validationf("cannot remove a member with recorded payments in the group")
		}
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return err
	}
	slog.Info("Member removed", "group_id", groupID, "user_id", userID)
	return nil
}
