package service

import (
	"context"
	"strings"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"

	"go.uber.org/zap"
)

// UserSummary is the public part of a user
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserPermissions describes what a user may do through its role
type UserPermissions struct {
	User        UserSummary         `json:"user"`
	Role        *domain.Role        `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
}

// NewRole is the payload for creating a role
type NewRole struct {
	Name        string
	Type        string
	Description string
	Actions     []string
}

// RoleService defines the role management operations
type RoleService interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRole(ctx context.Context, id uint) (*domain.Role, error)
	UsersByRole(ctx context.Context, roleID uint) ([]domain.User, error)
	UserPermissions(ctx context.Context, userID uint) (*UserPermissions, error)
	CreateRole(ctx context.Context, req NewRole) (*domain.Role, error)
	AssignRole(ctx context.Context, userID, roleID uint) (*domain.User, error)
}

type roleService struct {
	repo   repository.RoleRepository
	logger *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(repo repository.RoleRepository, logger *zap.Logger) RoleService {
	return &roleService{repo: repo, logger: logger}
}

func (s *roleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, storeError(err, "Role", "list")
	}
	return roles, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*domain.Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, storeError(err, "Role", "find")
	}
	return role, nil
}

func (s *roleService) UsersByRole(ctx context.Context, roleID uint) ([]domain.User, error) {
	users, err := s.repo.UsersByRole(ctx, roleID)
	if err != nil {
		return nil, storeError(err, "Role", "find")
	}
	return users, nil
}

func (s *roleService) UserPermissions(ctx context.Context, userID uint) (*UserPermissions, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User", "find")
	}

	result := &UserPermissions{
		User:        UserSummary{ID: user.ID, Username: user.Username, Email: user.Email},
		Role:        user.Role,
		Permissions: []domain.Permission{},
	}
	if user.Role != nil && user.Role.Permissions != nil {
		result.Permissions = user.Role.Permissions
	}
	return result, nil
}

// CreateRole stores a role with the given permission actions
func (s *roleService) CreateRole(ctx context.Context, req NewRole) (*domain.Role, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "CreateRole"),
		zap.String("type", req.Type),
	)

	role := &domain.Role{
		Name:        strings.TrimSpace(req.Name),
		Type:        strings.ToLower(strings.TrimSpace(req.Type)),
		Description: strings.TrimSpace(req.Description),
	}
	for _, action := range req.Actions {
		role.Permissions = append(role.Permissions, domain.Permission{Action: action})
	}

	if err := s.repo.CreateRole(ctx, role); err != nil {
		logger.Error("Failed to create role", zap.Error(err))
		return nil, storeError(err, "Role", "create")
	}

	logger.Info("Role created", zap.Uint("roleId", role.ID))
	return role, nil
}

// AssignRole gives the user the role
func (s *roleService) AssignRole(ctx context.Context, userID, roleID uint) (*domain.User, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "User", "find")
	}

	user, err := s.repo.AssignRole(ctx, userID, roleID)
	if err != nil {
		return nil, storeError(err, "Role", "assign")
	}

	s.logger.Info("Role assigned", zap.Uint("userId", userID), zap.Uint("roleId", roleID))
	return user, nil
}
