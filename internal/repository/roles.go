package repository

import (
	"context"

	"ecommerce-api/internal/domain"

	"gorm.io/gorm"
)

const (
	preloadPermissions     = "Permissions"
	preloadRolePermissions = "Role.Permissions"
)

// RoleRepository defines data access for roles and their users
type RoleRepository interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRole(ctx context.Context, id uint) (*domain.Role, error)
	CreateRole(ctx context.Context, role *domain.Role) error
	UsersByRole(ctx context.Context, roleID uint) ([]domain.User, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	AssignRole(ctx context.Context, userID, roleID uint) (*domain.User, error)
}

// GormRoleRepository implements RoleRepository with GORM
type GormRoleRepository struct {
	db    *gorm.DB
	roles *GormStore[domain.Role]
	users *GormStore[domain.User]
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{
		db:    db,
		roles: NewStore[domain.Role](db, "role"),
		users: NewStore[domain.User](db, "user"),
	}
}

// ListRoles returns every role with its permissions
func (r *GormRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	result := r.db.WithContext(ctx).Preload(preloadPermissions).Order("id ASC").Find(&roles)
	if err := handleError(result.Error); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRoleRepository) GetRole(ctx context.Context, id uint) (*domain.Role, error) {
	return r.roles.FindOne(ctx, id, preloadPermissions)
}

// CreateRole inserts the role; permissions are matched on action and created when missing
func (r *GormRoleRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range role.Permissions {
			p := &role.Permissions[i]
			if err := tx.Where(domain.Permission{Action: p.Action}).FirstOrCreate(p).Error; err != nil {
				return handleErrorWithContext(err, "create permission", p.Action)
			}
		}
		return NewStore[domain.Role](tx, "role").Create(ctx, role)
	})
}

// UsersByRole lists the users holding the role
func (r *GormRoleRepository) UsersByRole(ctx context.Context, roleID uint) ([]domain.User, error) {
	if _, err := r.roles.FindOne(ctx, roleID); err != nil {
		return nil, err
	}

	var users []domain.User
	result := r.db.WithContext(ctx).Preload("Role").Where("role_id = ?", roleID).Order("id ASC").Find(&users)
	if err := handleError(result.Error); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser loads a user with its role and the role's permissions
func (r *GormRoleRepository) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return r.users.FindOne(ctx, id, preloadRolePermissions)
}

// AssignRole points the user at the role and returns the refreshed user
func (r *GormRoleRepository) AssignRole(ctx context.Context, userID, roleID uint) (*domain.User, error) {
	if _, err := r.roles.FindOne(ctx, roleID); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&domain.User{}).Where(QueryByID, userID).Update("role_id", roleID)
	if result.Error != nil {
		return nil, handleErrorWithContext(result.Error, "assign role", userID)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetUser(ctx, userID)
}
