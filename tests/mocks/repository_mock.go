package mocks

import (
	"context"

	"ecommerce-api/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoleRepository is a mock implementation of repository.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *MockRoleRepository) GetRole(ctx context.Context, id uint) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) UsersByRole(ctx context.Context, roleID uint) ([]domain.User, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRoleRepository) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRoleRepository) AssignRole(ctx context.Context, userID, roleID uint) (*domain.User, error) {
	args := m.Called(ctx, userID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockCategoryLookup is a mock implementation of repository.CategoryLookup
type MockCategoryLookup struct {
	mock.Mock
}

// Category mocks the Category method
func (m *MockCategoryLookup) Category(ctx context.Context, id uint) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// MockReportArchive is a mock implementation of repository.ReportArchive
type MockReportArchive struct {
	mock.Mock
}

func (m *MockReportArchive) Archive(ctx context.Context, report *domain.ErrorReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportArchive) Recent(ctx context.Context, limit int) ([]domain.ErrorReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ErrorReport), args.Error(1)
}
