package mocks

import (
	"context"

	"ecommerce-api/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of repository.Store
type MockStore[T any] struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockStore[T]) Create(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

// Save mocks the Save method
func (m *MockStore[T]) Save(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockStore[T]) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindOne mocks the FindOne method
func (m *MockStore[T]) FindOne(ctx context.Context, id uint, preloads ...string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// FindBy mocks the FindBy method
func (m *MockStore[T]) FindBy(ctx context.Context, cond repository.Condition) (*T, error) {
	args := m.Called(ctx, cond)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// Find mocks the Find method
func (m *MockStore[T]) Find(ctx context.Context, q repository.Query) (*repository.Page[T], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Page[T]), args.Error(1)
}

// Transaction runs fn against the mock itself
func (m *MockStore[T]) Transaction(ctx context.Context, fn func(repository.Store[T]) error) error {
	return fn(m)
}
