package repository

import (
	"context"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100

	QueryByID        = "id = ?"
	OrderByCreatedAt = "created_at DESC"
)

// Condition is one WHERE clause with its arguments
type Condition struct {
	Query string
	Args  []interface{}
}

// Where builds a Condition
func Where(query string, args ...interface{}) Condition {
	return Condition{Query: query, Args: args}
}

// Query describes a paginated listing
type Query struct {
	Page       int
	PageSize   int
	Conditions []Condition
	Order      string
	Preloads   []string
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Order == "" {
		q.Order = OrderByCreatedAt
	}
	return q
}

// Page is one page of a listing
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int64
}

// PageCount returns the number of pages for the total
func (p Page[T]) PageCount() int {
	if p.PageSize == 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Store is the generic CRUD backend shared by every resource
type Store[T any] interface {
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
	FindOne(ctx context.Context, id uint, preloads ...string) (*T, error)
	FindBy(ctx context.Context, cond Condition) (*T, error)
	Find(ctx context.Context, q Query) (*Page[T], error)
	Transaction(ctx context.Context, fn func(Store[T]) error) error
}

// GormStore implements Store with GORM
type GormStore[T any] struct {
	db       *gorm.DB
	resource string
}

// NewStore creates a GORM-backed store; resource names the entity in error context
func NewStore[T any](db *gorm.DB, resource string) *GormStore[T] {
	return &GormStore[T]{db: db, resource: resource}
}

// Create inserts a new row
func (s *GormStore[T]) Create(ctx context.Context, entity *T) error {
	result := s.db.WithContext(ctx).Create(entity)
	return handleErrorWithContext(result.Error, "create "+s.resource, "new")
}

// Save updates every column of an existing row
func (s *GormStore[T]) Save(ctx context.Context, entity *T) error {
	result := s.db.WithContext(ctx).Save(entity)
	return handleErrorWithContext(result.Error, "save "+s.resource, "existing")
}

// Delete removes a row by primary key
func (s *GormStore[T]) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(new(T), QueryByID, id)
	if result.Error != nil {
		return handleErrorWithContext(result.Error, "delete "+s.resource, id)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOne loads a row by primary key
func (s *GormStore[T]) FindOne(ctx context.Context, id uint, preloads ...string) (*T, error) {
	query := s.db.WithContext(ctx)
	for _, p := range preloads {
		query = query.Preload(p)
	}

	var entity T
	result := query.First(&entity, QueryByID, id)
	if err := handleErrorWithContext(result.Error, "find "+s.resource, id); err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindBy loads the first row matching cond
func (s *GormStore[T]) FindBy(ctx context.Context, cond Condition) (*T, error) {
	var entity T
	result := s.db.WithContext(ctx).Where(cond.Query, cond.Args...).First(&entity)
	if err := handleErrorWithContext(result.Error, "find "+s.resource, cond.Query); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Find lists rows matching q, one page at a time
func (s *GormStore[T]) Find(ctx context.Context, q Query) (*Page[T], error) {
	q = q.normalized()

	query := s.db.WithContext(ctx).Model(new(T))
	for _, c := range q.Conditions {
		query = query.Where(c.Query, c.Args...)
	}

	var total int64
	if err := handleError(query.Count(&total).Error); err != nil {
		return nil, err
	}

	for _, p := range q.Preloads {
		query = query.Preload(p)
	}

	items := make([]T, 0)
	result := query.
		Order(q.Order).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&items)
	if err := handleError(result.Error); err != nil {
		return nil, err
	}

	return &Page[T]{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
}

// Transaction runs fn against a store bound to one transaction
func (s *GormStore[T]) Transaction(ctx context.Context, fn func(Store[T]) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore[T]{db: tx, resource: s.resource})
	})
}
