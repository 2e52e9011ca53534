package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/repository"
	"ecommerce-api/pkg/database"

	"go.uber.org/zap"
)

// Action tells a validator whether it is looking at a new resource or a change to one
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// ListParams selects a page of a listing
type ListParams struct {
	Page     int
	PageSize int
}

// resource carries the CRUD plumbing shared by every service
type resource[T any] struct {
	store  repository.Store[T]
	name   string
	logger *zap.Logger
}

func (r resource[T]) get(ctx context.Context, id uint, preloads ...string) (*T, error) {
	entity, err := r.store.FindOne(ctx, id, preloads...)
	if err != nil {
		return nil, storeError(err, r.name, "find")
	}
	return entity, nil
}

func (r resource[T]) create(ctx context.Context, entity *T) error {
	return storeError(r.store.Create(ctx, entity), r.name, "create")
}

func (r resource[T]) save(ctx context.Context, entity *T) error {
	return storeError(r.store.Save(ctx, entity), r.name, "update")
}

func (r resource[T]) remove(ctx context.Context, id uint) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return storeError(err, r.name, "delete")
	}
	r.logger.Info(r.name+" deleted", zap.Uint("id", id))
	return nil
}

func (r resource[T]) list(ctx context.Context, params ListParams, conds ...repository.Condition) (*repository.Page[T], error) {
	page, err := r.store.Find(ctx, repository.Query{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Conditions: conds,
	})
	if err != nil {
		return nil, storeError(err, r.name, "list")
	}
	return page, nil
}

// storeError maps repository failures into the error taxonomy. Errors it does not
// recognise are returned as is for the caller's propagation policy.
func storeError(err error, resourceName, operation string) error {
	if err == nil {
		return nil
	}
	if _, ok := errs.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.NotFound(resourceName + " not found")
	case errors.Is(err, repository.ErrAlreadyExists):
		return errs.Wrap(errs.KindConflict, resourceName+" already exists", err, nil)
	}

	if failure, ok := database.Classify(err); ok {
		return errs.Wrap(errs.KindDatabase,
			fmt.Sprintf("Failed to %s %s in database", operation, strings.ToLower(resourceName)),
			err,
			map[string]interface{}{
				"databaseError": string(failure.Code),
				"message":       failure.Message,
			})
	}

	if errors.Is(err, repository.ErrDatabaseConnection) || errors.Is(err, repository.ErrQueryTimeout) {
		return errs.Wrap(errs.KindDatabase, "", err, nil)
	}

	return err
}

// roundCents rounds to two decimal places
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func logWarnings(logger *zap.Logger, msg string, warnings []string) {
	if len(warnings) > 0 {
		logger.Warn(msg, zap.Strings("warnings", warnings))
	}
}
