package repository

import (
	"context"

	"ecommerce-api/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportArchive stores error reports received from the monitoring queue
type ReportArchive interface {
	// Archive stores the report; a request id seen before is ignored
	Archive(ctx context.Context, report *domain.ErrorReport) error
	Recent(ctx context.Context, limit int) ([]domain.ErrorReport, error)
}

type GormReportArchive struct {
	db *gorm.DB
}

func NewReportArchive(db *gorm.DB) *GormReportArchive {
	return &GormReportArchive{db: db}
}

func (a *GormReportArchive) Archive(ctx context.Context, report *domain.ErrorReport) error {
	result := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "request_id"}}, DoNothing: true}).
		Create(report)
	return handleErrorWithContext(result.Error, "archive error report", report.RequestID)
}

func (a *GormReportArchive) Recent(ctx context.Context, limit int) ([]domain.ErrorReport, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}

	var reports []domain.ErrorReport
	result := a.db.WithContext(ctx).Order("occurred_at DESC").Limit(limit).Find(&reports)
	if err := handleError(result.Error); err != nil {
		return nil, err
	}
	return reports, nil
}
