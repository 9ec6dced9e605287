package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"
)

// GormReportRepository implements ReportRepository on a GORM connection.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository wraps an open GORM connection.
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Migrate creates or updates the reports table.
func (r *GormReportRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Report{}); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "migrating reports table", err)
	}
	return nil
}

// SaveReport stores an analysis report.
func (r *GormReportRepository) SaveReport(ctx context.Context, report *Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "saving report", err)
	}
	return nil
}

// ListReports returns the most recent reports, newest first.
func (r *GormReportRepository) ListReports(ctx context.Context, binaryPath string, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Model(&Report{}).Order("created_at DESC").Limit(limit)
	if binaryPath != "" {
		q = q.Where("binary_path = ?", binaryPath)
	}

	var reports []*Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "listing reports", err)
	}
	return reports, nil
}
