package repository

import "context"

// ReportRepository defines the interface for report persistence.
type ReportRepository interface {
	// SaveReport stores an analysis report.
	SaveReport(ctx context.Context, report *Report) error

	// ListReports returns the most recent reports for a binary, newest
	// first. An empty binaryPath lists across binaries.
	ListReports(ctx context.Context, binaryPath string, limit int) ([]*Report, error)

	// Migrate creates or updates the backing schema.
	Migrate(ctx context.Context) error
}
