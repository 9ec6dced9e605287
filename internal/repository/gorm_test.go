package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Report{}))
	return db
}

func TestGormReportRepository_SaveAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReportRepository(db)
	ctx := context.Background()

	t.Run("List_Empty", func(t *testing.T) {
		reports, err := repo.ListReports(ctx, "", 10)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("Save_And_List", func(t *testing.T) {
		report := &Report{
			BinaryPath: "app.wasm",
			Analysis:   "top",
			Format:     "text",
			Output:     " Shallow Bytes │ ...",
			GraphSize:  1024,
			ItemCount:  42,
			DurationMs: 7,
		}
		require.NoError(t, repo.SaveReport(ctx, report))
		assert.NotZero(t, report.ID)

		reports, err := repo.ListReports(ctx, "app.wasm", 10)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "top", reports[0].Analysis)
		assert.Equal(t, uint32(1024), reports[0].GraphSize)
	})

	t.Run("List_FiltersByBinary", func(t *testing.T) {
		require.NoError(t, repo.SaveReport(ctx, &Report{
			BinaryPath: "other.wasm",
			Analysis:   "garbage",
		}))

		reports, err := repo.ListReports(ctx, "app.wasm", 10)
		require.NoError(t, err)
		require.Len(t, reports, 1)

		all, err := repo.ListReports(ctx, "", 10)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("List_AppliesLimit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.SaveReport(ctx, &Report{
				BinaryPath: "many.wasm",
				Analysis:   "monos",
			}))
		}
		reports, err := repo.ListReports(ctx, "many.wasm", 3)
		require.NoError(t, err)
		assert.Len(t, reports, 3)
	})
}

func TestGormReportRepository_Migrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewGormReportRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))

	assert.True(t, db.Migrator().HasTable("reports"))
}
