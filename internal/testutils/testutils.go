package testutils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/repository"
)

// NewTestDB opens a throwaway sqlite database with the full schema migrated.
// A single connection keeps concurrent test writers from tripping over
// sqlite's locking.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "portal.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(repository.AllModels()...))
	return db
}

func NewTestLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{LogLevel: "error", DevMode: true})
	appLogger.InitLogger()
	return appLogger
}
