// Package testutil holds fixtures and mocks shared by the package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// SetupTestDB creates a new in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection keeps the in-memory database alive for the whole test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// TestConfig returns a config suitable for services under test
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		JWTSecret:              "test-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		LoginMaxAttempts:       3,
		LoginAttemptWindow:     time.Minute,
	}
}

// CreateUser inserts an active user with the given email and password
func CreateUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Name: "Test User", IsActive: true}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	return user
}

// CountRows returns the number of rows in table matching the optional condition
func CountRows(t *testing.T, db *gorm.DB, table string, query ...interface{}) int64 {
	t.Helper()

	var count int64
	tx := db.Table(table)
	if len(query) > 0 {
		tx = tx.Where(query[0], query[1:]...)
	}
	require.NoError(t, tx.Count(&count).Error)
	return count
}
