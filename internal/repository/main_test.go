package repository

import (
	"testing"
	"time"

	"pinboard/internal/database"
	"pinboard/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive for the test's
// lifetime; foreign keys are on so cascade behavior matches production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.InitSchema(db))
	return db
}

// createTestUser inserts a user directly, bypassing the repositories.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestPost inserts a post with an explicit creation time so ordering
// tests are deterministic.
func createTestPost(t *testing.T, db *gorm.DB, authorID uint, title string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:     title,
		Content:   "content of " + title,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
