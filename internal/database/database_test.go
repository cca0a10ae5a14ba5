package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	dsn := DSN("board.db")

	assert.Contains(t, dsn, "file:board.db?")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_synchronous=NORMAL")
	assert.Contains(t, dsn, "_busy_timeout=10000")
	assert.Contains(t, dsn, "_foreign_keys=on")
}

func TestInitSchema_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db))

	for _, table := range []string{"users", "posts", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s must exist", table)
	}
}

func TestIsBusyError(t *testing.T) {
	assert.False(t, IsBusyError(nil))
	assert.False(t, IsBusyError(errors.New("no such table")))
	assert.True(t, IsBusyError(errors.New("database is locked")))
	assert.True(t, IsBusyError(errors.New("SQLITE_BUSY: database is locked")))
}
