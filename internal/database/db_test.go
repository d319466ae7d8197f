package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/charlesng35/peerfeed/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	for _, model := range Models() {
		require.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	require.True(t, db.Migrator().HasTable("feedback"))
	require.True(t, db.Migrator().HasColumn(&models.Notification{}, "is_read"))
}

func TestAutoMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}

func TestUniqueUsernameEnforced(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	first := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(first).Error)

	dup := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	require.Error(t, db.Create(dup).Error)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, gormlogger.Silent, parseLogLevel(""))
	require.Equal(t, gormlogger.Info, parseLogLevel("DEBUG"))
	require.Equal(t, gormlogger.Warn, parseLogLevel("warning"))
	require.Equal(t, gormlogger.Error, parseLogLevel("error"))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
