package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KirkDiggler/rpg-narrator/internal/storage"
)

// CreateTestDB opens an in-memory sqlite database and runs the migrators.
// The pool is pinned to one connection so every query sees the same memory db.
func CreateTestDB(t *testing.T, migrators ...storage.Migrator) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         storage.NewLogger(nil, 0),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, storage.Migrate(db, migrators...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
