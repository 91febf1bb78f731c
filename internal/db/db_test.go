package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsApplyCleanly(t *testing.T) {
	database, err := OpenPath(filepath.Join(t.TempDir(), "profiler.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	status, err := GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, uint(0), status.CurrentVersion)
	assert.True(t, status.Pending)

	require.NoError(t, RunMigrations(database))
	require.NoError(t, RunMigrations(database), "second run is a no-op")

	status, err = GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, status.LatestVersion, status.CurrentVersion)
	assert.False(t, status.Pending)
	assert.False(t, status.Dirty)

	for _, table := range []string{"profiles", "candidates", "interviews"} {
		var name string
		err := database.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	database, err := OpenPathAndMigrate(filepath.Join(t.TempDir(), "profiler.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	var enabled int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}
