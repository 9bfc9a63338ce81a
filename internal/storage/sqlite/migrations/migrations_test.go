package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/storage/sqlite/migrations"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestNewMigrator(t *testing.T) {
	_, err := migrations.NewMigrator(nil, log.Noop)
	assert.Error(t, err)
}

func TestMigratorUpDown(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	m, err := migrations.NewMigrator(db, nil)
	require.NoError(t, err)

	version, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.True(t, tableExists(t, db, "runs"))
	assert.True(t, tableExists(t, db, "stages"))

	// Running it again is a no-op.
	version, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Down(ctx))
	assert.False(t, tableExists(t, db, "runs"))
	assert.False(t, tableExists(t, db, "stages"))
}
