package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/models"
)

func TestSeedInitialData(t *testing.T) {
	db, err := NewSQLiteDB("")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, SeedInitialData(db, &env.State{TelegrafSystemInterval: "10s"}))
	// second call must not insert again
	require.NoError(t, SeedInitialData(db, nil))

	var rows []models.EnvSnapshot
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "10s", rows[0].TelegrafSystemInterval)
	assert.Equal(t, SeedActionType, rows[0].ActionType)
	assert.Equal(t, int64(0), rows[0].Version)
}
