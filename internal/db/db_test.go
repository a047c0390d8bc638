package db

import (
	"path/filepath"
	"testing"

	"joja_garden/internal/config"
	"joja_garden/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "garden.db")}

	gdb, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	for _, m := range domain.Models() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, gdb.Migrator().HasIndex(&domain.Garden{}, "idx_garden_owner_name"))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
