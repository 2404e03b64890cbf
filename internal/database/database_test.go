package database

import (
	"path/filepath"
	"testing"

	"deck_srv/internal/config"
	"deck_srv/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseSQLite(t *testing.T) {
	db, err := NewDatabase(Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db, logrus.New()))
	assert.True(t, db.Migrator().HasTable(&models.Deck{}))
	assert.True(t, db.Migrator().HasColumn(&models.Deck{}, "request_id"))
}

func TestNewDatabaseUnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(Config{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Config{
		Server: config.Server{Debug: true},
		DB:     config.DB{Driver: "postgres", DSN: "postgres://localhost/decks"},
	}

	assert.Equal(t, Config{Driver: "postgres", DSN: "postgres://localhost/decks", Debug: true}, FromConfig(cfg))
}
