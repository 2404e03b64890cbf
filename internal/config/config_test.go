package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "TAVANT", cfg.Deck.Brand)
	assert.Equal(t, "#F26522", cfg.Deck.Accent)
	assert.Equal(t, "Tavant_WSR", cfg.Deck.FilePrefix)
	assert.True(t, cfg.Deck.Workbook)
	assert.Equal(t, time.Hour, cfg.Storage.PresignExpiration)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := inTempDir(t)
	yaml := []byte(`
server:
  address: ":9090"
deck:
  brand: ACME
  accent: "#0066CC"
storage:
  type: s3
  s3:
    bucket: decks
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("APP_DECK_OUTPUT_DIR", "/tmp/decks")
	t.Setenv("APP_LOGGING_LEVEL", "info")
	t.Setenv("APP_STORAGE_PRESIGN_EXPIRATION", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "ACME", cfg.Deck.Brand)
	assert.Equal(t, "#0066CC", cfg.Deck.Accent)
	assert.Equal(t, "/tmp/decks", cfg.Deck.OutputDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "decks", cfg.Storage.S3.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
}

func TestValidateConfig(t *testing.T) {
	valid := Config{
		Server:  Server{Address: ":8080"},
		DB:      DB{Driver: "sqlite", DSN: "decks.db"},
		Storage: Storage{Type: "local", BasePath: "./data"},
		Logging: Logging{Level: "info"},
		Deck:    Deck{Brand: "TAVANT", OutputDir: "./out"},
	}
	require.NoError(t, validateConfig(valid))

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }, "server address"},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, "database driver"},
		{"empty dsn", func(c *Config) { c.DB.DSN = "" }, "DSN"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "storage type"},
		{"negative presign", func(c *Config) { c.Storage.PresignExpiration = -time.Minute }, "presign_expiration"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3"; c.Storage.S3.Region = "us-east-1" }, "S3 bucket"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging level"},
		{"empty brand", func(c *Config) { c.Deck.Brand = "" }, "deck brand"},
		{"empty output dir", func(c *Config) { c.Deck.OutputDir = "" }, "output_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStringHidesSecrets(t *testing.T) {
	cfg := Config{
		DB:      DB{Driver: "postgres", DSN: "postgres://user:secret@db/decks"},
		Storage: Storage{Type: "s3", S3: S3{AccessKey: "AKIA", SecretKey: "topsecret"}},
	}

	s := cfg.String()
	assert.NotContains(t, s, "secret@db")
	assert.NotContains(t, s, "topsecret")
	assert.Contains(t, s, "[HIDDEN]")
}
