package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("S3_BUCKET_NAME", "videos")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "videos", cfg.S3.BucketName)
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.Workouts.UpsertOnAppend)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
database:
  driver: mongo
  uri: mongodb://db:27017
  name: workouts
jwt:
  secret: file-secret
  expiration: 30m
log:
  level: debug
workouts:
  upsert_on_append: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address, "environment wins over the file")
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Workouts.UpsertOnAppend)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{Secret: "s", Expiration: time.Hour},
	}
	assert.ErrorContains(t, cfg.Validate(), "postgres")
}
