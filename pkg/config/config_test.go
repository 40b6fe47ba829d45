package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirEmpty(t)
	unsetenv(t, "PORT")
	unsetenv(t, "ENV")
	unsetenv(t, "REAPER_INTERVAL")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "@every 10m", cfg.ReaperInterval)
	assert.False(t, cfg.WSSendBacklog)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "POSTGRES_CONN_STR=host=fromdotenv\nWS_SEND_BACKLOG=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	chdir(t, dir)
	unsetenv(t, "POSTGRES_CONN_STR")
	unsetenv(t, "WS_SEND_BACKLOG")

	cfg := Load()

	assert.Equal(t, "host=fromdotenv", cfg.PostgresConnStr)
	assert.True(t, cfg.WSSendBacklog)
}

func TestLoadEnvironmentOverridesDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "MONGO_URI=mongodb://fromdotenv:27017\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	chdir(t, dir)
	t.Setenv("MONGO_URI", "mongodb://fromenv:27017")

	cfg := Load()

	assert.Equal(t, "mongodb://fromenv:27017", cfg.MongoURI)
}

func chdirEmpty(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// unsetenv clears a variable for the test while restoring it afterwards.
// godotenv only fills variables that are absent, so an empty value is not
// enough.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
