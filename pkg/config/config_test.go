package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 49.0, cfg.Grid.MinLat)
	assert.Equal(t, 24.0, cfg.Grid.MaxLon)
	assert.Equal(t, "nato", cfg.Grid.Alphabet)
	assert.Equal(t, 12, cfg.Grid.CodeLength)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, gridcode.DefaultBounds(), codec.Bounds())
	assert.Equal(t, gridcode.DefaultLength, codec.Length())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
grid:
  min_lat: -90
  max_lat: 90
  min_lon: -180
  max_lon: 180
  alphabet: raf
  code_length: 16
server:
  port: 9090
  timeout: 3s
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.True(t, cfg.Log.Development)

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, "raf", codec.Alphabet().Name())
	assert.Equal(t, 16, codec.Length())

	code, err := codec.Encode(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Nan", code[0])
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NATOGRID_SERVER_PORT", "7070")
	t.Setenv("NATOGRID_GRID_ALPHABET", "letters")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "letters", cfg.Grid.Alphabet)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NATOGRID_SERVER_RATE_LIMIT=25\nNATOGRID_LOG_LEVEL=warn\n"), 0o644))

	// Restored to the previous state when the test ends
	for _, key := range []string{"NATOGRID_SERVER_RATE_LIMIT", "NATOGRID_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Server.RateLimit)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMalformedDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("grid: [unclosed\n"), 0o644))

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
grid:
  min_lat: 55
  max_lat: 49
  alphabet: klingon
  code_length: 7
server:
  port: 0
log:
  level: loud
`)

	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "latitude")
	assert.Contains(t, msg, "klingon")
	assert.Contains(t, msg, "grid.code_length")
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "log.level")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	p := PostGISConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "geodb"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=geodb sslmode=disable", p.DSN())
}
