// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/geoform/geocode"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray geoform.yaml
// or .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, geocode.DefaultEndpoint, cfg.Geocoder.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Geocoder.Timeout)
	assert.InDelta(t, 5.0, cfg.Geocoder.RateLimit, 0)
	assert.Equal(t, 5, cfg.Geocoder.Burst)
	assert.Empty(t, cfg.History.DBPath)
	assert.False(t, cfg.Trace.HTTP)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := inTempDir(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: 0.0.0.0:9000
  session_ttl: 5m
geocoder:
  timeout: 3s
  user_agent: from-file
history:
  db_path: from-file.duckdb
`), 0o600))

	t.Setenv("GEOFORM_GEOCODER_USER_AGENT", "from-env")
	t.Setenv("GEOFORM_HISTORY_DB_PATH", "from-env.duckdb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.Bool("trace-http", false, "")
	require.NoError(t, flags.Parse([]string{"--db", "from-flag.duckdb", "--trace-http"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, "from-env", cfg.Geocoder.UserAgent)
	assert.Equal(t, "from-flag.duckdb", cfg.History.DBPath)
	assert.True(t, cfg.Trace.HTTP)

	opts := cfg.GeocoderOptions()
	assert.Equal(t, "from-env", opts.UserAgent)
	assert.True(t, opts.EnableHTTPTrace)
	assert.False(t, opts.EnableHTTPBodyTrace)
}

func TestLoadDotEnv(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("GEOFORM_SERVER_MODE=debug\n"), 0o600))

	t.Cleanup(func() { _ = os.Unsetenv("GEOFORM_SERVER_MODE") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.Mode)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := inTempDir(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Mode: "loud"},
		Geocoder: GeocoderConfig{Endpoint: "ftp://example.com", RateLimit: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{
		"server.addr",
		"server.mode",
		"server.session_ttl",
		"geocoder.endpoint",
		"geocoder.timeout",
		"geocoder.rate_limit",
	} {
		assert.ErrorContains(t, err, want)
	}
}
