// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
root: /var/lib/catctl
store: s3
ledger: /var/lib/catctl/ledger.db
s3:
  bucket: catalog-snapshots
  prefix: prod
cache:
  clean: 24
colors:
  title: "#ffaf00"
ls:
  defaults: -t,-c
  store: local
diff:
  defaults:
    - --kind
    - product
run:
  report: "false"
  limit: "7"
bad:
  list: [1, 2]
`

// withConfig writes content to a temp file, points CATCTL_CFG_FILE at it and
// resets the global Config.
func withConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvVar, path)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
	return path
}

func TestLoad(t *testing.T) {
	path := withConfig(t, testYAML)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, cfg, Config)
	assert.Equal(t, "s3", cfg.Data["store"])
}

func TestLoad_ExplicitPath(t *testing.T) {
	withConfig(t, "store: local\n")
	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("store: s3\n"), 0o600))

	cfg, err := Load(other)
	require.NoError(t, err)
	assert.Equal(t, other, cfg.Source)
	assert.Equal(t, "s3", cfg.Data["store"])
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing env file", func(t *testing.T) {
		t.Setenv(EnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.ErrorContains(t, err, "config file not found")
	})

	t.Run("env is a directory", func(t *testing.T) {
		t.Setenv(EnvVar, t.TempDir())
		_, err := Load()
		assert.ErrorContains(t, err, "points to a directory")
	})

	t.Run("no file anywhere", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		withConfig(t, "store: [unclosed\n")
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse")
	})
}

func TestGetters(t *testing.T) {
	withConfig(t, testYAML)
	_, err := Load()
	require.NoError(t, err)

	s, err := GetString("s3.bucket")
	require.NoError(t, err)
	assert.Equal(t, "catalog-snapshots", s)

	s, err = GetString("cache.clean")
	require.NoError(t, err)
	assert.Equal(t, "24", s)

	s, err = GetString("s3.region", "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s)

	_, err = GetString("s3.region")
	assert.Error(t, err)

	_, err = GetString("s3")
	assert.Error(t, err, "maps are not strings")

	i, err := GetInt("cache.clean")
	require.NoError(t, err)
	assert.Equal(t, 24, i)

	i, err = GetInt("missing", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = GetInt("store")
	assert.Error(t, err)

	i, err = GetInt("run.limit")
	require.NoError(t, err)
	assert.Equal(t, 7, i)

	b, err := GetBool("run.report")
	require.NoError(t, err)
	assert.False(t, b)

	b, err = GetBool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = GetBool("store")
	assert.Error(t, err)
}

func TestNamespace(t *testing.T) {
	withConfig(t, testYAML)
	_, err := Load()
	require.NoError(t, err)

	SetNamespace("ls")
	s, err := GetString("store")
	require.NoError(t, err)
	assert.Equal(t, "local", s, "namespaced key wins")

	s, err = GetString("root")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/catctl", s, "global key is the fallback")

	SetNamespace("run")
	s, err = GetString("store")
	require.NoError(t, err)
	assert.Equal(t, "s3", s)

	// Reloading keeps the namespace.
	_, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "run", Config.Namespace)
}

func TestGetStringSlice(t *testing.T) {
	withConfig(t, testYAML)
	_, err := Load()
	require.NoError(t, err)

	SetNamespace("ls")
	got, err := GetStringSlice("defaults")
	require.NoError(t, err)
	assert.Equal(t, []string{"-t", "-c"}, got)

	SetNamespace("diff")
	got, err = GetStringSlice("defaults")
	require.NoError(t, err)
	assert.Equal(t, []string{"--kind", "product"}, got)

	SetNamespace("")
	got, err = GetStringSlice("nope", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)

	_, err = GetStringSlice("bad.list")
	assert.Error(t, err)

	_, err = GetStringSlice("cache")
	assert.Error(t, err)
}

func TestGetWithoutConfig(t *testing.T) {
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })

	_, err := GetString("root")
	assert.Error(t, err)

	s, err := GetString("root", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)
}
