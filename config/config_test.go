package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[datastore]
path = ""

[cache]
verifying_keys = 4

[api]
admin_token = "secret"

[log]
level = "debug"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "", cfg.Datastore.Path)
	require.Equal(t, "", cfg.DatastorePath())
	require.Equal(t, 4, cfg.Cache.VerifyingKeys)
	require.Equal(t, "0.0.0.0:8010", cfg.API.Listen)
	require.Equal(t, "secret", cfg.API.AdminToken)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown key": "[api]\nport = 1\n",
		"bad cache":   "[cache]\nverifying_keys = 0\n",
		"bad level":   "[log]\nlevel = \"loud\"\n",
		"bad syntax":  "[api\n",
	} {
		path := filepath.Join(dir, name+".toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		require.Error(t, err, name)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".porep-verifier", "datastore"), Default().DatastorePath())
	require.Equal(t, "/abs/path", expandHome("/abs/path"))
}
