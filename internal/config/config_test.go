package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MemoryIndexWithoutDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "jwt_secret": "s"}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Index.Type)
	require.False(t, cfg.Database.Enabled())
	require.Equal(t, "local", cfg.AI.Embedding.Provider)
}

func TestLoad_PgvectorRequiresDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "jwt_secret": "s", "index": {"type": "pgvector"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_DefaultsToPgvectorWithDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "jwt_secret": "s", "database": {"host": "localhost"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pgvector", cfg.Index.Type)
}
