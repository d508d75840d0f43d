package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 2*time.Minute, cfg.Groups.CacheTTL)
	assert.Equal(t, "scoutdesk_drafts", cfg.NATS.DraftBucket)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoutdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
database:
  path: /var/lib/scoutdesk/app.db
groups:
  cache_ttl: 30s
`), 0o600))

	t.Setenv("DATABASE_PATH", "/tmp/override.db")
	t.Setenv("NATS_DRAFT_BUCKET", "drafts_test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "drafts_test", cfg.NATS.DraftBucket)
	assert.Equal(t, 30*time.Second, cfg.Groups.CacheTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateNeo4jCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Neo4j.URI = "neo4j://localhost:7687"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_USERNAME")
	assert.Contains(t, err.Error(), "NEO4J_PASSWORD")

	cfg.Neo4j.Username = "neo4j"
	cfg.Neo4j.Password = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.base_url", envKey("SERVER_BASE_URL"))
	assert.Equal(t, "neo4j.uri", envKey("NEO4J_URI"))
	assert.Equal(t, "", envKey("HOME"))
	assert.Equal(t, "", envKey("GOPATH_X"))
}
