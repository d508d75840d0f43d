package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/config"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

func TestInitializeAppLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Database.Path = filepath.Join(dir, "scoutdesk.db")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")

	a, cleanup, err := InitializeApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rec := httptest.NewRecorder()
	a.HTTP.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/postings/missing", nil)
	req.Header.Set(auth.HeaderRole, "admin")
	rec = httptest.NewRecorder()
	a.HTTP.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeAppBadDatabase(t *testing.T) {
	cfg := config.Defaults()
	cfg.Database.Path = filepath.Join(t.TempDir(), "missing", "dir", "scoutdesk.db")
	cfg.Storage.UploadDir = t.TempDir()

	_, _, err := InitializeApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
