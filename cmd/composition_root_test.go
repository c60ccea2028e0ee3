package cmd_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest/cmd"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompositionRoot_WithoutBackends(t *testing.T) {
	cfg, err := cmd.LoadConfig(env(nil))
	require.NoError(t, err)

	app, err := cmd.NewCompositionRoot(cfg, discardLogger(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, app.Store().Load(t.Context()))

	e, err := app.HTTPServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Nil(t, app.CreateSyncManifestCommandHandler())
	assert.Nil(t, app.CreateGetDaySummaryQueryHandler())

	jobs := app.JobManager()
	require.NoError(t, jobs.StartAll())
	jobs.StopAll()

	require.NoError(t, app.Shutdown(t.Context()))
}

func TestCompositionRoot_PersistsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg, err := cmd.LoadConfig(env(map[string]string{"REDIS_ADDR": mr.Addr()}))
	require.NoError(t, err)

	client, err := cmd.OpenRedis(t.Context(), cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	app, err := cmd.NewCompositionRoot(cfg, discardLogger(), client, nil)
	require.NoError(t, err)
	require.NoError(t, app.Store().Load(t.Context()))

	e, err := app.HTTPServer()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items",
		bytes.NewBufferString(`{"code":"A1","name":"Sato","address":"Tokyo 1-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.True(t, mr.Exists(cmd.DefaultManifestKey))
	require.NoError(t, app.Shutdown(t.Context()))
}

func TestOpenRedis_NotConfigured(t *testing.T) {
	client, err := cmd.OpenRedis(t.Context(), cmd.Config{})

	require.NoError(t, err)
	assert.Nil(t, client)
}
