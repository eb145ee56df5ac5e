package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	applogger "TTVPull/pkg/logger"
)

func TestRecoverWritesStructuredLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	log, err := applogger.New(&applogger.Config{Level: "debug", Format: "json", Output: logPath})
	require.NoError(t, err)

	e := echo.New()
	e.Use(Recover(log))
	e.GET("/boom", func(c echo.Context) error {
		panic("sampler exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { e.ServeHTTP(rec, req) })

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal Server Error")

	written, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(written), "panic recovered")
	require.Contains(t, string(written), "sampler exploded")
}

func TestRecoverLeavesHealthyHandlersAlone(t *testing.T) {
	e := echo.New()
	e.Use(Recover(nil))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
