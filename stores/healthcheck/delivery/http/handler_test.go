package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/x-xyz/goauction/base/ctx"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
	"github.com/x-xyz/goauction/stores/healthcheck/repository"
	"github.com/x-xyz/goauction/stores/healthcheck/usecase"
)

func serve(pingErr error) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("ctx", ctx.Background())
			return next(c)
		}
	})
	repo := repository.New(map[string]hcdomain.Pinger{
		"mongo": hcdomain.PingerFunc(func(ctx.Ctx) error { return pingErr }),
	})
	New(e, usecase.New(repo))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestHealthy(t *testing.T) {
	rec := serve(nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"healthy":"ok"},"status":"success"}`, rec.Body.String())
}

func TestUnhealthy(t *testing.T) {
	rec := serve(errors.New("no reachable servers"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "mongo")
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
}
