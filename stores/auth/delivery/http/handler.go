package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/delivery"
	authMiddleware "github.com/x-xyz/goauction/stores/auth/delivery/http/middleware"
)

type authHandler struct{}

func New(e *echo.Echo, am *authMiddleware.AuthMiddleware) {
	handler := &authHandler{}
	g := e.Group("/auth")
	g.GET("/me", handler.me, am.Auth())
}

// me returns the identity carried by the bearer token
func (h *authHandler) me(c echo.Context) error {
	res := struct {
		UserId string `json:"userId"`
	}{
		UserId: authMiddleware.UserId(c).String(),
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
