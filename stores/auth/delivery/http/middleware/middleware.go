package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/domain"
)

// UserIdKey is the echo context key of the authenticated user
const UserIdKey = "userId"

type AuthMiddleware struct {
	auth     domain.AuthUsecase
	adminIds []string
}

func New(auth domain.AuthUsecase, adminIds []string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:     auth,
		adminIds: adminIds,
	}
}

func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) OptionalAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			return len(auth) == 0
		},
		Validator: m.validateAuthToken,
	})
}

func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userId, _ := c.Get(UserIdKey).(domain.UserId)

			for _, admin := range m.adminIds {
				if admin == userId.String() {
					return next(c)
				}
			}

			return delivery.MakeJsonResp(c, http.StatusForbidden, "require admin privilege")
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	cont := c.Get("ctx").(ctx.Ctx)
	if uid, err := m.auth.ParseToken(cont, key); err != nil {
		cont.WithField("err", err).Warn("auth.ParseToken failed")
		return false, err
	} else {
		c.Set(UserIdKey, uid)
		c.Set("ctx", ctx.WithValue(cont, UserIdKey, uid.String()))
		return true, nil
	}
}

// UserId returns the authenticated user, empty for anonymous requests
func UserId(c echo.Context) domain.UserId {
	uid, _ := c.Get(UserIdKey).(domain.UserId)
	return uid
}
