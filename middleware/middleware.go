package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/delivery"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
)

// GoMiddleware represent the data-struct for middleware
type GoMiddleware struct {
	met metrics.Service
}

// InitMiddleware initialize the middleware
func InitMiddleware() *GoMiddleware {
	return &GoMiddleware{met: metrics.New("http")}
}

// CORS will handle the CORS middleware
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		return next(c)
	}
}

// AddContext adds custom context into echo
func (m *GoMiddleware) AddContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			reqId := c.Response().Header().Get(echo.HeaderXRequestID)
			if len(reqId) == 0 {
				reqId = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if len(reqId) == 0 {
				reqId = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, reqId)

			cont := ctx.WithValue(ctx.Background(), "requestID", reqId)
			cont = ctx.WithContext(cont, c.Request().Context())
			c.Set("ctx", cont)
			return next(c)
		}
	}
}

// ResponseLogger logs response for every request
func (m *GoMiddleware) ResponseLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer m.met.BumpTime("request.time", "method", c.Request().Method, "path", c.Path()).End()

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			fields := log.Fields{
				"ms":         time.Since(start).Seconds() * 1000,
				"httpStatus": res.Status,
				"host":       req.Host,
				"remoteIP":   c.RealIP(),
				"uri":        req.URL.Path,
				"httpMethod": req.Method,
				"size":       res.Size,
				"userAgent":  req.UserAgent(),
				"referer":    req.Header.Get("Referer"),
			}

			n := res.Status
			switch {
			case n >= 400:
				fields["nextErr"] = err
			default:
			}

			if cont, ok := c.Get("ctx").(ctx.Ctx); ok {
				cont.WithFields(fields).Info("response")
			} else {
				log.Log().WithFields(fields).Info("response")
			}
			return nil
		}
	}
}

// IsValidId rejects requests whose path param is not a uuid
func IsValidId(params ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			for _, param := range params {
				if _, err := uuid.Parse(c.Param(param)); err != nil {
					return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid "+param)
				}
			}
			return next(c)
		}
	}
}
