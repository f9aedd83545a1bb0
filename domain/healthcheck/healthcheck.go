package healthcheck

import (
	"github.com/x-xyz/goauction/base/ctx"
)

// Pinger is a backing service the process depends on
type Pinger interface {
	Ping(ctx ctx.Ctx) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx ctx.Ctx) error

func (f PingerFunc) Ping(ctx ctx.Ctx) error {
	return f(ctx)
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) error
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingDB(context ctx.Ctx) error
}
