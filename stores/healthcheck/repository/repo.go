package repository

import (
	"fmt"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
)

const pingTimeout = 2 * time.Second

type impl struct {
	pingers map[string]hcdomain.Pinger
}

// New checks every named pinger, e.g. "mongo", "redis", "postgres"
func New(pingers map[string]hcdomain.Pinger) hcdomain.HealthCheckRepo {
	return &impl{
		pingers: pingers,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()

	for name, p := range im.pingers {
		if err := p.Ping(ctx); err != nil {
			context.WithFields(log.Fields{"err": err, "service": name}).Error("ping failed")
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
