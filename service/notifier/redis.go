package notifier

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/service/redis"
)

type redisSink struct {
	redis redis.Service
}

// NewRedis publishes on the auction's pub/sub channel for live viewers
func NewRedis(r redis.Service) Sink {
	return &redisSink{redis: r}
}

func (r *redisSink) Name() string {
	return "redis"
}

func (r *redisSink) Publish(c ctx.Ctx, e *auction.Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	_, err = r.redis.Publish(c, keys.AuctionChannel(e.AuctionId), data)
	return err
}

func (r *redisSink) Close() error {
	return nil
}
