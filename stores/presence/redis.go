package presence

import (
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/domain/presence"
	"github.com/x-xyz/goauction/service/redis"
)

type redisTracker struct {
	red    redis.Service
	window time.Duration
}

// NewRedis shares live viewers across instances in one sorted set per topic,
// scored by the last seen time in milliseconds.
func NewRedis(red redis.Service, cfg presence.Config) presence.Tracker {
	return &redisTracker{red: red, window: cfg.Window}
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (r *redisTracker) Touch(c ctx.Ctx, topic, viewer string, now time.Time) (int64, error) {
	key := keys.Presence(topic)
	if err := r.red.ZAddFloat(c, key, map[string]float64{viewer: score(now)}); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("red.ZAddFloat failed")
		return 0, domain.NewRepositoryError("presence.Touch", err)
	}
	// idle topics clean themselves up
	if err := r.red.Expire(c, key, 2*r.window); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("red.Expire failed")
	}
	return r.Count(c, topic, now)
}

func (r *redisTracker) Count(c ctx.Ctx, topic string, now time.Time) (int64, error) {
	key := keys.Presence(topic)
	if _, err := r.red.ZRemRangeByScoreFloat(c, key, 0, score(now.Add(-r.window))); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("red.ZRemRangeByScoreFloat failed")
		return 0, domain.NewRepositoryError("presence.Count", err)
	}
	n, err := r.red.ZCard(c, key)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("red.ZCard failed")
		return 0, domain.NewRepositoryError("presence.Count", err)
	}
	return int64(n), nil
}
