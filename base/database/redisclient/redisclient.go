package redisclient

import (
	"context"
	"runtime"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/goauction/base/backoff"
	"github.com/x-xyz/goauction/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond

	dialAttempts = 4
)

// RedisParam is the optional param for redis connection
type RedisParam struct {
	PoolMultiplier float64
	// Retry redials with backoff when the first dial fails
	Retry bool
	DB    int
}

// MustConnectRedis connects to one redis uri
// NOTE This function panics if the connection fails.
func MustConnectRedis(uri, password string, param ...RedisParam) *redis.Pool {
	p, err := ConnectRedis(uri, password, param...)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": uri, "err": err}).Panic("fail to dial Redis")
	}
	return p
}

// ConnectRedis connects to one redis uri
func ConnectRedis(uri, password string, param ...RedisParam) (*redis.Pool, error) {
	maxIdle := 200
	maxActive := 1024
	retry := false
	db := 0
	if len(param) > 0 {
		if param[0].PoolMultiplier > 0 {
			cpu := float64(runtime.NumCPU())
			// allowing 25% idle connection
			maxIdle = int(cpu * param[0].PoolMultiplier / 4)
			maxActive = int(cpu * param[0].PoolMultiplier)
		}
		retry = param[0].Retry
		db = param[0].DB
	}

	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
		redis.DialDatabase(db),
	}
	if password != "" {
		opts = append(opts, redis.DialPassword(password))
	}
	p := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", uri, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			// No need to test if it's been recycled less than 1 sec.
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	attempts := 1
	if retry {
		attempts = dialAttempts
	}

	b := backoff.NewExponential(time.Second, 8*time.Second)
	err := b.Retry(context.Background(), attempts, nil, func() error {
		c, err := p.Dial()
		if err != nil {
			log.Log().WithFields(log.Fields{
				"redisURI": uri,
				"err":      err,
				"attempt":  b.Attempts(),
			}).Error("fail to dial Redis")
			return err
		}
		defer c.Close()
		if _, err := c.Do("PING"); err != nil {
			log.Log().WithFields(log.Fields{
				"redisURI": uri,
				"err":      err,
				"attempt":  b.Attempts(),
			}).Error("fail to ping Redis")
			return err
		}
		return nil
	})
	if err != nil {
		p.Close()
		return nil, err
	}

	log.Log().WithField("redisURI", uri).Info("redis connected")

	return p, nil
}
