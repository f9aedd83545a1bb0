package locker

import (
	"sync"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/google/uuid"

	"github.com/x-xyz/goauction/base/backoff"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/keys"
	"github.com/x-xyz/goauction/service/redis"
)

// deletes the lease only while it still carries our token
var unlockScript = redis.NewScriptHdl(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	// lease lifetime, bounds how long a crashed holder blocks others
	TTL  time.Duration
	Wait time.Duration
	// pause between SET NX attempts
	PollInterval time.Duration
}

type redisLocker struct {
	km  *keylock.KeyedMutex
	red redis.Service
	cfg RedisConfig
}

// NewRedis serializes writers of one auction across processes with a redis
// lease. Writers inside this process queue on a local mutex first so only
// one of them polls redis.
func NewRedis(red redis.Service, km *keylock.KeyedMutex, cfg RedisConfig) auction.Locker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 20 * time.Millisecond
	}
	return &redisLocker{km: km, red: red, cfg: cfg}
}

func (l *redisLocker) Lock(c ctx.Ctx, auctionId string) (func(), error) {
	deadline := time.Now().Add(l.cfg.Wait)

	releaseLocal, err := lockLocal(c, l.km, auctionId, l.cfg.Wait)
	if err != nil {
		return nil, err
	}

	key := keys.AuctionLock(auctionId)
	token := uuid.NewString()

	waitCtx, cancel := ctx.WithTimeout(c, time.Until(deadline))
	defer cancel()

	acquired := false
	b := backoff.NewConstant(l.cfg.PollInterval)
	busy := func(err error) bool { return err == auction.ErrLockTimeout }
	err = b.Retry(waitCtx, 0, busy, func() error {
		ok, err := l.red.SetNX(waitCtx, key, []byte(token), l.cfg.TTL)
		if err != nil {
			return err
		}
		if !ok {
			return auction.ErrLockTimeout
		}
		acquired = true
		return nil
	})
	if !acquired {
		releaseLocal()
		if c.Err() != nil {
			return nil, c.Err()
		}
		if err == auction.ErrLockTimeout || waitCtx.Err() != nil {
			c.WithFields(log.Fields{"auctionId": auctionId, "err": err}).Warn("auction lease wait timed out")
			return nil, auction.ErrLockTimeout
		}
		return nil, domain.NewRepositoryError("locker.Lock", err)
	}

	// the lease has to go even if the request ctx is already cancelled
	bg := ctx.Detach(c)
	var once sync.Once
	return func() {
		once.Do(func() {
			if _, err := redigo.Int(l.red.ScriptDo(bg, unlockScript, key, token)); err != nil {
				bg.WithFields(log.Fields{
					"err":       err,
					"auctionId": auctionId,
				}).Warn("release auction lease failed, it expires with its ttl")
			}
			releaseLocal()
		})
	}, nil
}
