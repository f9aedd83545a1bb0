package locker

import (
	"context"
	"errors"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/domain/auction"
)

type localLocker struct {
	km   *keylock.KeyedMutex
	wait time.Duration
}

// NewLocal serializes writers of one auction inside this process. Waiting
// longer than wait fails with auction.ErrLockTimeout.
func NewLocal(km *keylock.KeyedMutex, wait time.Duration) auction.Locker {
	return &localLocker{km: km, wait: wait}
}

func (l *localLocker) Lock(c ctx.Ctx, auctionId string) (func(), error) {
	return lockLocal(c, l.km, auctionId, l.wait)
}

func lockLocal(c ctx.Ctx, km *keylock.KeyedMutex, auctionId string, wait time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(c.Context, wait)
	defer cancel()

	release, err := km.Lock(waitCtx, auctionId)
	if err == nil {
		return release, nil
	}
	// the caller's own cancellation is reported as is
	if c.Err() != nil {
		return nil, c.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.WithField("auctionId", auctionId).Warn("auction lock wait timed out")
		return nil, auction.ErrLockTimeout
	}
	return nil, err
}
