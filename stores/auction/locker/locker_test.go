package locker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/service/redis"
)

// fakeRedis keeps leases in a map, only the calls the locker makes are implemented
type fakeRedis struct {
	redis.Service

	mu       sync.Mutex
	leases   map[string]string
	setNXErr error
	setNXCnt int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{leases: map[string]string{}}
}

func (f *fakeRedis) SetNX(c ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNXCnt++
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	if _, ok := f.leases[key]; ok {
		return false, nil
	}
	f.leases[key] = string(val)
	return true, nil
}

func (f *fakeRedis) ScriptDo(c ctx.Ctx, hdl *redis.ScriptHdl, keysAndArgs ...interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := keysAndArgs[0].(string), keysAndArgs[1].(string)
	if f.leases[key] != token {
		return int64(0), nil
	}
	delete(f.leases, key)
	return int64(1), nil
}

func (f *fakeRedis) holder(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leases[key]
}

type lockerSuite struct {
	suite.Suite
}

func TestLocker(t *testing.T) {
	suite.Run(t, new(lockerSuite))
}

func (s *lockerSuite) TestLocalTimeout() {
	l := NewLocal(keylock.New(), 30*time.Millisecond)

	release, err := l.Lock(ctx.Background(), "a-1")
	s.Require().NoError(err)

	_, err = l.Lock(ctx.Background(), "a-1")
	s.ErrorIs(err, auction.ErrLockTimeout)

	// other auctions are independent
	other, err := l.Lock(ctx.Background(), "a-2")
	s.Require().NoError(err)
	other()

	release()
	again, err := l.Lock(ctx.Background(), "a-1")
	s.Require().NoError(err)
	again()
}

func (s *lockerSuite) TestLocalCallerCancelled() {
	l := NewLocal(keylock.New(), time.Second)
	release, err := l.Lock(ctx.Background(), "a-1")
	s.Require().NoError(err)
	defer release()

	c, cancel := ctx.WithCancel(ctx.Background())
	cancel()
	_, err = l.Lock(c, "a-1")
	s.ErrorIs(err, context.Canceled)
}

func (s *lockerSuite) TestLocalMutualExclusion() {
	l := NewLocal(keylock.New(), time.Second)

	var wg sync.WaitGroup
	inside, maxInside := 0, 0
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx.Background(), "a-1")
			if err != nil {
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	s.Equal(1, maxInside)
}

func (s *lockerSuite) TestRedisLease() {
	red := newFakeRedis()
	l := NewRedis(red, keylock.New(), RedisConfig{TTL: time.Second, Wait: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond})

	release, err := l.Lock(ctx.Background(), "a-1")
	s.Require().NoError(err)
	s.NotEmpty(red.holder("auctionLock:a-1"))

	release()
	s.Empty(red.holder("auctionLock:a-1"))

	// a second call is a no-op
	release()
}

func (s *lockerSuite) TestRedisLeaseHeldElsewhere() {
	red := newFakeRedis()
	red.leases["auctionLock:a-1"] = "other-process"
	l := NewRedis(red, keylock.New(), RedisConfig{TTL: time.Second, Wait: 40 * time.Millisecond, PollInterval: 5 * time.Millisecond})

	_, err := l.Lock(ctx.Background(), "a-1")
	s.ErrorIs(err, auction.ErrLockTimeout)
	s.Greater(red.setNXCnt, 1)
	s.Equal("other-process", red.holder("auctionLock:a-1"))
}

func (s *lockerSuite) TestRedisUnavailable() {
	red := newFakeRedis()
	red.setNXErr = errors.New("connection refused")
	l := NewRedis(red, keylock.New(), RedisConfig{TTL: time.Second, Wait: time.Second})

	_, err := l.Lock(ctx.Background(), "a-1")
	s.ErrorIs(err, domain.ErrRepositoryUnavailable)
	s.Equal(1, red.setNXCnt)
}
