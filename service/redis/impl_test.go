package redis

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/database/redisclient"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/keys"
)

func TestScriptHdlPrefix(t *testing.T) {
	req := require.New(t)
	hdl := NewScriptHdl(1, "return 1")
	req.Equal("auctionLock", hdl.prefix(keys.AuctionLock("a1"), "token"))
	req.Equal("", hdl.prefix())
	req.Equal("", NewScriptHdl(0, "return 1").prefix("x:y:z"))
}

func TestNoPool(t *testing.T) {
	req := require.New(t)
	r := New("test", metrics.New("redis"), &Pools{})
	_, err := r.Get(ctx.Background(), "k")
	req.Equal(ErrGapTime, err)
}

// redisSuite runs against a live redis, set TEST_REDIS_URI (host:port) to enable
type redisSuite struct {
	suite.Suite
	r Service
	c ctx.Ctx
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(redisSuite))
}

func (s *redisSuite) SetupSuite() {
	uri := os.Getenv("TEST_REDIS_URI")
	if uri == "" {
		s.T().Skip("TEST_REDIS_URI not set")
	}
	pool := redisclient.MustConnectRedis(uri, "")
	s.r = New("test", metrics.New("redis"), &Pools{Src: pool})
	s.c = ctx.Background()
}

func (s *redisSuite) SetupTest() {
	_, err := s.r.Del(s.c, "t:get", "t:nx", "t:zset")
	s.Require().NoError(err)
}

func (s *redisSuite) TestGetSet() {
	_, err := s.r.Get(s.c, "t:get")
	s.Equal(ErrNotFound, err)

	s.Require().NoError(s.r.Set(s.c, "t:get", []byte("v"), time.Minute))
	v, err := s.r.Get(s.c, "t:get")
	s.Require().NoError(err)
	s.Equal([]byte("v"), v)
}

func (s *redisSuite) TestSetNX() {
	ok, err := s.r.SetNX(s.c, "t:nx", []byte("a"), time.Minute)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.r.SetNX(s.c, "t:nx", []byte("b"), time.Minute)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *redisSuite) TestSortedSet() {
	s.Require().NoError(s.r.ZAddFloat(s.c, "t:zset", map[string]float64{"a": 1, "b": 2, "c": 3}))
	n, err := s.r.ZRemRangeByScoreFloat(s.c, "t:zset", 0, 1.5)
	s.Require().NoError(err)
	s.Equal(1, n)

	card, err := s.r.ZCard(s.c, "t:zset")
	s.Require().NoError(err)
	s.Equal(2, card)

	s.Require().NoError(s.r.ZRem(s.c, "t:zset", "b"))
	card, err = s.r.ZCard(s.c, "t:zset")
	s.Require().NoError(err)
	s.Equal(1, card)
}

func (s *redisSuite) TestScriptDo() {
	hdl := NewScriptHdl(1, `return redis.call("SET", KEYS[1], ARGV[1])`)
	_, err := s.r.ScriptDo(s.c, hdl, "t:get", "x")
	s.Require().NoError(err)
	v, err := s.r.Get(s.c, "t:get")
	s.Require().NoError(err)
	s.Equal([]byte("x"), v)
}
