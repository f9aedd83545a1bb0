package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/keys"
)

const (
	// Forever means no expiration
	Forever time.Duration = -1
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = redis.ErrNil
	// ErrGapTime is returned while no pool is available for the command
	ErrGapTime = errors.New("redis pool unavailable")
	// ErrExpireNotExistOrTimeout is returned by Expire when the key is gone
	ErrExpireNotExistOrTimeout = errors.New("key does not exist or the timeout could not be set")
)

// Service is the redis command surface used by the repo
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX reports whether the key was set
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error)
	Del(context ctx.Ctx, keys ...string) (int, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error

	ZAddFloat(context ctx.Ctx, key string, memScore map[string]float64) error
	ZRemRangeByScoreFloat(context ctx.Ctx, key string, minScore, maxScore float64) (int, error)
	ZCard(context ctx.Ctx, key string) (int, error)
	ZRem(context ctx.Ctx, key string, members ...string) error

	// Publish returns the number of subscribers that received the message
	Publish(context ctx.Ctx, channel string, msg []byte) (int, error)

	ScriptDo(context ctx.Ctx, hdl *ScriptHdl, keysAndArgs ...interface{}) (interface{}, error)
	Ping(context ctx.Ctx) error

	Name() string
}

// ScriptHdl is a lua script loaded by sha and sent in full on NOSCRIPT
type ScriptHdl struct {
	keyCount int
	script   *redis.Script
}

func NewScriptHdl(keyCount int, src string) *ScriptHdl {
	return &ScriptHdl{
		keyCount: keyCount,
		script:   redis.NewScript(keyCount, src),
	}
}

func (h *ScriptHdl) Do(c redis.Conn, keysAndArgs ...interface{}) (interface{}, error) {
	return h.script.Do(c, keysAndArgs...)
}

// prefix of the first key, used as metric tag
func (h *ScriptHdl) prefix(keysAndArgs ...interface{}) string {
	if h.keyCount == 0 || len(keysAndArgs) == 0 {
		return ""
	}
	if k, ok := keysAndArgs[0].(string); ok {
		return keys.GetPrefix(k)
	}
	return ""
}
