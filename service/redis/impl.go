package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/keys"
)

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

// New redis pool
func New(name string, metrics metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   metrics,
		pools: pools,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	if r.pools == nil || r.pools.Src == nil {
		return nil, ErrGapTime
	}

	conn := r.pools.Src.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}

	return conn, nil
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := redis.DoContext(conn, context, commandName, args...)

	// Closing conn explicitly asap improves redigo's performance,
	// bacause longer an connection is hold and not closed, the
	// pool need to handle more connections at the same time and
	// getConn time might burst.
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) tags(funcName, key string) []string {
	return []string{"func", funcName, "cluster", r.name, "prefix", keys.GetPrefix(key)}
}

func (r *redImpl) bumpTTL(expire time.Duration, tags []string) {
	if expire == Forever {
		r.met.BumpSum("ttl.forever", 1, tags...)
	} else {
		r.met.BumpAvg("ttl", expire.Seconds(), tags...)
	}
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err != nil {
		if err != ErrNotFound {
			context.WithField("err", err).Error("get redis failed")
		}
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()
	r.bumpTTL(expire, tags)
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	var err error
	if expire == Forever {
		_, err = r.connDo(context, "SET", key, val)
	} else {
		_, err = r.connDo(context, "SET", key, val, "PX", expire.Milliseconds())
	}
	if err != nil {
		context.WithField("err", err).Error("set redis failed")
	}
	return err
}

func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	tags := r.tags("setnx", key)
	defer r.met.BumpTime("time", tags...).End()
	r.bumpTTL(expire, tags)

	var err error
	if expire == Forever {
		_, err = redis.String(r.connDo(context, "SET", key, val, "NX"))
	} else {
		_, err = redis.String(r.connDo(context, "SET", key, val, "NX", "PX", expire.Milliseconds()))
	}
	// nil reply means the key already exists
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		context.WithField("err", err).Error("setNX redis failed")
		return false, err
	}
	return true, nil
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	defer r.met.BumpTime("time", r.tags("del", ks[0])...).End()

	args := make([]interface{}, 0, len(ks))
	for _, k := range ks {
		args = append(args, k)
	}
	n, err := redis.Int(r.connDo(context, "DEL", args...))
	if err != nil {
		context.WithField("err", err).Error("del redis failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	tags := r.tags("expire", key)
	defer r.met.BumpTime("time", tags...).End()
	r.bumpTTL(ttl, tags)

	if ttl == Forever {
		_, err := r.connDo(context, "PERSIST", key)
		if err != nil {
			context.WithField("err", err).Error("Expire PERSIST redis key failed")
		}
		return err
	}

	n, err := redis.Int(r.connDo(context, "PEXPIRE", key, ttl.Milliseconds()))
	if err != nil {
		context.WithField("err", err).Error("Expire redis failed")
		return err
	}
	// Return value will be 0 if key does not exist or the timeout could not be set.
	if n != 1 {
		return ErrExpireNotExistOrTimeout
	}
	return nil
}

func (r *redImpl) ZAddFloat(context ctx.Ctx, key string, memScore map[string]float64) error {
	defer r.met.BumpTime("time", r.tags("zaddfloat", key)...).End()

	args := []interface{}{key}
	for m, s := range memScore {
		args = append(args, s, m)
	}
	if _, err := r.connDo(context, "ZADD", args...); err != nil {
		context.WithField("err", err).Error("ZAdd redis failed")
		return err
	}
	return nil
}

func (r *redImpl) ZRemRangeByScoreFloat(context ctx.Ctx, key string, minScore, maxScore float64) (int, error) {
	defer r.met.BumpTime("time", r.tags("zremrangebyscore", key)...).End()

	count, err := redis.Int(r.connDo(context, "ZREMRANGEBYSCORE", key, minScore, maxScore))
	if err != nil {
		context.WithField("err", err).Error("ZRemRangeByScore redis failed")
		return 0, err
	}
	return count, nil
}

func (r *redImpl) ZCard(context ctx.Ctx, key string) (int, error) {
	defer r.met.BumpTime("time", r.tags("zcard", key)...).End()

	val, err := redis.Int(r.connDo(context, "ZCARD", key))
	if err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("ZCard redis failed")
	}
	return val, err
}

func (r *redImpl) ZRem(context ctx.Ctx, key string, members ...string) error {
	defer r.met.BumpTime("time", r.tags("zrem", key)...).End()

	vars := []interface{}{key}
	for _, m := range members {
		vars = append(vars, m)
	}

	if _, err := r.connDo(context, "ZREM", vars...); err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("ZRem redis failed")
		return err
	}
	return nil
}

func (r *redImpl) Publish(context ctx.Ctx, channel string, msg []byte) (int, error) {
	tags := r.tags("publish", channel)
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(msg)), tags...)

	n, err := redis.Int(r.connDo(context, "PUBLISH", channel, msg))
	if err != nil {
		context.WithField("err", err).Error("Publish redis failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) ScriptDo(context ctx.Ctx, hdl *ScriptHdl, keysAndArgs ...interface{}) (interface{}, error) {
	defer r.met.BumpTime("time", "func", "scriptdo", "cluster", r.name, "prefix", hdl.prefix(keysAndArgs...)).End()

	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
		}
	}()

	value, err := hdl.Do(conn, keysAndArgs...)
	if err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("ScriptDo redis failed")
	}

	return value, err
}

func (r *redImpl) Ping(context ctx.Ctx) error {
	_, err := r.connDo(context, "PING")
	return err
}

func (r *redImpl) Name() string {
	return r.name
}
