package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x-xyz/goauction/base/ctx"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
)

func TestPingDB(t *testing.T) {
	errDown := errors.New("connection refused")
	ok := hcdomain.PingerFunc(func(ctx.Ctx) error { return nil })
	down := hcdomain.PingerFunc(func(ctx.Ctx) error { return errDown })

	assert.NoError(t, New(map[string]hcdomain.Pinger{"mongo": ok, "redis": ok}).PingDB(ctx.Background()))

	err := New(map[string]hcdomain.Pinger{"mongo": ok, "redis": down}).PingDB(ctx.Background())
	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "redis")
}
