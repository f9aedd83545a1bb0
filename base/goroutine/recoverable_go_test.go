package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x-xyz/goauction/base/log"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	<-RecoverableGo(
		func() {
			res = append(res, "run task")
			panic("panic")
		},
		WithName("sweep"),
		WithLogger(log.Log().WithField("test", true)),
		WithBeforeStart(func() {
			res = append(res, "before start")
		}),
		WithAfterEnded(func() {
			res = append(res, "after ended")
		}),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered")
			res = append(res, p.(string))
		}),
	)

	assert.Equal(t, []string{
		"before start",
		"run task",
		"after ended",
		"after recovered",
		"panic",
	}, res)
}

func TestRecoverableRun(t *testing.T) {
	assert.Nil(t, RecoverableRun(func() {}))

	evt := RecoverableRun(func() { panic("boom") })
	if assert.NotNil(t, evt) {
		assert.Equal(t, "boom", evt.Panic)
		assert.NotEmpty(t, evt.Stack)
	}
}
