package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFieldDoesNotShareBacking(t *testing.T) {
	base := Log().WithField("a", 1)
	l1 := base.WithField("b", 2)
	l2 := base.WithField("c", 3)

	assert.Equal(t, []interface{}{"a", 1, "b", 2}, l1.fields)
	assert.Equal(t, []interface{}{"a", 1, "c", 3}, l2.fields)
	assert.Equal(t, []interface{}{"a", 1}, base.fields)
}

func TestInit(t *testing.T) {
	assert.NoError(t, Init("debug", true))
	assert.Error(t, Init("loud", false))
	assert.NoError(t, Init("", false))
}
