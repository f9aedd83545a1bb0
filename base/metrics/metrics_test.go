package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	assert.Nil(t, parseTag(nil))
	assert.Equal(t, []string{"reason:too_low", "status:sold"}, parseTag([]string{"reason", "too_low", "status", "sold"}))
	assert.Panics(t, func() { parseTag([]string{"odd"}) })
}

func TestBumpWithoutAgent(t *testing.T) {
	met := New("test")
	assert.NotPanics(t, func() {
		met.BumpSum("bid.accepted", 1, "auction", "a-1")
		met.BumpAvg("queue", 3)
		met.BumpHistogram("size", 10)
		met.BumpTime("time").End()
	})
	// a malformed tag list is swallowed by the panic guard
	assert.NotPanics(t, func() { met.BumpSum("bad", 1, "odd") })
}
