package presence

import (
	"time"

	"github.com/x-xyz/goauction/base/ctx"
)

// Tracker counts viewers seen on a topic within a sliding window. A viewer
// touching the same topic twice is counted once.
type Tracker interface {
	// Touch records viewer on topic at now and returns the live viewer count
	Touch(ctx ctx.Ctx, topic, viewer string, now time.Time) (int64, error)
	Count(ctx ctx.Ctx, topic string, now time.Time) (int64, error)
}

type Config struct {
	// viewers not seen within Window are no longer live
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{Window: 30 * time.Second}
}
