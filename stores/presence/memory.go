package presence

import (
	"sync"
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/presence"
)

type memoryTracker struct {
	window time.Duration

	mu     sync.Mutex
	topics map[string]map[string]time.Time
}

// NewMemory tracks viewers of this instance only
func NewMemory(cfg presence.Config) presence.Tracker {
	return &memoryTracker{
		window: cfg.Window,
		topics: map[string]map[string]time.Time{},
	}
}

func (m *memoryTracker) Touch(c ctx.Ctx, topic, viewer string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	viewers, ok := m.topics[topic]
	if !ok {
		viewers = map[string]time.Time{}
		m.topics[topic] = viewers
	}
	viewers[viewer] = now
	return m.prune(topic, now), nil
}

func (m *memoryTracker) Count(c ctx.Ctx, topic string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.prune(topic, now), nil
}

// prune drops viewers last seen before now-window, m.mu must be held
func (m *memoryTracker) prune(topic string, now time.Time) int64 {
	viewers := m.topics[topic]
	cutoff := now.Add(-m.window)
	for v, seen := range viewers {
		if !seen.After(cutoff) {
			delete(viewers, v)
		}
	}
	if len(viewers) == 0 {
		delete(m.topics, topic)
	}
	return int64(len(viewers))
}
