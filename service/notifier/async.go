package notifier

import (
	"hash/fnv"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/goauction/base/backoff"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
)

type AsyncConfig struct {
	Workers        int
	QueueLength    int
	ScheduleWait   time.Duration
	PublishTimeout time.Duration
	MaxAttempts    int
	RetryStart     time.Duration
	RetryLimit     time.Duration
}

func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Workers:        32,
		QueueLength:    1024,
		ScheduleWait:   100 * time.Millisecond,
		PublishTimeout: 5 * time.Second,
		MaxAttempts:    3,
		RetryStart:     100 * time.Millisecond,
		RetryLimit:     2 * time.Second,
	}
}

// Async hands events to a worker pool and returns at once. Failed publishes
// are retried with backoff and then dropped with an error log, they never
// reach the caller.
//
// The pool is split into single worker shards and every event of an auction
// goes to the same shard, so one auction's events reach the sink in the
// order they were published.
type Async struct {
	sink   Sink
	cfg    AsyncConfig
	shards []*goroutines.Pool
	met    metrics.Service
}

func NewAsync(sink Sink, cfg AsyncConfig, met metrics.Service) *Async {
	d := DefaultAsyncConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = d.Workers
	}
	if cfg.QueueLength <= 0 {
		cfg.QueueLength = d.QueueLength
	}
	if cfg.ScheduleWait <= 0 {
		cfg.ScheduleWait = d.ScheduleWait
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = d.PublishTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.RetryStart <= 0 {
		cfg.RetryStart = d.RetryStart
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = d.RetryLimit
	}

	queueLength := cfg.QueueLength / cfg.Workers
	if queueLength == 0 {
		queueLength = 1
	}
	shards := make([]*goroutines.Pool, cfg.Workers)
	for i := range shards {
		shards[i] = goroutines.NewPool(1, goroutines.WithTaskQueueLength(queueLength), goroutines.WithPreAllocWorkers(1))
	}
	return &Async{
		sink:   sink,
		cfg:    cfg,
		shards: shards,
		met:    met,
	}
}

func (a *Async) shard(auctionId string) *goroutines.Pool {
	h := fnv.New32a()
	h.Write([]byte(auctionId))
	return a.shards[h.Sum32()%uint32(len(a.shards))]
}

func (a *Async) Name() string {
	return "async:" + a.sink.Name()
}

// Publish schedules delivery of e on its auction's shard. It fails only when
// the shard's queue stays full for ScheduleWait.
func (a *Async) Publish(c ctx.Ctx, e *auction.Event) error {
	detached := ctx.WithValues(ctx.Detach(c), map[string]interface{}{
		"eventId":   e.Id,
		"eventType": e.Type,
	})

	err := a.shard(e.AuctionId).ScheduleWithTimeout(a.cfg.ScheduleWait, func() {
		a.deliver(detached, e)
	})
	if err != nil {
		a.met.BumpSum("dropped", 1, "sink", a.sink.Name(), "reason", "queue_full")
		c.WithFields(log.Fields{"err": err, "eventId": e.Id}).Error("pool.ScheduleWithTimeout failed")
		return err
	}
	return nil
}

func (a *Async) deliver(c ctx.Ctx, e *auction.Event) {
	defer a.met.BumpTime("publish.time", "sink", a.sink.Name(), "type", string(e.Type)).End()

	b := backoff.NewExponential(a.cfg.RetryStart, a.cfg.RetryLimit)
	err := b.Retry(c, a.cfg.MaxAttempts, nil, func() error {
		attemptCtx, cancel := ctx.WithTimeout(c, a.cfg.PublishTimeout)
		defer cancel()
		return a.sink.Publish(attemptCtx, e)
	})
	if err != nil {
		a.met.BumpSum("dropped", 1, "sink", a.sink.Name(), "reason", "publish_failed")
		c.WithFields(log.Fields{"err": err, "attempts": b.Attempts() + 1}).Error("sink.Publish failed, event dropped")
		return
	}
	a.met.BumpSum("published", 1, "sink", a.sink.Name(), "type", string(e.Type))
}

// Close stops the workers and closes the sink
func (a *Async) Close() error {
	for _, p := range a.shards {
		p.Release()
	}
	return a.sink.Close()
}
