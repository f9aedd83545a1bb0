package sweeper

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/goauction/base/counter"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/goroutine"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
)

const (
	outcomeActivated = "activated"
	outcomeFinalized = "finalized"
	// lost a race against a bid or another sweeper, not a failure
	outcomeConflict = "conflict"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
	outcomeListFail = "listFailed"
)

type Cfg struct {
	UseCase     auction.UseCase
	Clock       clock.Clock
	Interval    time.Duration
	PageSize    int
	Concurrency int
	Metrics     metrics.Service
}

// SweepResult counts the per-auction outcomes of one sweep
type SweepResult struct {
	Activated   int `json:"activated"`
	Finalized   int `json:"finalized"`
	Conflicts   int `json:"conflicts"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	ListFailure int `json:"listFailure"`
}

// LifecycleSweeper activates drafts whose window opened and finalizes
// active auctions past their deadline, once per interval.
type LifecycleSweeper struct {
	uc          auction.UseCase
	clock       clock.Clock
	interval    time.Duration
	pageSize    int
	concurrency int
	met         metrics.Service
	stoppedCh   chan interface{}
}

func New(cfg *Cfg) *LifecycleSweeper {
	s := &LifecycleSweeper{
		uc:          cfg.UseCase,
		clock:       cfg.Clock,
		interval:    cfg.Interval,
		pageSize:    cfg.PageSize,
		concurrency: cfg.Concurrency,
		met:         cfg.Metrics,
		stoppedCh:   make(chan interface{}),
	}
	d := auction.DefaultConfig()
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.interval <= 0 {
		s.interval = d.SweepInterval
	}
	if s.pageSize <= 0 {
		s.pageSize = d.SweepPageSize
	}
	if s.concurrency <= 0 {
		s.concurrency = d.SweepConcurrency
	}
	if s.met == nil {
		s.met = metrics.New("sweeper")
	}
	return s
}

func (s *LifecycleSweeper) Start(c ctx.Ctx) {
	go s.loop(c)
}

func (s *LifecycleSweeper) Wait() {
	<-s.stoppedCh
}

func (s *LifecycleSweeper) loop(c ctx.Ctx) {
	defer close(s.stoppedCh)

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	s.runOnce(c)
	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			s.runOnce(c)
		}
	}
}

// runOnce keeps the loop alive when a sweep panics
func (s *LifecycleSweeper) runOnce(c ctx.Ctx) {
	p := goroutine.RecoverableRun(func() {
		s.Sweep(c)
	}, goroutine.WithName("lifecycleSweep"), goroutine.WithLogger(c.Logger))
	if p != nil {
		s.met.BumpSum("sweep.panic", 1)
	}
}

// Sweep runs the activation scan and then the expiry scan
func (s *LifecycleSweeper) Sweep(c ctx.Ctx) SweepResult {
	defer s.met.BumpTime("sweep.time").End()

	now := s.clock.Now()
	cnt := counter.NewCounter()

	s.scan(c, "activate", cnt, s.activateOne,
		auction.WithStatus(auction.StatusDraft),
		auction.WithStartTimeLTE(now),
		auction.WithOriginalEndTimeGT(now),
	)

	s.scan(c, "finalize", cnt, s.finalizeOne,
		auction.WithStatus(auction.StatusActive),
		auction.WithCurrentEndTimeLTE(now),
	)

	res := SweepResult{
		Activated:   cnt.Count(outcomeActivated),
		Finalized:   cnt.Count(outcomeFinalized),
		Conflicts:   cnt.Count(outcomeConflict),
		Skipped:     cnt.Count(outcomeSkipped),
		Failed:      cnt.Count(outcomeFailed),
		ListFailure: cnt.Count(outcomeListFail),
	}
	for name, n := range cnt.Snapshot() {
		s.met.BumpSum("sweep."+name, float64(n))
	}
	c.WithFields(log.Fields{
		"activated": res.Activated,
		"finalized": res.Finalized,
		"conflicts": res.Conflicts,
		"failed":    res.Failed,
	}).Info("lifecycle sweep done")
	return res
}

func (s *LifecycleSweeper) activateOne(c ctx.Ctx, id string) string {
	ok, err := s.uc.Activate(c, id)
	switch {
	case err != nil:
		c.WithFields(log.Fields{"err": err, "auctionId": id}).Error("uc.Activate failed")
		return outcomeFailed
	case !ok:
		return outcomeSkipped
	}
	return outcomeActivated
}

func (s *LifecycleSweeper) finalizeOne(c ctx.Ctx, id string) string {
	_, err := s.uc.Finalize(c, id)
	switch {
	case errors.Is(err, auction.ErrFinalizationConflict), errors.Is(err, auction.ErrAuctionStillOpen):
		return outcomeConflict
	case err != nil:
		c.WithFields(log.Fields{"err": err, "auctionId": id}).Error("uc.Finalize failed")
		return outcomeFailed
	}
	return outcomeFinalized
}

// scan pages through the auctions matching filter by id and hands each one
// to handle. A listing failure ends this scan only.
func (s *LifecycleSweeper) scan(c ctx.Ctx, name string, cnt *counter.Counter, handle func(ctx.Ctx, string) string, filter ...auction.FindAllOptionsFunc) {
	c = ctx.WithValue(c, "scan", name)

	cursor := ""
	for c.Err() == nil {
		opts := append([]auction.FindAllOptionsFunc{}, filter...)
		opts = append(opts, auction.WithLimit(int32(s.pageSize)))
		if cursor == "" {
			opts = append(opts, auction.WithSort(auction.AuctionSortId))
		} else {
			opts = append(opts, auction.WithIdGT(cursor))
		}

		page, err := s.uc.FindAll(c, opts...)
		if err != nil {
			c.WithFields(log.Fields{"err": err, "cursor": cursor}).Error("uc.FindAll failed")
			cnt.Inc(outcomeListFail)
			return
		}
		if len(page) == 0 {
			return
		}

		s.process(c, page, cnt, handle)

		if len(page) < s.pageSize {
			return
		}
		cursor = page[len(page)-1].Id
	}
}

func (s *LifecycleSweeper) process(c ctx.Ctx, page []*auction.Auction, cnt *counter.Counter, handle func(ctx.Ctx, string) string) {
	b := goroutines.NewBatch(s.concurrency, goroutines.WithBatchSize(len(page)))
	defer b.Close()

	for _, a := range page {
		id := a.Id
		b.Queue(func() (interface{}, error) {
			outcome := outcomeFailed
			p := goroutine.RecoverableRun(func() {
				outcome = handle(c, id)
			}, goroutine.WithName("sweepItem"), goroutine.WithLogger(c.WithField("auctionId", id)))
			if p != nil {
				return outcomeFailed, nil
			}
			return outcome, nil
		})
	}
	b.QueueComplete()

	for ret := range b.Results() {
		if outcome, ok := ret.Value().(string); ok {
			cnt.Inc(outcome)
		}
	}
}
