package usecase

import (
	"github.com/benbjohnson/clock"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/presence"
)

type AuctionUseCaseCfg struct {
	Clock       clock.Clock
	Config      auction.Config
	AuctionRepo auction.AuctionRepo
	BidRepo     auction.BidRepo
	ProxyRepo   auction.ProxyRepo
	Transactor  auction.Transactor
	Locker      auction.Locker
	// optional, events are dropped without one
	Publisher auction.Publisher
	// optional, live viewers are reported as 0 without one
	Presence presence.Tracker
	Metrics  metrics.Service
}

type impl struct {
	clock       clock.Clock
	cfg         auction.Config
	auctionRepo auction.AuctionRepo
	bidRepo     auction.BidRepo
	proxyRepo   auction.ProxyRepo
	transactor  auction.Transactor
	locker      auction.Locker
	publisher   auction.Publisher
	presence    presence.Tracker
	met         metrics.Service
}

func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	im := &impl{
		clock:       cfg.Clock,
		cfg:         cfg.Config.WithDefaults(),
		auctionRepo: cfg.AuctionRepo,
		bidRepo:     cfg.BidRepo,
		proxyRepo:   cfg.ProxyRepo,
		transactor:  cfg.Transactor,
		locker:      cfg.Locker,
		publisher:   cfg.Publisher,
		presence:    cfg.Presence,
		met:         cfg.Metrics,
	}
	if im.clock == nil {
		im.clock = clock.New()
	}
	if im.met == nil {
		im.met = metrics.New("auction")
	}
	return im
}

// serialize runs fn while holding the auction's lock. Waiting for the lock
// follows c, but once it is held fn runs detached from c's cancellation and
// bounded by the lease ttl: a bid that commits is always followed by its
// proxy resolution.
func (im *impl) serialize(c ctx.Ctx, auctionId string, fn func(ctx.Ctx) error) error {
	release, err := im.locker.Lock(c, auctionId)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("locker.Lock failed")
		return err
	}
	defer release()

	held, cancel := ctx.WithTimeout(ctx.Detach(c), im.cfg.LockTTL)
	defer cancel()
	return fn(held)
}

// publish hands events to the sink. Delivery failures never fail the
// operation that produced them.
func (im *impl) publish(c ctx.Ctx, events ...*auction.Event) {
	if im.publisher == nil {
		return
	}
	for _, e := range events {
		if err := im.publisher.Publish(c, e); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"eventId":   e.Id,
				"eventType": e.Type,
			}).Warn("publisher.Publish failed")
		}
	}
}
