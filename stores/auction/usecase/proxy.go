package usecase

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

// nextProxyBid picks the commitment that bids next and its amount. ok is
// false when no commitment can improve on the current standing.
func nextProxyBid(a *auction.Auction, winnerId domain.UserId, commitments []*auction.ProxyCommitment) (*auction.ProxyCommitment, decimal.Decimal, bool) {
	candidates := []*auction.ProxyCommitment{}
	for _, p := range commitments {
		if p.IsActive && p.MaxAmount.GreaterThan(a.CurrentPrice) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, decimal.Zero, false
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Outranks(candidates[j]) })

	top := candidates[0]
	if top.BidderId != winnerId {
		floor := a.CurrentPrice
		if len(candidates) > 1 {
			floor = candidates[1].MaxAmount
		}
		amount := decimal.Min(top.MaxAmount, a.IncrementPolicy.MinimumBid(floor))
		return top, amount, true
	}

	// a proxy never bids against its owner's winning bid, the strongest
	// challenger goes all in and the top commitment counters next round
	if len(candidates) == 1 {
		return nil, decimal.Zero, false
	}
	challenger := candidates[1]
	return challenger, challenger.MaxAmount, true
}

// resolveProxies drains the proxy work queue after a bid was admitted on a.
// It stops at the first rejected bid or after MaxProxyRounds bids. Failures
// end the pass but never undo the bids already admitted.
func (im *impl) resolveProxies(c ctx.Ctx, a *auction.Auction) []*admitted {
	res := []*admitted{}
	for round := 0; round < im.cfg.MaxProxyRounds; round++ {
		commitments, err := im.proxyRepo.FindActive(c, a.Id)
		if err != nil {
			c.WithField("err", err).Error("proxyRepo.FindActive failed")
			return res
		}
		if len(commitments) == 0 {
			return res
		}

		winnerId := domain.UserId("")
		if winning, err := im.bidRepo.FindWinning(c, a.Id); err == nil {
			winnerId = winning.BidderId
		} else if err != domain.ErrNotFound {
			c.WithField("err", err).Error("bidRepo.FindWinning failed")
			return res
		}

		p, amount, ok := nextProxyBid(a, winnerId, commitments)
		if !ok {
			return res
		}

		adm, err := im.admit(c, a, p.BidderId, amount, p)
		if err != nil {
			c.WithFields(log.Fields{
				"err":      err,
				"proxyId":  p.Id,
				"bidderId": p.BidderId,
				"amount":   amount,
			}).Info("proxy bid not admitted, pass ends")
			return res
		}
		im.met.BumpSum("proxy.bid", 1)
		res = append(res, adm)
	}
	return res
}

func (im *impl) SetProxy(c ctx.Ctx, req auction.SetProxyRequest) (*auction.ProxyResult, error) {
	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": req.AuctionId,
		"bidderId":  req.BidderId,
	})

	var (
		res    *auction.ProxyResult
		events []*auction.Event
	)
	err := im.serialize(c, req.AuctionId, func(c ctx.Ctx) error {
		a, err := im.auctionRepo.FindOne(c, req.AuctionId)
		if err == domain.ErrNotFound {
			return auction.NewBidRejection(auction.ErrNotFound, nil)
		} else if err != nil {
			c.WithField("err", err).Error("auctionRepo.FindOne failed")
			return err
		}

		now := im.clock.Now()
		if !a.IsOpenAt(now) {
			return auction.NewBidRejection(auction.ErrAuctionNotOpen, a)
		}
		if req.BidderId == a.SellerId {
			return auction.NewBidRejection(auction.ErrSelfBidForbidden, a)
		}
		if !req.MaxAmount.GreaterThan(a.CurrentPrice) {
			return auction.NewBidRejection(auction.ErrBidTooLow, a)
		}

		p, err := im.proxyRepo.FindOne(c, a.Id, req.BidderId.String())
		switch {
		case err == domain.ErrNotFound:
			p = &auction.ProxyCommitment{
				Id:            uuid.NewString(),
				AuctionId:     a.Id,
				BidderId:      req.BidderId,
				CurrentAmount: decimal.Zero,
				CreatedAt:     now,
			}
		case err != nil:
			c.WithField("err", err).Error("proxyRepo.FindOne failed")
			return err
		case p.IsActive && !req.MaxAmount.GreaterThan(p.MaxAmount):
			return auction.NewBidRejection(auction.ErrProxyCeilingTooLow, a)
		case !p.IsActive:
			// a re-armed commitment queues behind the ones already standing
			p.CreatedAt = now
		}
		p.MaxAmount = req.MaxAmount
		p.IsActive = true
		p.UpdatedAt = now

		if err := im.proxyRepo.Upsert(c, p); err != nil {
			c.WithField("err", err).Error("proxyRepo.Upsert failed")
			return err
		}

		res = &auction.ProxyResult{Commitment: p, Auction: a, Bids: []*auction.Bid{}}

		winning, err := im.bidRepo.FindWinning(c, a.Id)
		if err == domain.ErrNotFound || (err == nil && winning.BidderId == req.BidderId) {
			return nil
		} else if err != nil {
			c.WithField("err", err).Error("bidRepo.FindWinning failed")
			return err
		}

		for _, adm := range im.resolveProxies(c, a) {
			res.Bids = append(res.Bids, adm.bid)
			events = append(events, adm.events...)
		}

		if updated, err := im.proxyRepo.FindOne(c, a.Id, req.BidderId.String()); err == nil {
			res.Commitment = updated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.publish(c, events...)
	return res, nil
}

func (im *impl) CancelProxy(c ctx.Ctx, auctionId string, bidderId domain.UserId) error {
	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": auctionId,
		"bidderId":  bidderId,
	})

	return im.serialize(c, auctionId, func(c ctx.Ctx) error {
		p, err := im.proxyRepo.FindOne(c, auctionId, bidderId.String())
		if err == domain.ErrNotFound {
			return err
		} else if err != nil {
			c.WithField("err", err).Error("proxyRepo.FindOne failed")
			return err
		}
		if !p.IsActive {
			return nil
		}

		p.IsActive = false
		p.UpdatedAt = im.clock.Now()
		if err := im.proxyRepo.Upsert(c, p); err != nil {
			c.WithField("err", err).Error("proxyRepo.Upsert failed")
			return err
		}
		return nil
	})
}
