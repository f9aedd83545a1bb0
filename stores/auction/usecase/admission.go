package usecase

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/ptr"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

// admitted is one bid committed to the ledger together with its side effects
type admitted struct {
	bid       *auction.Bid
	extension auction.Extension
	events    []*auction.Event
}

func (im *impl) PlaceBid(c ctx.Ctx, req auction.PlaceBidRequest) (*auction.BidResult, error) {
	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": req.AuctionId,
		"bidderId":  req.BidderId,
	})

	var (
		res    *auction.BidResult
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

		adm, err := im.admit(c, a, req.BidderId, req.Amount, nil)
		if err != nil {
			return err
		}
		events = append(events, adm.events...)

		res = &auction.BidResult{
			Bid:       adm.bid,
			Extension: adm.extension,
			ProxyBids: []*auction.Bid{},
		}

		for _, p := range im.resolveProxies(c, a) {
			res.ProxyBids = append(res.ProxyBids, p.bid)
			events = append(events, p.events...)
		}
		res.Auction = a
		// a proxy counter bid may push the deadline further
		if a.CurrentEndTime.After(res.Extension.NewEnd) {
			res.Extension.NewEnd = a.CurrentEndTime
		}
		return nil
	})
	if err != nil {
		im.met.BumpSum("bid.rejected", 1, "reason", auction.RejectionCode(err))
		return nil, err
	}

	im.publish(c, events...)
	return res, nil
}

// checkBid runs the admission checks in order, the first failing one wins
func checkBid(a *auction.Auction, bidderId domain.UserId, amount decimal.Decimal, now time.Time) error {
	if !a.IsOpenAt(now) {
		return auction.NewBidRejection(auction.ErrAuctionNotOpen, a)
	}
	if bidderId == a.SellerId {
		return auction.NewBidRejection(auction.ErrSelfBidForbidden, a)
	}
	if !amount.GreaterThan(a.CurrentPrice) {
		return auction.NewBidRejection(auction.ErrBidTooLow, a)
	}
	if amount.LessThan(a.MinimumBid()) {
		return auction.NewBidRejection(auction.ErrIncrementTooSmall, a)
	}
	return nil
}

// admit validates and commits one bid against a, which must be the latest
// stored state. On success a reflects the committed state. proxy is the
// commitment placing the bid, nil for manual bids.
func (im *impl) admit(c ctx.Ctx, a *auction.Auction, bidderId domain.UserId, amount decimal.Decimal, proxy *auction.ProxyCommitment) (*admitted, error) {
	now := im.clock.Now()
	if err := checkBid(a, bidderId, amount, now); err != nil {
		return nil, err
	}

	bid := &auction.Bid{
		Id:         uuid.NewString(),
		AuctionId:  a.Id,
		BidderId:   bidderId,
		Amount:     amount,
		PlacedAt:   now,
		Sequence:   a.BidCount + 1,
		IsWinning:  true,
		IsProxyBid: proxy != nil,
		IsActive:   true,
	}
	ext := maybeExtend(im.cfg, a, now)

	bidCount := a.BidCount + 1
	patch := auction.AuctionPatchable{
		CurrentPrice: &amount,
		BidCount:     &bidCount,
		UpdatedAt:    &now,
	}
	if ext.Extended {
		extensionCount := a.ExtensionCount + 1
		patch.CurrentEndTime = &ext.NewEnd
		patch.ExtensionCount = &extensionCount
	}

	// the transaction body may run more than once, it must not mutate its inputs
	var committed *auction.ProxyCommitment
	if proxy != nil {
		committed = proxy.Clone()
		committed.CurrentAmount = amount
		committed.BidCount = proxy.BidCount + 1
		committed.UpdatedAt = now
	}

	var previous *auction.Bid
	err := im.transactor.RunInTransaction(c, func(c ctx.Ctx) error {
		previous = nil
		prev, err := im.bidRepo.FindWinning(c, a.Id)
		if err != nil && err != domain.ErrNotFound {
			c.WithField("err", err).Error("bidRepo.FindWinning failed")
			return err
		}
		if prev != nil {
			if err := im.bidRepo.Update(c, prev.Id, auction.BidPatchable{IsWinning: ptr.Bool(false)}); err != nil {
				c.WithFields(log.Fields{"err": err, "bidId": prev.Id}).Error("bidRepo.Update failed")
				return err
			}
			previous = prev
		}

		if err := im.bidRepo.Append(c, bid); err != nil {
			c.WithField("err", err).Error("bidRepo.Append failed")
			return err
		}

		if err := im.auctionRepo.CompareAndSwap(c, a.Id, a.Version, patch); err != nil {
			c.WithFields(log.Fields{"err": err, "version": a.Version}).Error("auctionRepo.CompareAndSwap failed")
			return err
		}

		if committed != nil {
			if err := im.proxyRepo.Upsert(c, committed); err != nil {
				c.WithField("err", err).Error("proxyRepo.Upsert failed")
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	patch.Apply(a)
	a.Version++
	if committed != nil {
		*proxy = *committed
	}

	im.met.BumpSum("bid.accepted", 1, "proxy", strconv.FormatBool(proxy != nil))

	adm := &admitted{bid: bid, extension: ext}
	placed := auction.NewEvent(auction.EventBidPlaced, a, now).WithBid(bid)
	if previous != nil {
		placed.PreviousBidderId = previous.BidderId
	}
	adm.events = append(adm.events, placed)

	if previous != nil && previous.BidderId != bidderId {
		outbid := auction.NewEvent(auction.EventBidOutbid, a, now).WithBid(bid)
		outbid.PreviousBidderId = previous.BidderId
		adm.events = append(adm.events, outbid)
	}

	switch {
	case ext.Extended:
		im.met.BumpSum("auction.extended", 1)
		adm.events = append(adm.events, auction.NewEvent(auction.EventAuctionExtended, a, now).WithBid(bid))
	case ext.CapReached:
		c.WithField("err", auction.ErrExtensionCapReached).Info("bid admitted without extension")
		adm.events = append(adm.events, auction.NewEvent(auction.EventExtensionCapReached, a, now).WithBid(bid))
	}

	return adm, nil
}
