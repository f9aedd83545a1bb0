package usecase

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/ptr"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

func (im *impl) ListBids(c ctx.Ctx, auctionId string, opts ...auction.BidFindAllOptionsFunc) ([]*auction.Bid, error) {
	if _, err := im.auctionRepo.FindOne(c, auctionId); err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{"err": err, "auctionId": auctionId}).Error("auctionRepo.FindOne failed")
		}
		return nil, err
	}

	res, err := im.bidRepo.FindAll(c, auctionId, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("bidRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

// VoidBid retracts a bid of an active auction. When the voided bid was
// winning the next best active bid takes over. The price is not lowered.
func (im *impl) VoidBid(c ctx.Ctx, auctionId, bidId string) (*auction.Bid, error) {
	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": auctionId,
		"bidId":     bidId,
	})

	var (
		res    *auction.Bid
		events []*auction.Event
	)
	err := im.serialize(c, auctionId, func(c ctx.Ctx) error {
		a, err := im.auctionRepo.FindOne(c, auctionId)
		if err != nil {
			if err != domain.ErrNotFound {
				c.WithField("err", err).Error("auctionRepo.FindOne failed")
			}
			return err
		}

		b, err := im.bidRepo.FindOne(c, auctionId, bidId)
		if err != nil {
			if err != domain.ErrNotFound {
				c.WithField("err", err).Error("bidRepo.FindOne failed")
			}
			return err
		}
		if !b.IsActive {
			res = b
			return nil
		}
		if a.Status != auction.StatusActive {
			return auction.ErrInvalidTransition
		}

		now := im.clock.Now()
		var promoted *auction.Bid
		err = im.transactor.RunInTransaction(c, func(c ctx.Ctx) error {
			if err := im.bidRepo.Update(c, b.Id, auction.BidPatchable{IsWinning: ptr.Bool(false), IsActive: ptr.Bool(false)}); err != nil {
				c.WithField("err", err).Error("bidRepo.Update failed")
				return err
			}

			if b.IsWinning {
				next, err := im.bidRepo.FindAll(c, auctionId,
					auction.WithIsActive(true),
					auction.WithBidOrder(auction.BidOrderAmountDesc),
					auction.WithBidPagination(0, 1),
				)
				if err != nil {
					c.WithField("err", err).Error("bidRepo.FindAll failed")
					return err
				}
				if len(next) > 0 {
					promoted = next[0]
					if err := im.bidRepo.Update(c, promoted.Id, auction.BidPatchable{IsWinning: ptr.Bool(true)}); err != nil {
						c.WithFields(log.Fields{"err": err, "promotedId": promoted.Id}).Error("bidRepo.Update failed")
						return err
					}
				}
			}

			// version bump orders the void against concurrent writers
			if err := im.auctionRepo.CompareAndSwap(c, auctionId, a.Version, auction.AuctionPatchable{UpdatedAt: &now}); err != nil {
				c.WithFields(log.Fields{"err": err, "version": a.Version}).Error("auctionRepo.CompareAndSwap failed")
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}

		a.UpdatedAt = now
		a.Version++
		b.IsActive = false
		b.IsWinning = false
		res = b

		e := auction.NewEvent(auction.EventBidVoided, a, now).WithBid(b)
		if promoted != nil {
			e.PreviousBidderId = promoted.BidderId
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.publish(c, events...)
	return res, nil
}
