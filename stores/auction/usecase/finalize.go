package usecase

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/ptr"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

func (im *impl) Finalize(c ctx.Ctx, id string) (*auction.Outcome, error) {
	c = ctx.WithValue(c, "auctionId", id)

	var (
		outcome *auction.Outcome
		event   *auction.Event
	)
	err := im.serialize(c, id, func(c ctx.Ctx) error {
		a, err := im.auctionRepo.FindOne(c, id)
		if err != nil {
			if err != domain.ErrNotFound {
				c.WithField("err", err).Error("auctionRepo.FindOne failed")
			}
			return err
		}

		if a.Status != auction.StatusActive {
			outcome = a.Outcome()
			return auction.ErrFinalizationConflict
		}

		now := im.clock.Now()
		if now.Before(a.CurrentEndTime) {
			return auction.ErrAuctionStillOpen
		}

		best, err := im.bidRepo.FindAll(c, id,
			auction.WithIsActive(true),
			auction.WithBidOrder(auction.BidOrderAmountDesc),
			auction.WithBidPagination(0, 1),
		)
		if err != nil {
			c.WithField("err", err).Error("bidRepo.FindAll failed")
			return err
		}
		flagged, err := im.bidRepo.FindAll(c, id, auction.WithIsWinning(true))
		if err != nil {
			c.WithField("err", err).Error("bidRepo.FindAll failed")
			return err
		}

		status := auction.StatusEnded
		patch := auction.AuctionPatchable{
			Status:      &status,
			FinalizedAt: &now,
			UpdatedAt:   &now,
		}
		var winner *auction.Bid
		if len(best) > 0 {
			winner = best[0]
			status = auction.StatusSold
			patch.WinnerId = &winner.BidderId
			patch.WinningBidId = &winner.Id
		patch.SalePrice = &winner.Amount
		}

		err = im.transactor.RunInTransaction(c, func(c ctx.Ctx) error {
			for _, b := range flagged {
				if winner != nil && b.Id == winner.Id {
					continue
				}
				if err := im.bidRepo.Update(c, b.Id, auction.BidPatchable{IsWinning: ptr.Bool(false)}); err != nil {
					c.WithFields(log.Fields{"err": err, "bidId": b.Id}).Error("bidRepo.Update failed")
					return err
				}
			}
			if winner != nil && !winner.IsWinning {
				if err := im.bidRepo.Update(c, winner.Id, auction.BidPatchable{IsWinning: ptr.Bool(true)}); err != nil {
					c.WithFields(log.Fields{"err": err, "bidId": winner.Id}).Error("bidRepo.Update failed")
					return err
				}
			}

			if err := im.auctionRepo.CompareAndSwap(c, id, a.Version, patch); err != nil {
				c.WithFields(log.Fields{"err": err, "version": a.Version}).Error("auctionRepo.CompareAndSwap failed")
				return err
			}

			if err := im.proxyRepo.DeactivateAll(c, id); err != nil {
				c.WithField("err", err).Error("proxyRepo.DeactivateAll failed")
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}

		patch.Apply(a)
		a.Version++
		outcome = a.Outcome()

		typ := auction.EventAuctionEnded
		if winner != nil {
			typ = auction.EventAuctionSold
		}
		event = auction.NewEvent(typ, a, now)
		if winner != nil {
			event.WithBid(winner)
		}
		return nil
	})
	if err == auction.ErrFinalizationConflict {
		return outcome, err
	} else if err != nil {
		return nil, err
	}

	im.met.BumpSum("auction.finalized", 1, "status", string(outcome.Status))
	c.WithFields(log.Fields{
		"status":   outcome.Status,
		"winnerId": outcome.WinnerId,
		"price":    outcome.Price,
	}).Info("auction finalized")

	im.publish(c, event)
	return outcome, nil
}
