package usecase

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

// RecordView counts one page view. Anonymous views bump the total but do not
// register as a live viewer. Presence failures degrade to a zero live count.
func (im *impl) RecordView(c ctx.Ctx, auctionId string, viewerId string) (*auction.ViewStats, error) {
	c = ctx.WithValue(c, "auctionId", auctionId)

	total, err := im.auctionRepo.IncrementViews(c, auctionId, 1)
	if err != nil {
		if err != domain.ErrNotFound {
			c.WithField("err", err).Error("auctionRepo.IncrementViews failed")
		}
		return nil, err
	}

	res := &auction.ViewStats{TotalViews: total}
	if im.presence == nil {
		return res, nil
	}

	now := im.clock.Now()
	if viewerId != "" {
		res.LiveViewers, err = im.presence.Touch(c, auctionId, viewerId, now)
	} else {
		res.LiveViewers, err = im.presence.Count(c, auctionId, now)
	}
	if err != nil {
		c.WithField("err", err).Warn("presence tracking failed")
		res.LiveViewers = 0
	}
	return res, nil
}
