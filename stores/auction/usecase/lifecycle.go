package usecase

import (
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

func (im *impl) CreateAuction(c ctx.Ctx, req auction.CreateAuctionRequest) (*auction.Auction, error) {
	if req.SellerId.IsEmpty() {
		return nil, xerrors.Errorf("seller is required: %w", domain.ErrBadParamInput)
	}
	if !req.StartingPrice.IsPositive() {
		return nil, xerrors.Errorf("starting price must be positive: %w", domain.ErrBadParamInput)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, xerrors.Errorf("start time must be before end time: %w", domain.ErrBadParamInput)
	}

	policy := im.cfg.DefaultIncrementPolicy()
	if req.IncrementFloor != nil {
		if req.IncrementFloor.IsNegative() {
			return nil, xerrors.Errorf("increment floor is negative: %w", domain.ErrBadParamInput)
		}
		policy.Floor = *req.IncrementFloor
	}
	if req.IncrementPercent != nil {
		if req.IncrementPercent.IsNegative() {
			return nil, xerrors.Errorf("increment percent is negative: %w", domain.ErrBadParamInput)
		}
		policy.Percent = *req.IncrementPercent
	}

	now := im.clock.Now()
	a := &auction.Auction{
		Id:              uuid.NewString(),
		SellerId:        req.SellerId,
		Title:           req.Title,
		Category:        req.Category,
		Condition:       req.Condition,
		StartingPrice:   req.StartingPrice,
		StartTime:       req.StartTime,
		OriginalEndTime: req.EndTime,
		IncrementPolicy: policy,
		Status:          auction.StatusDraft,
		CurrentPrice:    req.StartingPrice,
		CurrentEndTime:  req.EndTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := im.auctionRepo.Create(c, a); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": a.Id,
		}).Error("auctionRepo.Create failed")
		return nil, err
	}

	im.publish(c, auction.NewEvent(auction.EventAuctionCreated, a, now))
	return a, nil
}

func (im *impl) GetAuction(c ctx.Ctx, id string) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{"err": err, "auctionId": id}).Error("auctionRepo.FindOne failed")
		}
		return nil, err
	}
	return a, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	res, err := im.auctionRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	res, err := im.auctionRepo.Count(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.Count failed")
		return 0, err
	}
	return res, nil
}

// transition moves a to next under the auction lock. ok is false when
// eligible rejects the stored state, nothing is written then.
func (im *impl) transition(c ctx.Ctx, id string, next auction.Status, eligible func(a *auction.Auction) (bool, error), typ auction.EventType) (*auction.Auction, bool, error) {
	var (
		res *auction.Auction
		ok  bool
		e   *auction.Event
	)
	err := im.serialize(c, id, func(c ctx.Ctx) error {
		a, err := im.auctionRepo.FindOne(c, id)
		if err != nil {
			if err != domain.ErrNotFound {
				c.WithField("err", err).Error("auctionRepo.FindOne failed")
			}
			return err
		}
		res = a

		if ok, err = eligible(a); err != nil || !ok {
			return err
		}

		now := im.clock.Now()
		patch := auction.AuctionPatchable{Status: &next, UpdatedAt: &now}
		if err := im.auctionRepo.CompareAndSwap(c, id, a.Version, patch); err != nil {
			c.WithFields(log.Fields{"err": err, "version": a.Version}).Error("auctionRepo.CompareAndSwap failed")
			ok = false
			return err
		}
		patch.Apply(a)
		a.Version++
		e = auction.NewEvent(typ, a, now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if e != nil {
		im.publish(c, e)
	}
	return res, ok, nil
}

func (im *impl) CancelAuction(c ctx.Ctx, id string, requester domain.UserId) (*auction.Auction, error) {
	c = ctx.WithValues(c, map[string]interface{}{
		"auctionId": id,
		"requester": requester,
	})

	a, _, err := im.transition(c, id, auction.StatusCancelled, func(a *auction.Auction) (bool, error) {
		if a.SellerId != requester {
			return false, auction.ErrForbidden
		}
		if !a.Status.CanTransitionTo(auction.StatusCancelled) {
			return false, auction.ErrInvalidTransition
		}
		return true, nil
	}, auction.EventAuctionCancelled)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Activate is a no-op unless a is a draft whose bidding window is open
func (im *impl) Activate(c ctx.Ctx, id string) (bool, error) {
	c = ctx.WithValue(c, "auctionId", id)

	_, ok, err := im.transition(c, id, auction.StatusActive, func(a *auction.Auction) (bool, error) {
		now := im.clock.Now()
		return a.Status == auction.StatusDraft && !now.Before(a.StartTime) && now.Before(a.OriginalEndTime), nil
	}, auction.EventAuctionActivated)
	if err != nil {
		return false, err
	}
	return ok, nil
}
