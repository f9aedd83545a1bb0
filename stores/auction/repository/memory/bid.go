package memory

import (
	"sort"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

type bidRepo struct {
	s *Store
}

func (im *bidRepo) Append(c ctx.Ctx, bid *auction.Bid) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	if _, ok := im.s.bidIndex[bid.Id]; ok {
		return domain.ErrConflict
	}
	stored := bid.Clone()
	im.s.bids[bid.AuctionId] = append(im.s.bids[bid.AuctionId], stored)
	im.s.bidIndex[bid.Id] = stored
	im.s.record(c, func() {
		list := im.s.bids[bid.AuctionId]
		for i := len(list) - 1; i >= 0; i-- {
			if list[i] == stored {
				im.s.bids[bid.AuctionId] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		delete(im.s.bidIndex, bid.Id)
	})
	return nil
}

func (im *bidRepo) FindOne(c ctx.Ctx, auctionId, bidId string) (*auction.Bid, error) {
	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	b, ok := im.s.bidIndex[bidId]
	if !ok || b.AuctionId != auctionId {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

func (im *bidRepo) FindAll(c ctx.Ctx, auctionId string, opts ...auction.BidFindAllOptionsFunc) ([]*auction.Bid, error) {
	o, err := auction.GetBidFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}

	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	found := []*auction.Bid{}
	for _, b := range im.s.bids[auctionId] {
		if o.BidderId != nil && b.BidderId != *o.BidderId {
			continue
		}
		if o.IsWinning != nil && b.IsWinning != *o.IsWinning {
			continue
		}
		if o.IsActive != nil && b.IsActive != *o.IsActive {
			continue
		}
		found = append(found, b)
	}

	if o.Order != nil && *o.Order == auction.BidOrderAmountDesc {
		sort.SliceStable(found, func(i, j int) bool { return found[i].Outranks(found[j]) })
	}

	found = paginate(found, o.Offset, o.Limit)
	res := make([]*auction.Bid, 0, len(found))
	for _, b := range found {
		res = append(res, b.Clone())
	}
	return res, nil
}

func (im *bidRepo) FindWinning(c ctx.Ctx, auctionId string) (*auction.Bid, error) {
	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	for _, b := range im.s.bids[auctionId] {
		if b.IsWinning {
			return b.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (im *bidRepo) Update(c ctx.Ctx, bidId string, patch auction.BidPatchable) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	b, ok := im.s.bidIndex[bidId]
	if !ok {
		return domain.ErrNotFound
	}
	prev := *b
	patch.Apply(b)
	im.s.record(c, func() { *b = prev })
	return nil
}
