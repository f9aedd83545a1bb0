package memory

import (
	"sort"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

type auctionRepo struct {
	s *Store
}

func (im *auctionRepo) Create(c ctx.Ctx, a *auction.Auction) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	if _, ok := im.s.auctions[a.Id]; ok {
		return domain.ErrConflict
	}
	im.s.auctions[a.Id] = a.Clone()
	im.s.record(c, func() { delete(im.s.auctions, a.Id) })
	return nil
}

func (im *auctionRepo) FindOne(c ctx.Ctx, id string) (*auction.Auction, error) {
	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	a, ok := im.s.auctions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func match(a *auction.Auction, o auction.FindAllOptions) bool {
	if o.Status != nil && a.Status != *o.Status {
		return false
	}
	if o.SellerId != nil && a.SellerId != *o.SellerId {
		return false
	}
	if o.Category != nil && a.Category != *o.Category {
		return false
	}
	if o.StartTimeLTE != nil && a.StartTime.After(*o.StartTimeLTE) {
		return false
	}
	if o.OriginalEndTimeGT != nil && !a.OriginalEndTime.After(*o.OriginalEndTimeGT) {
		return false
	}
	if o.CurrentEndTimeLTE != nil && a.CurrentEndTime.After(*o.CurrentEndTimeLTE) {
		return false
	}
	if o.IdGT != nil && a.Id <= *o.IdGT {
		return false
	}
	return true
}

func less(sortBy *auction.AuctionSort) func(a, b *auction.Auction) bool {
	by := auction.AuctionSortNewest
	if sortBy != nil {
		by = *sortBy
	}
	return func(a, b *auction.Auction) bool {
		switch by {
		case auction.AuctionSortEndingSoon:
			if !a.CurrentEndTime.Equal(b.CurrentEndTime) {
				return a.CurrentEndTime.Before(b.CurrentEndTime)
			}
		case auction.AuctionSortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case auction.AuctionSortPriceDesc:
			if c := a.CurrentPrice.Cmp(b.CurrentPrice); c != 0 {
				return c > 0
			}
		case auction.AuctionSortMostBids:
			if a.BidCount != b.BidCount {
				return a.BidCount > b.BidCount
			}
		}
		return a.Id < b.Id
	}
}

func (im *auctionRepo) filter(o auction.FindAllOptions) []*auction.Auction {
	res := []*auction.Auction{}
	for _, a := range im.s.auctions {
		if match(a, o) {
			res = append(res, a)
		}
	}
	return res
}

func (im *auctionRepo) FindAll(c ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	o, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}

	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	found := im.filter(o)
	lessFn := less(o.Sort)
	sort.Slice(found, func(i, j int) bool { return lessFn(found[i], found[j]) })

	found = paginate(found, o.Offset, o.Limit)
	res := make([]*auction.Auction, 0, len(found))
	for _, a := range found {
		res = append(res, a.Clone())
	}
	return res, nil
}

func (im *auctionRepo) Count(c ctx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	o, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		return 0, err
	}

	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	return len(im.filter(o)), nil
}

func (im *auctionRepo) CompareAndSwap(c ctx.Ctx, id string, expectedVersion int64, patch auction.AuctionPatchable) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	a, ok := im.s.auctions[id]
	if !ok || a.Version != expectedVersion {
		return auction.ErrVersionConflict
	}

	prev := a.Clone()
	next := a.Clone()
	patch.Apply(next)
	next.Version++
	im.s.auctions[id] = next
	im.s.record(c, func() {
		// views are counted outside the auction's transactions
		if cur, ok := im.s.auctions[id]; ok {
			prev.ViewCount = cur.ViewCount
		}
		im.s.auctions[id] = prev
	})
	return nil
}

func (im *auctionRepo) IncrementViews(c ctx.Ctx, id string, n int64) (int64, error) {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	a, ok := im.s.auctions[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	a.ViewCount += n
	im.s.record(c, func() { a.ViewCount -= n })
	return a.ViewCount, nil
}

func paginate[T any](items []T, offset, limit *int32) []T {
	if offset != nil {
		if int(*offset) >= len(items) {
			return items[:0]
		}
		items = items[*offset:]
	}
	if limit != nil && *limit > 0 && int(*limit) < len(items) {
		items = items[:*limit]
	}
	return items
}
