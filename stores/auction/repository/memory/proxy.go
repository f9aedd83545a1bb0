package memory

import (
	"sort"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

type proxyRepo struct {
	s *Store
}

func (im *proxyRepo) FindOne(c ctx.Ctx, auctionId string, bidderId string) (*auction.ProxyCommitment, error) {
	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	p, ok := im.s.proxies[auctionId][domain.UserId(bidderId)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (im *proxyRepo) FindActive(c ctx.Ctx, auctionId string) ([]*auction.ProxyCommitment, error) {
	im.s.mu.RLock()
	defer im.s.mu.RUnlock()

	res := []*auction.ProxyCommitment{}
	for _, p := range im.s.proxies[auctionId] {
		if p.IsActive {
			res = append(res, p.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Outranks(res[j]) })
	return res, nil
}

func (im *proxyRepo) Upsert(c ctx.Ctx, p *auction.ProxyCommitment) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	byBidder, ok := im.s.proxies[p.AuctionId]
	if !ok {
		byBidder = map[domain.UserId]*auction.ProxyCommitment{}
		im.s.proxies[p.AuctionId] = byBidder
	}
	prev, existed := byBidder[p.BidderId]
	byBidder[p.BidderId] = p.Clone()
	im.s.record(c, func() {
		if existed {
			byBidder[p.BidderId] = prev
		} else {
			delete(byBidder, p.BidderId)
		}
	})
	return nil
}

func (im *proxyRepo) DeactivateAll(c ctx.Ctx, auctionId string) error {
	im.s.mu.Lock()
	defer im.s.mu.Unlock()

	for bidderId, p := range im.s.proxies[auctionId] {
		if !p.IsActive {
			continue
		}
		prev := p
		next := p.Clone()
		next.IsActive = false
		byBidder := im.s.proxies[auctionId]
		byBidder[bidderId] = next
		im.s.record(c, func() { byBidder[bidderId] = prev })
	}
	return nil
}
