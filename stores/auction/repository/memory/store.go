// Package memory keeps auctions, bids and proxy commitments in process
// memory. Used by tests and by single-node deployments without mongo.
//
// Transactions are not isolated from each other. Every undo entry touches
// only the records of one auction, and writers of one auction are already
// serialized by auction.Locker, so transactions of different auctions run
// side by side.
package memory

import (
	"context"
	"sync"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
)

type Store struct {
	mu       sync.RWMutex
	auctions map[string]*auction.Auction
	// bids per auction in append order
	bids     map[string][]*auction.Bid
	bidIndex map[string]*auction.Bid
	proxies  map[string]map[domain.UserId]*auction.ProxyCommitment
}

func NewStore() *Store {
	return &Store{
		auctions: map[string]*auction.Auction{},
		bids:     map[string][]*auction.Bid{},
		bidIndex: map[string]*auction.Bid{},
		proxies:  map[string]map[domain.UserId]*auction.ProxyCommitment{},
	}
}

func (s *Store) AuctionRepo() auction.AuctionRepo {
	return &auctionRepo{s}
}

func (s *Store) BidRepo() auction.BidRepo {
	return &bidRepo{s}
}

func (s *Store) ProxyRepo() auction.ProxyRepo {
	return &proxyRepo{s}
}

func (s *Store) Transactor() auction.Transactor {
	return &transactor{s}
}

type txKey struct{}

// tx is an undo log, entries are replayed in reverse on rollback
type tx struct {
	undo []func()
}

func txFrom(c ctx.Ctx) *tx {
	if c.Context == nil {
		return nil
	}
	t, _ := c.Value(txKey{}).(*tx)
	return t
}

// record must be called with s.mu held
func (s *Store) record(c ctx.Ctx, undo func()) {
	if t := txFrom(c); t != nil {
		t.undo = append(t.undo, undo)
	}
}

type transactor struct {
	s *Store
}

func (im *transactor) RunInTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	// nested calls join the outer transaction
	if txFrom(c) != nil {
		return fn(c)
	}

	t := &tx{}
	txCtx := ctx.WithContext(c, context.WithValue(c.Context, txKey{}, t))
	if err := fn(txCtx); err != nil {
		im.s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		im.s.mu.Unlock()
		return err
	}
	return nil
}
