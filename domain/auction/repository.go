package auction

import (
	"github.com/x-xyz/goauction/base/ctx"
)

type AuctionRepo interface {
	Create(ctx ctx.Ctx, a *Auction) error
	FindOne(ctx ctx.Ctx, id string) (*Auction, error)
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Auction, error)
	Count(ctx ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	// CompareAndSwap applies patch and bumps Version only if the stored
	// version equals expectedVersion, else it returns ErrVersionConflict.
	CompareAndSwap(ctx ctx.Ctx, id string, expectedVersion int64, patch AuctionPatchable) error
	// IncrementViews returns the view count after the increment
	IncrementViews(ctx ctx.Ctx, id string, n int64) (int64, error)
}

// BidRepo is the append-only bid ledger. Only the IsWinning and IsActive
// flags of a stored bid may change.
type BidRepo interface {
	Append(ctx ctx.Ctx, bid *Bid) error
	FindOne(ctx ctx.Ctx, auctionId, bidId string) (*Bid, error)
	FindAll(ctx ctx.Ctx, auctionId string, opts ...BidFindAllOptionsFunc) ([]*Bid, error)
	// FindWinning returns ErrNotFound when no bid is flagged winning
	FindWinning(ctx ctx.Ctx, auctionId string) (*Bid, error)
	Update(ctx ctx.Ctx, bidId string, patch BidPatchable) error
}

type ProxyRepo interface {
	// FindOne returns the commitment of bidder on the auction, active or not
	FindOne(ctx ctx.Ctx, auctionId string, bidderId string) (*ProxyCommitment, error)
	FindActive(ctx ctx.Ctx, auctionId string) ([]*ProxyCommitment, error)
	Upsert(ctx ctx.Ctx, p *ProxyCommitment) error
	DeactivateAll(ctx ctx.Ctx, auctionId string) error
}

// Transactor runs fn atomically. Repository calls made with the ctx handed
// to fn join the transaction.
type Transactor interface {
	RunInTransaction(ctx ctx.Ctx, fn func(ctx.Ctx) error) error
}

// Locker serializes all mutations of one auction
type Locker interface {
	Lock(ctx ctx.Ctx, auctionId string) (release func(), err error)
}

// Publisher hands domain events to a notification sink
type Publisher interface {
	Publish(ctx ctx.Ctx, e *Event) error
}
