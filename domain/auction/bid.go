package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

type Bid struct {
	Id        string          `json:"id" bson:"_id"`
	AuctionId string          `json:"auctionId" bson:"auctionId"`
	BidderId  domain.UserId   `json:"bidderId" bson:"bidderId"`
	Amount    decimal.Decimal `json:"amount" bson:"amount"`
	PlacedAt  time.Time       `json:"placedAt" bson:"placedAt"`
	// 1-based admission order within the auction
	Sequence   int  `json:"sequence" bson:"sequence"`
	IsWinning  bool `json:"isWinning" bson:"isWinning"`
	IsProxyBid bool `json:"isProxyBid" bson:"isProxyBid"`
	IsActive   bool `json:"isActive" bson:"isActive"`
}

func (b *Bid) Clone() *Bid {
	c := *b
	return &c
}

type BidPatchable struct {
	IsWinning *bool `bson:"isWinning,omitempty"`
	IsActive  *bool `bson:"isActive,omitempty"`
}

func (p BidPatchable) Apply(b *Bid) {
	if p.IsWinning != nil {
		b.IsWinning = *p.IsWinning
	}
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
}

// BidOrder is the ledger read order
type BidOrder string

const (
	// BidOrderAmountDesc lists the highest amount first, earliest first on ties
	BidOrderAmountDesc BidOrder = "amountDesc"
	// BidOrderTimeAsc lists bids in admission order
	BidOrderTimeAsc BidOrder = "timeAsc"
)

// Outranks reports whether b beats other under the finalization ordering:
// higher amount, then earlier placement, then lower sequence.
func (b *Bid) Outranks(other *Bid) bool {
	if c := b.Amount.Cmp(other.Amount); c != 0 {
		return c > 0
	}
	if !b.PlacedAt.Equal(other.PlacedAt) {
		return b.PlacedAt.Before(other.PlacedAt)
	}
	return b.Sequence < other.Sequence
}
