package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

// ProxyCommitment authorizes the engine to bid on the bidder's behalf up to
// MaxAmount.
type ProxyCommitment struct {
	Id        string          `json:"id" bson:"_id"`
	AuctionId string          `json:"auctionId" bson:"auctionId"`
	BidderId  domain.UserId   `json:"bidderId" bson:"bidderId"`
	MaxAmount decimal.Decimal `json:"maxAmount" bson:"maxAmount"`
	// highest amount actually bid by the proxy so far
	CurrentAmount decimal.Decimal `json:"currentAmount" bson:"currentAmount"`
	IsActive      bool            `json:"isActive" bson:"isActive"`
	BidCount      int             `json:"bidCount" bson:"bidCount"`
	CreatedAt     time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (p *ProxyCommitment) Clone() *ProxyCommitment {
	c := *p
	return &c
}

// Outranks orders commitments by ceiling, earliest commitment first on ties
func (p *ProxyCommitment) Outranks(other *ProxyCommitment) bool {
	if c := p.MaxAmount.Cmp(other.MaxAmount); c != 0 {
		return c > 0
	}
	if !p.CreatedAt.Equal(other.CreatedAt) {
		return p.CreatedAt.Before(other.CreatedAt)
	}
	return p.Id < other.Id
}
