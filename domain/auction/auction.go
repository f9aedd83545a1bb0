package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusSold      Status = "sold"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusEnded, StatusSold},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusEnded, StatusSold, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo follows draft->active->{ended|sold} and draft->cancelled
func (s Status) CanTransitionTo(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// IncrementPolicy is the minimum raise over the current price:
// max(Floor, price * Percent / 100).
type IncrementPolicy struct {
	Floor   decimal.Decimal `json:"floor" bson:"floor"`
	Percent decimal.Decimal `json:"percent" bson:"percent"`
}

func (p IncrementPolicy) MinIncrement(price decimal.Decimal) decimal.Decimal {
	return decimal.Max(p.Floor, price.Mul(p.Percent).Shift(-2))
}

// MinimumBid is the lowest amount admissible against price
func (p IncrementPolicy) MinimumBid(price decimal.Decimal) decimal.Decimal {
	return price.Add(p.MinIncrement(price))
}

type Auction struct {
	Id              string          `json:"id" bson:"_id"`
	SellerId        domain.UserId   `json:"sellerId" bson:"sellerId"`
	Title           string          `json:"title" bson:"title"`
	Category        string          `json:"category" bson:"category"`
	Condition       string          `json:"condition" bson:"condition"`
	StartingPrice   decimal.Decimal `json:"startingPrice" bson:"startingPrice"`
	StartTime       time.Time       `json:"startTime" bson:"startTime"`
	OriginalEndTime time.Time       `json:"originalEndTime" bson:"originalEndTime"`
	IncrementPolicy IncrementPolicy `json:"incrementPolicy" bson:"incrementPolicy"`

	Status         Status          `json:"status" bson:"status"`
	CurrentPrice   decimal.Decimal `json:"currentPrice" bson:"currentPrice"`
	CurrentEndTime time.Time       `json:"currentEndTime" bson:"currentEndTime"`
	ExtensionCount int             `json:"extensionCount" bson:"extensionCount"`
	BidCount       int             `json:"bidCount" bson:"bidCount"`
	// set only when the auction is sold
	WinnerId     domain.UserId `json:"winnerId,omitempty" bson:"winnerId,omitempty"`
	WinningBidId string        `json:"winningBidId,omitempty" bson:"winningBidId,omitempty"`
	// amount of the winning bid, frozen at finalization
	SalePrice *decimal.Decimal `json:"salePrice,omitempty" bson:"salePrice,omitempty"`
	ViewCount    int64         `json:"viewCount" bson:"viewCount"`

	// bumped on every state change, used for compare-and-swap
	Version     int64      `json:"version" bson:"version"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty" bson:"finalizedAt,omitempty"`
}

// IsOpenAt reports whether bids are admissible at now
func (a *Auction) IsOpenAt(now time.Time) bool {
	return a.Status == StatusActive && !now.Before(a.StartTime) && now.Before(a.CurrentEndTime)
}

// MinimumBid is the lowest amount the next bid may have
func (a *Auction) MinimumBid() decimal.Decimal {
	return a.IncrementPolicy.MinimumBid(a.CurrentPrice)
}

func (a *Auction) Clone() *Auction {
	c := *a
	if a.FinalizedAt != nil {
		t := *a.FinalizedAt
		c.FinalizedAt = &t
	}
	if a.SalePrice != nil {
		p := *a.SalePrice
		c.SalePrice = &p
	}
	return &c
}

// Outcome derives the finalization result from the stored state. A sold
// auction reports what the winner bid, which is below CurrentPrice when a
// higher bid was voided.
func (a *Auction) Outcome() *Outcome {
	price := a.CurrentPrice
	if a.SalePrice != nil {
		price = *a.SalePrice
	}
	return &Outcome{
		AuctionId:    a.Id,
		Status:       a.Status,
		WinnerId:     a.WinnerId,
		WinningBidId: a.WinningBidId,
		Price:        price,
	}
}

type AuctionPatchable struct {
	Status         *Status          `bson:"status,omitempty"`
	CurrentPrice   *decimal.Decimal `bson:"currentPrice,omitempty"`
	CurrentEndTime *time.Time       `bson:"currentEndTime,omitempty"`
	ExtensionCount *int             `bson:"extensionCount,omitempty"`
	BidCount       *int             `bson:"bidCount,omitempty"`
	WinnerId       *domain.UserId   `bson:"winnerId,omitempty"`
	WinningBidId   *string          `bson:"winningBidId,omitempty"`
	SalePrice      *decimal.Decimal `bson:"salePrice,omitempty"`
	FinalizedAt    *time.Time       `bson:"finalizedAt,omitempty"`
	UpdatedAt      *time.Time       `bson:"updatedAt,omitempty"`
}

// Apply copies the set fields onto a. Version is not touched.
func (p AuctionPatchable) Apply(a *Auction) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.CurrentPrice != nil {
		a.CurrentPrice = *p.CurrentPrice
	}
	if p.CurrentEndTime != nil {
		a.CurrentEndTime = *p.CurrentEndTime
	}
	if p.ExtensionCount != nil {
		a.ExtensionCount = *p.ExtensionCount
	}
	if p.BidCount != nil {
		a.BidCount = *p.BidCount
	}
	if p.WinnerId != nil {
		a.WinnerId = *p.WinnerId
	}
	if p.WinningBidId != nil {
		a.WinningBidId = *p.WinningBidId
	}
	if p.SalePrice != nil {
		price := *p.SalePrice
		a.SalePrice = &price
	}
	if p.FinalizedAt != nil {
		t := *p.FinalizedAt
		a.FinalizedAt = &t
	}
	if p.UpdatedAt != nil {
		a.UpdatedAt = *p.UpdatedAt
	}
}
