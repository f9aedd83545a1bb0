package auction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

type EventType string

const (
	EventAuctionCreated      EventType = "auction.created"
	EventAuctionActivated    EventType = "auction.activated"
	EventAuctionCancelled    EventType = "auction.cancelled"
	EventBidPlaced           EventType = "bid.placed"
	EventBidOutbid           EventType = "bid.outbid"
	EventBidVoided           EventType = "bid.voided"
	EventAuctionExtended     EventType = "auction.extended"
	EventExtensionCapReached EventType = "auction.extension_cap_reached"
	EventAuctionSold         EventType = "auction.sold"
	EventAuctionEnded        EventType = "auction.ended"
)

// Event is a domain event handed to notification and archive consumers
type Event struct {
	Id               string           `json:"id"`
	Type             EventType        `json:"type"`
	AuctionId        string           `json:"auctionId"`
	OccurredAt       time.Time        `json:"occurredAt"`
	Status           Status           `json:"status"`
	CurrentPrice     decimal.Decimal  `json:"currentPrice"`
	CurrentEndTime   time.Time        `json:"currentEndTime"`
	ExtensionCount   int              `json:"extensionCount"`
	BidderId         domain.UserId    `json:"bidderId,omitempty"`
	BidId            string           `json:"bidId,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	IsProxyBid       bool             `json:"isProxyBid,omitempty"`
	PreviousBidderId domain.UserId    `json:"previousBidderId,omitempty"`
	WinnerId         domain.UserId    `json:"winnerId,omitempty"`
}

// NewEvent snapshots a's public state at time at
func NewEvent(typ EventType, a *Auction, at time.Time) *Event {
	return &Event{
		Id:             uuid.NewString(),
		Type:           typ,
		AuctionId:      a.Id,
		OccurredAt:     at,
		Status:         a.Status,
		CurrentPrice:   a.CurrentPrice,
		CurrentEndTime: a.CurrentEndTime,
		ExtensionCount: a.ExtensionCount,
		WinnerId:       a.WinnerId,
	}
}

// WithBid attaches the bid that caused the event
func (e *Event) WithBid(b *Bid) *Event {
	amount := b.Amount
	e.BidderId = b.BidderId
	e.BidId = b.Id
	e.Amount = &amount
	e.IsProxyBid = b.IsProxyBid
	return e
}
