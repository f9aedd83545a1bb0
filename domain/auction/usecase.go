package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
)

type CreateAuctionRequest struct {
	SellerId      domain.UserId   `json:"-"`
	Title         string          `json:"title" validate:"required,max=200"`
	Category      string          `json:"category" validate:"max=64"`
	Condition     string          `json:"condition" validate:"max=64"`
	StartingPrice decimal.Decimal `json:"startingPrice" validate:"gt=0"`
	StartTime     time.Time       `json:"startTime" validate:"required"`
	EndTime       time.Time       `json:"endTime" validate:"required,gtfield=StartTime"`
	// optional overrides of the configured increment policy
	IncrementFloor   *decimal.Decimal `json:"incrementFloor,omitempty" validate:"omitempty,gte=0"`
	IncrementPercent *decimal.Decimal `json:"incrementPercent,omitempty" validate:"omitempty,gte=0"`
}

type PlaceBidRequest struct {
	AuctionId string          `json:"-"`
	BidderId  domain.UserId   `json:"-"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
}

type SetProxyRequest struct {
	AuctionId string          `json:"-"`
	BidderId  domain.UserId   `json:"-"`
	MaxAmount decimal.Decimal `json:"maxAmount" validate:"gt=0"`
}

// Extension is the anti-sniping outcome of one admitted bid
type Extension struct {
	Extended   bool      `json:"extended"`
	NewEnd     time.Time `json:"newEnd"`
	CapReached bool      `json:"capReached"`
}

type BidResult struct {
	Bid       *Bid      `json:"bid"`
	Auction   *Auction  `json:"auction"`
	Extension Extension `json:"extension"`
	// bids placed by proxy commitments in reaction to Bid
	ProxyBids []*Bid `json:"proxyBids"`
}

type ProxyResult struct {
	Commitment *ProxyCommitment `json:"commitment"`
	Auction    *Auction         `json:"auction"`
	Bids       []*Bid           `json:"bids"`
}

type Outcome struct {
	AuctionId    string          `json:"auctionId"`
	Status       Status          `json:"status"`
	WinnerId     domain.UserId   `json:"winnerId,omitempty"`
	WinningBidId string          `json:"winningBidId,omitempty"`
	Price        decimal.Decimal `json:"price"`
}

type ViewStats struct {
	TotalViews  int64 `json:"totalViews"`
	LiveViewers int64 `json:"liveViewers"`
}

type UseCase interface {
	CreateAuction(ctx ctx.Ctx, req CreateAuctionRequest) (*Auction, error)
	GetAuction(ctx ctx.Ctx, id string) (*Auction, error)
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Auction, error)
	Count(ctx ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	// CancelAuction withdraws a draft auction. Only the seller may cancel.
	CancelAuction(ctx ctx.Ctx, id string, requester domain.UserId) (*Auction, error)
	// Activate promotes a draft whose window has opened. It reports false
	// when the auction is not eligible.
	Activate(ctx ctx.Ctx, id string) (bool, error)

	PlaceBid(ctx ctx.Ctx, req PlaceBidRequest) (*BidResult, error)
	ListBids(ctx ctx.Ctx, auctionId string, opts ...BidFindAllOptionsFunc) ([]*Bid, error)
	VoidBid(ctx ctx.Ctx, auctionId, bidId string) (*Bid, error)

	SetProxy(ctx ctx.Ctx, req SetProxyRequest) (*ProxyResult, error)
	CancelProxy(ctx ctx.Ctx, auctionId string, bidderId domain.UserId) error

	// Finalize settles an expired auction at most once. Repeated calls return
	// the stored outcome together with ErrFinalizationConflict.
	Finalize(ctx ctx.Ctx, id string) (*Outcome, error)

	RecordView(ctx ctx.Ctx, auctionId string, viewerId string) (*ViewStats, error)
}
