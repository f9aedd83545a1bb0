package auction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ptr"
)

type AuctionTestSuite struct {
	suite.Suite
	policy IncrementPolicy
}

func TestAuctionTestSuite(t *testing.T) {
	suite.Run(t, new(AuctionTestSuite))
}

func (s *AuctionTestSuite) SetupTest() {
	s.policy = DefaultConfig().DefaultIncrementPolicy()
}

func (s *AuctionTestSuite) TestMinIncrement() {
	cases := []struct {
		price string
		want  string
	}{
		{"100", "10"},
		{"999", "10"},
		{"1000", "10"},
		{"2000", "20"},
		{"1550", "15.5"},
	}
	for _, c := range cases {
		got := s.policy.MinIncrement(decimal.RequireFromString(c.price))
		s.True(decimal.RequireFromString(c.want).Equal(got), "price %s: got %s", c.price, got)
	}
	s.True(decimal.NewFromInt(110).Equal(s.policy.MinimumBid(decimal.NewFromInt(100))))
}

func (s *AuctionTestSuite) TestStatusTransitions() {
	s.True(StatusDraft.CanTransitionTo(StatusActive))
	s.True(StatusDraft.CanTransitionTo(StatusCancelled))
	s.True(StatusActive.CanTransitionTo(StatusSold))
	s.True(StatusActive.CanTransitionTo(StatusEnded))
	s.False(StatusActive.CanTransitionTo(StatusCancelled))
	s.False(StatusSold.CanTransitionTo(StatusActive))
	s.False(StatusEnded.CanTransitionTo(StatusSold))
	s.True(StatusSold.IsTerminal())
	s.True(StatusCancelled.IsTerminal())
	s.False(StatusDraft.IsTerminal())
	s.False(Status("paused").IsValid())
}

func (s *AuctionTestSuite) TestIsOpenAt() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Auction{
		Status:         StatusActive,
		StartTime:      start,
		CurrentEndTime: start.Add(time.Hour),
	}
	s.False(a.IsOpenAt(start.Add(-time.Second)))
	s.True(a.IsOpenAt(start))
	s.True(a.IsOpenAt(start.Add(59 * time.Minute)))
	s.False(a.IsOpenAt(start.Add(time.Hour)))

	a.Status = StatusDraft
	s.False(a.IsOpenAt(start.Add(time.Minute)))
}

func (s *AuctionTestSuite) TestPatchApply() {
	a := &Auction{Status: StatusActive, CurrentPrice: decimal.NewFromInt(100), Version: 3}
	price := decimal.NewFromInt(150)
	status := StatusSold
	AuctionPatchable{
		Status:       &status,
		CurrentPrice: &price,
		BidCount:     ptr.Int(2),
		WinningBidId: ptr.String("b1"),
	}.Apply(a)

	s.Equal(StatusSold, a.Status)
	s.True(price.Equal(a.CurrentPrice))
	s.Equal(2, a.BidCount)
	s.Equal("b1", a.WinningBidId)
	s.Equal(int64(3), a.Version)
}

func (s *AuctionTestSuite) TestOutcomePrice() {
	a := &Auction{Id: "a1", Status: StatusEnded, CurrentPrice: decimal.NewFromInt(100)}
	s.Equal("100", a.Outcome().Price.String())

	sale := decimal.NewFromInt(150)
	status := StatusSold
	AuctionPatchable{Status: &status, SalePrice: &sale}.Apply(a)
	a.CurrentPrice = decimal.NewFromInt(165)
	s.Equal("150", a.Outcome().Price.String())

	c := a.Clone()
	*a.SalePrice = decimal.NewFromInt(1)
	s.Equal("150", c.SalePrice.String())
}

func (s *AuctionTestSuite) TestBidOutranks() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	high := &Bid{Amount: decimal.NewFromInt(200), PlacedAt: t0.Add(time.Minute), Sequence: 2}
	low := &Bid{Amount: decimal.NewFromInt(150), PlacedAt: t0, Sequence: 1}
	s.True(high.Outranks(low))
	s.False(low.Outranks(high))

	early := &Bid{Amount: decimal.NewFromInt(200), PlacedAt: t0, Sequence: 3}
	s.True(early.Outranks(high))

	sameTime := &Bid{Amount: decimal.NewFromInt(200), PlacedAt: t0, Sequence: 4}
	s.True(early.Outranks(sameTime))
	s.False(sameTime.Outranks(early))
}

func (s *AuctionTestSuite) TestProxyOutranks() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &ProxyCommitment{Id: "a", MaxAmount: decimal.NewFromInt(300), CreatedAt: t0.Add(time.Second)}
	b := &ProxyCommitment{Id: "b", MaxAmount: decimal.NewFromInt(300), CreatedAt: t0}
	c := &ProxyCommitment{Id: "c", MaxAmount: decimal.NewFromInt(250), CreatedAt: t0}
	s.True(b.Outranks(a))
	s.True(a.Outranks(c))
	s.False(c.Outranks(b))
}

func (s *AuctionTestSuite) TestBidRejection() {
	a := &Auction{CurrentPrice: decimal.NewFromInt(100), IncrementPolicy: s.policy}
	err := error(NewBidRejection(ErrIncrementTooSmall, a))

	s.ErrorIs(err, ErrIncrementTooSmall)
	s.True(IsRejection(err))
	s.False(IsTransient(err))
	s.Equal("increment_too_small", RejectionCode(err))

	data := err.(*BidRejection).ErrorData().(map[string]interface{})
	s.True(decimal.NewFromInt(110).Equal(data["minimumBid"].(decimal.Decimal)))
}

func (s *AuctionTestSuite) TestConfigWithDefaults() {
	c := Config{MaxExtensions: 5}.WithDefaults()
	s.Equal(5, c.MaxExtensions)
	s.Equal(5*time.Minute, c.ExtensionWindow)
	s.Equal(4, c.MaxProxyRounds)
	s.Equal(500, c.SweepPageSize)
}

func (s *AuctionTestSuite) TestFindAllOptions() {
	opts, err := GetFindAllOptions(WithStatus(StatusActive), WithIdGT("abc"), WithLimit(10))
	s.NoError(err)
	s.Equal(StatusActive, *opts.Status)
	s.Equal("abc", *opts.IdGT)
	s.Equal(AuctionSortId, *opts.Sort)
	s.Equal(int32(10), *opts.Limit)

	_, err = GetFindAllOptions(WithStatus("bogus"))
	s.Error(err)
}
