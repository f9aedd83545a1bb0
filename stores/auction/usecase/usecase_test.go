package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/keylock"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/auction"
	"github.com/x-xyz/goauction/domain/auction/mocks"
	"github.com/x-xyz/goauction/domain/presence"
	"github.com/x-xyz/goauction/stores/auction/locker"
	"github.com/x-xyz/goauction/stores/auction/repository/memory"
	presencestore "github.com/x-xyz/goauction/stores/presence"
)

var (
	mockCtx = ctx.Background()
	t0      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

const seller = domain.UserId("seller")

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// recorder keeps published events in order
type recorder struct {
	mu     sync.Mutex
	events []*auction.Event
}

func (r *recorder) Publish(c ctx.Ctx, e *auction.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []auction.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []auction.EventType{}
	for _, e := range r.events {
		res = append(res, e.Type)
	}
	return res
}

func (r *recorder) count(typ auction.EventType) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type usecaseSuite struct {
	suite.Suite

	clock *clock.Mock
	store *memory.Store
	pub   *recorder
	im    auction.UseCase
}

func TestUseCase(t *testing.T) {
	suite.Run(t, new(usecaseSuite))
}

func (s *usecaseSuite) SetupTest() {
	s.clock = clock.NewMock()
	s.clock.Set(t0)
	s.store = memory.NewStore()
	s.pub = &recorder{}
	s.im = s.newUseCase(s.store.AuctionRepo())
}

func (s *usecaseSuite) newUseCase(auctions auction.AuctionRepo) auction.UseCase {
	return s.newUseCaseWith(func(cfg *AuctionUseCaseCfg) {
		cfg.AuctionRepo = auctions
	})
}

// newUseCaseWith builds a usecase over the suite's store after edit
// replaced some of its collaborators
func (s *usecaseSuite) newUseCaseWith(edit func(cfg *AuctionUseCaseCfg)) auction.UseCase {
	cfg := &AuctionUseCaseCfg{
		Clock:       s.clock,
		Config:      auction.DefaultConfig(),
		AuctionRepo: s.store.AuctionRepo(),
		BidRepo:     s.store.BidRepo(),
		ProxyRepo:   s.store.ProxyRepo(),
		Transactor:  s.store.Transactor(),
		Locker:      locker.NewLocal(keylock.New(), time.Second),
		Publisher:   s.pub,
		Presence:    presencestore.NewMemory(presence.DefaultConfig()),
	}
	edit(cfg)
	return New(cfg)
}

// cancelOnAppend ends the caller's request right after a bid is stored
type cancelOnAppend struct {
	auction.BidRepo
	cancel context.CancelFunc
}

func (r *cancelOnAppend) Append(c ctx.Ctx, b *auction.Bid) error {
	err := r.BidRepo.Append(c, b)
	r.cancel()
	return err
}

// ctxProxyRepo fails once its context is done, as a network driver does
type ctxProxyRepo struct {
	auction.ProxyRepo
}

func (r *ctxProxyRepo) FindActive(c ctx.Ctx, auctionId string) ([]*auction.ProxyCommitment, error) {
	if err := c.Err(); err != nil {
		return nil, domain.NewRepositoryError("proxy.FindActive", err)
	}
	return r.ProxyRepo.FindActive(c, auctionId)
}

// replayTransactor runs every transaction body twice, the first attempt is
// rolled back as a transient commit failure would be
type replayTransactor struct {
	auction.Transactor
}

var errTransient = errors.New("transient transaction error")

func (t *replayTransactor) RunInTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	err := t.Transactor.RunInTransaction(c, func(c ctx.Ctx) error {
		if err := fn(c); err != nil {
			return err
		}
		return errTransient
	})
	if err != errTransient {
		return err
	}
	return t.Transactor.RunInTransaction(c, fn)
}

// newActive creates an auction open from now for dur at price 100
func (s *usecaseSuite) newActive(dur time.Duration) *auction.Auction {
	now := s.clock.Now()
	a, err := s.im.CreateAuction(mockCtx, auction.CreateAuctionRequest{
		SellerId:      seller,
		Title:         "vintage lamp",
		StartingPrice: d("100"),
		StartTime:     now,
		EndTime:       now.Add(dur),
	})
	s.Require().NoError(err)

	ok, err := s.im.Activate(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Require().True(ok)

	a, err = s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.pub.reset()
	return a
}

func (s *usecaseSuite) bid(auctionId string, bidder domain.UserId, amount string) (*auction.BidResult, error) {
	return s.im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: auctionId, BidderId: bidder, Amount: d(amount)})
}

func (s *usecaseSuite) winning(auctionId string) []*auction.Bid {
	res, err := s.im.ListBids(mockCtx, auctionId, auction.WithIsWinning(true))
	s.Require().NoError(err)
	return res
}

func (s *usecaseSuite) TestIncrementRule() {
	a := s.newActive(time.Hour)

	resA, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)
	s.Equal("150", resA.Auction.CurrentPrice.String())

	_, err = s.bid(a.Id, "B", "155")
	s.ErrorIs(err, auction.ErrIncrementTooSmall)
	var rej *auction.BidRejection
	s.Require().True(errors.As(err, &rej))
	s.Equal("150", rej.CurrentPrice.String())
	s.Equal("160", rej.MinimumBid.String())

	resB, err := s.bid(a.Id, "B", "165")
	s.Require().NoError(err)

	w := s.winning(a.Id)
	s.Require().Len(w, 1)
	s.Equal(resB.Bid.Id, w[0].Id)

	bids, err := s.im.ListBids(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Require().Len(bids, 2)
	s.False(bids[0].IsWinning)
	s.Equal(1, bids[0].Sequence)
	s.Equal(2, bids[1].Sequence)

	s.Equal([]auction.EventType{
		auction.EventBidPlaced,
		auction.EventBidPlaced,
		auction.EventBidOutbid,
	}, s.pub.types())
}

func (s *usecaseSuite) TestAdmissionChecksInOrder() {
	a := s.newActive(time.Hour)

	_, err := s.bid("missing", "A", "150")
	s.ErrorIs(err, auction.ErrNotFound)

	// the seller is rejected before the amount is looked at
	_, err = s.bid(a.Id, seller, "1")
	s.ErrorIs(err, auction.ErrSelfBidForbidden)

	for _, amount := range []string{"100", "99.99", "0", "-5"} {
		_, err = s.bid(a.Id, "A", amount)
		s.ErrorIs(err, auction.ErrBidTooLow, amount)
	}

	_, err = s.bid(a.Id, "A", "109.99")
	s.ErrorIs(err, auction.ErrIncrementTooSmall)

	_, err = s.bid(a.Id, "A", "110")
	s.NoError(err)

	s.clock.Add(time.Hour)
	_, err = s.bid(a.Id, "B", "500")
	s.ErrorIs(err, auction.ErrAuctionNotOpen)

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(1, got.BidCount)
	s.Equal("110", got.CurrentPrice.String())
}

func (s *usecaseSuite) TestDraftIsNotOpen() {
	now := s.clock.Now()
	a, err := s.im.CreateAuction(mockCtx, auction.CreateAuctionRequest{
		SellerId:      seller,
		Title:         "lamp",
		StartingPrice: d("100"),
		StartTime:     now.Add(time.Hour),
		EndTime:       now.Add(2 * time.Hour),
	})
	s.Require().NoError(err)
	s.Equal(auction.StatusDraft, a.Status)

	_, err = s.bid(a.Id, "A", "150")
	s.ErrorIs(err, auction.ErrAuctionNotOpen)
}

func (s *usecaseSuite) TestPercentIncrement() {
	a := s.newActive(time.Hour)

	_, err := s.bid(a.Id, "A", "1550")
	s.Require().NoError(err)

	// 1% of 1550 beats the floor of 10
	_, err = s.bid(a.Id, "B", "1565")
	s.ErrorIs(err, auction.ErrIncrementTooSmall)
	_, err = s.bid(a.Id, "B", "1565.50")
	s.NoError(err)
}

func (s *usecaseSuite) TestAntiSniping() {
	a := s.newActive(time.Hour)
	end := a.CurrentEndTime

	s.clock.Set(end.Add(-2 * time.Minute))
	res, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)
	s.True(res.Extension.Extended)
	s.Equal(s.clock.Now().Add(5*time.Minute), res.Auction.CurrentEndTime)
	s.Equal(1, res.Auction.ExtensionCount)

	for i, amount := range []string{"160", "170"} {
		s.clock.Add(4 * time.Minute)
		res, err = s.bid(a.Id, "B", amount)
		s.Require().NoError(err)
		s.True(res.Extension.Extended)
		s.Equal(i+2, res.Auction.ExtensionCount)
	}

	capEnd := res.Auction.CurrentEndTime
	s.clock.Add(4 * time.Minute)
	res, err = s.bid(a.Id, "C", "180")
	s.Require().NoError(err)
	s.False(res.Extension.Extended)
	s.True(res.Extension.CapReached)
	s.Equal(capEnd, res.Auction.CurrentEndTime)
	s.Equal(3, res.Auction.ExtensionCount)
	s.Equal(1, s.pub.count(auction.EventExtensionCapReached))
	s.Equal(3, s.pub.count(auction.EventAuctionExtended))

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.False(got.CurrentEndTime.Before(got.OriginalEndTime))
}

func (s *usecaseSuite) TestNoExtensionOutsideWindow() {
	a := s.newActive(time.Hour)

	s.clock.Set(a.CurrentEndTime.Add(-6 * time.Minute))
	res, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)
	s.False(res.Extension.Extended)
	s.False(res.Extension.CapReached)
	s.Equal(a.OriginalEndTime, res.Auction.CurrentEndTime)
	s.Equal(0, res.Auction.ExtensionCount)
}

func (s *usecaseSuite) TestProxyCounterBid() {
	a := s.newActive(time.Hour)

	pr, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)
	s.Empty(pr.Bids)

	res, err := s.bid(a.Id, "Y", "150")
	s.Require().NoError(err)
	s.Require().Len(res.ProxyBids, 1)
	s.Equal(domain.UserId("X"), res.ProxyBids[0].BidderId)
	s.Equal("160", res.ProxyBids[0].Amount.String())
	s.True(res.ProxyBids[0].IsProxyBid)
	s.Equal("160", res.Auction.CurrentPrice.String())

	w := s.winning(a.Id)
	s.Require().Len(w, 1)
	s.Equal(domain.UserId("X"), w[0].BidderId)

	p, err := s.store.ProxyRepo().FindOne(mockCtx, a.Id, "X")
	s.Require().NoError(err)
	s.Equal("160", p.CurrentAmount.String())
	s.Equal(1, p.BidCount)
}

func (s *usecaseSuite) TestProxyCountersAfterCallerLeaves() {
	a := s.newActive(time.Hour)
	_, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)

	reqCtx, cancel := ctx.WithCancel(mockCtx)
	defer cancel()
	im := s.newUseCaseWith(func(cfg *AuctionUseCaseCfg) {
		cfg.BidRepo = &cancelOnAppend{BidRepo: s.store.BidRepo(), cancel: cancel}
		cfg.ProxyRepo = &ctxProxyRepo{ProxyRepo: s.store.ProxyRepo()}
	})

	res, err := im.PlaceBid(reqCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: "Y", Amount: d("150")})
	s.Require().NoError(err)
	s.Error(reqCtx.Err())
	s.Require().Len(res.ProxyBids, 1)
	s.Equal("160", res.ProxyBids[0].Amount.String())

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal("160", got.CurrentPrice.String())
	w := s.winning(a.Id)
	s.Require().Len(w, 1)
	s.Equal(domain.UserId("X"), w[0].BidderId)
}

func (s *usecaseSuite) TestProxyBidSurvivesReplayedTransaction() {
	a := s.newActive(time.Hour)
	_, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)

	im := s.newUseCaseWith(func(cfg *AuctionUseCaseCfg) {
		cfg.Transactor = &replayTransactor{Transactor: s.store.Transactor()}
	})
	res, err := im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: "Y", Amount: d("150")})
	s.Require().NoError(err)
	s.Require().Len(res.ProxyBids, 1)

	p, err := s.store.ProxyRepo().FindOne(mockCtx, a.Id, "X")
	s.Require().NoError(err)
	s.Equal(1, p.BidCount)
	s.Equal("160", p.CurrentAmount.String())

	bids, err := s.store.BidRepo().FindAll(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Len(bids, 2)
	s.Len(s.winning(a.Id), 1)
}

func (s *usecaseSuite) TestTwoProxies() {
	a := s.newActive(time.Hour)

	_, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)
	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "Y", MaxAmount: d("300")})
	s.Require().NoError(err)

	res, err := s.bid(a.Id, "Y", "150")
	s.Require().NoError(err)
	s.Require().Len(res.ProxyBids, 1)
	s.Equal(domain.UserId("X"), res.ProxyBids[0].BidderId)
	s.Equal("310", res.ProxyBids[0].Amount.String())

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal("310", got.CurrentPrice.String())
	s.Equal(2, got.BidCount)

	s.clock.Set(got.CurrentEndTime)
	out, err := s.im.Finalize(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(auction.StatusSold, out.Status)
	s.Equal(domain.UserId("X"), out.WinnerId)
	s.Equal("310", out.Price.String())
}

func (s *usecaseSuite) TestProxyCascade() {
	a := s.newActive(time.Hour)

	_, err := s.bid(a.Id, "Z", "150")
	s.Require().NoError(err)

	// Z holds the winning bid so registering resolves right away
	pr, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "Y", MaxAmount: d("300")})
	s.Require().NoError(err)
	s.Require().Len(pr.Bids, 1)
	s.Equal("160", pr.Bids[0].Amount.String())
	s.Equal("160", pr.Commitment.CurrentAmount.String())

	// X jumps straight above Y's ceiling, Y cannot answer
	pr, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)
	s.Require().Len(pr.Bids, 1)
	s.Equal(domain.UserId("X"), pr.Bids[0].BidderId)
	s.Equal("310", pr.Bids[0].Amount.String())

	// a manual bid by Y above its own ceiling makes X counter again
	res, err := s.bid(a.Id, "Y", "400")
	s.Require().NoError(err)
	s.Require().Len(res.ProxyBids, 1)
	s.Equal("410", res.ProxyBids[0].Amount.String())

	res, err = s.bid(a.Id, "Z", "480")
	s.Require().NoError(err)
	s.Require().Len(res.ProxyBids, 1)
	s.Equal("490", res.ProxyBids[0].Amount.String())

	// X's ceiling is no longer above the price
	res, err = s.bid(a.Id, "Z", "500")
	s.Require().NoError(err)
	s.Empty(res.ProxyBids)
	w := s.winning(a.Id)
	s.Require().Len(w, 1)
	s.Equal(domain.UserId("Z"), w[0].BidderId)

	bids, err := s.im.ListBids(mockCtx, a.Id)
	s.Require().NoError(err)
	for _, b := range bids {
		if b.IsProxyBid && b.BidderId == "X" {
			s.False(b.Amount.GreaterThan(d("500")))
		}
		if b.IsProxyBid && b.BidderId == "Y" {
			s.False(b.Amount.GreaterThan(d("300")))
		}
	}
	s.Len(s.winning(a.Id), 1)
}

func (s *usecaseSuite) TestProxyNeverBidsAgainstOwner() {
	a := s.newActive(time.Hour)

	_, err := s.bid(a.Id, "X", "150")
	s.Require().NoError(err)
	pr, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("500")})
	s.Require().NoError(err)
	s.Empty(pr.Bids)

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal("150", got.CurrentPrice.String())
	s.Equal(1, got.BidCount)
}

func (s *usecaseSuite) TestEqualCeilingsEarliestWins() {
	a := s.newActive(time.Hour)

	_, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("300")})
	s.Require().NoError(err)
	s.clock.Add(time.Second)
	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "Y", MaxAmount: d("300")})
	s.Require().NoError(err)

	res, err := s.bid(a.Id, "Z", "150")
	s.Require().NoError(err)
	s.Require().NotEmpty(res.ProxyBids)
	last := res.ProxyBids[len(res.ProxyBids)-1]
	s.Equal(domain.UserId("X"), last.BidderId)
	s.Equal("300", last.Amount.String())
}

func (s *usecaseSuite) TestSetProxyRules() {
	a := s.newActive(time.Hour)

	_, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: seller, MaxAmount: d("500")})
	s.ErrorIs(err, auction.ErrSelfBidForbidden)

	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("100")})
	s.ErrorIs(err, auction.ErrBidTooLow)

	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("300")})
	s.Require().NoError(err)
	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("250")})
	s.ErrorIs(err, auction.ErrProxyCeilingTooLow)

	pr, err := s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("400")})
	s.Require().NoError(err)
	s.Equal("400", pr.Commitment.MaxAmount.String())

	s.Require().NoError(s.im.CancelProxy(mockCtx, a.Id, "X"))
	s.Require().NoError(s.im.CancelProxy(mockCtx, a.Id, "X"))
	s.ErrorIs(s.im.CancelProxy(mockCtx, a.Id, "nobody"), domain.ErrNotFound)

	res, err := s.bid(a.Id, "Y", "150")
	s.Require().NoError(err)
	s.Empty(res.ProxyBids)

	// a cancelled commitment can be armed again at any ceiling
	pr, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "X", MaxAmount: d("200")})
	s.Require().NoError(err)
	s.True(pr.Commitment.IsActive)
	s.Require().Len(pr.Bids, 1)
	s.Equal("160", pr.Bids[0].Amount.String())
}

func (s *usecaseSuite) TestFinalizeNoBids() {
	a := s.newActive(time.Hour)

	_, err := s.im.Finalize(mockCtx, a.Id)
	s.ErrorIs(err, auction.ErrAuctionStillOpen)

	s.clock.Set(a.CurrentEndTime)
	out, err := s.im.Finalize(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(auction.StatusEnded, out.Status)
	s.True(out.WinnerId.IsEmpty())
	s.Equal([]auction.EventType{auction.EventAuctionEnded}, s.pub.types())

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(auction.StatusEnded, got.Status)
	s.NotNil(got.FinalizedAt)
}

func (s *usecaseSuite) TestFinalizeIsAtMostOnce() {
	a := s.newActive(time.Hour)
	_, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)
	_, err = s.im.SetProxy(mockCtx, auction.SetProxyRequest{AuctionId: a.Id, BidderId: "B", MaxAmount: d("300")})
	s.Require().NoError(err)
	s.pub.reset()

	s.clock.Set(a.CurrentEndTime.Add(time.Second))

	var wg sync.WaitGroup
	outcomes := make([]*auction.Outcome, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = s.im.Finalize(mockCtx, a.Id)
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err != nil {
			s.ErrorIs(err, auction.ErrFinalizationConflict)
			conflicts++
		}
	}
	s.Equal(1, conflicts)
	s.Equal(outcomes[0], outcomes[1])
	s.Equal(auction.StatusSold, outcomes[0].Status)
	s.Equal(domain.UserId("B"), outcomes[0].WinnerId)
	s.Equal("160", outcomes[0].Price.String())
	s.Equal(1, s.pub.count(auction.EventAuctionSold))

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(outcomes[0].WinningBidId, got.WinningBidId)
	// activation, two bids and one finalization
	s.Equal(int64(4), got.Version)

	active, err := s.store.ProxyRepo().FindActive(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Empty(active)

	_, err = s.bid(a.Id, "C", "1000")
	s.ErrorIs(err, auction.ErrAuctionNotOpen)
}

func (s *usecaseSuite) TestVoidBid() {
	a := s.newActive(time.Hour)
	resA, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)
	resB, err := s.bid(a.Id, "B", "165")
	s.Require().NoError(err)

	voided, err := s.im.VoidBid(mockCtx, a.Id, resB.Bid.Id)
	s.Require().NoError(err)
	s.False(voided.IsActive)
	s.False(voided.IsWinning)

	w := s.winning(a.Id)
	s.Require().Len(w, 1)
	s.Equal(resA.Bid.Id, w[0].Id)

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal("165", got.CurrentPrice.String())

	// voiding twice changes nothing
	_, err = s.im.VoidBid(mockCtx, a.Id, resB.Bid.Id)
	s.Require().NoError(err)
	s.Equal(1, s.pub.count(auction.EventBidVoided))

	_, err = s.im.VoidBid(mockCtx, a.Id, "missing")
	s.ErrorIs(err, domain.ErrNotFound)

	s.clock.Set(got.CurrentEndTime)
	out, err := s.im.Finalize(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Equal(domain.UserId("A"), out.WinnerId)
	s.Equal(resA.Bid.Id, out.WinningBidId)
	s.Equal("150", out.Price.String())

	// the stored outcome keeps the winner's own amount
	again, err := s.im.Finalize(mockCtx, a.Id)
	s.ErrorIs(err, auction.ErrFinalizationConflict)
	s.Equal("150", again.Price.String())
	sold, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Require().NotNil(sold.SalePrice)
	s.Equal("150", sold.SalePrice.String())
}

func (s *usecaseSuite) TestLifecycle() {
	now := s.clock.Now()
	a, err := s.im.CreateAuction(mockCtx, auction.CreateAuctionRequest{
		SellerId:       seller,
		Title:          "lamp",
		StartingPrice:  d("100"),
		StartTime:      now.Add(time.Minute),
		EndTime:        now.Add(time.Hour),
		IncrementFloor: func() *decimal.Decimal { v := d("5"); return &v }(),
	})
	s.Require().NoError(err)
	s.Equal("5", a.IncrementPolicy.Floor.String())
	s.Equal("1", a.IncrementPolicy.Percent.String())

	ok, err := s.im.Activate(mockCtx, a.Id)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.im.CancelAuction(mockCtx, a.Id, "someone")
	s.ErrorIs(err, auction.ErrForbidden)

	s.clock.Add(time.Minute)
	ok, err = s.im.Activate(mockCtx, a.Id)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.im.Activate(mockCtx, a.Id)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.im.CancelAuction(mockCtx, a.Id, seller)
	s.ErrorIs(err, auction.ErrInvalidTransition)

	draft, err := s.im.CreateAuction(mockCtx, auction.CreateAuctionRequest{
		SellerId:      seller,
		Title:         "chair",
		StartingPrice: d("10"),
		StartTime:     now.Add(time.Hour),
		EndTime:       now.Add(2 * time.Hour),
	})
	s.Require().NoError(err)
	cancelled, err := s.im.CancelAuction(mockCtx, draft.Id, seller)
	s.Require().NoError(err)
	s.Equal(auction.StatusCancelled, cancelled.Status)

	_, err = s.im.Finalize(mockCtx, draft.Id)
	s.ErrorIs(err, auction.ErrFinalizationConflict)

	s.Equal([]auction.EventType{
		auction.EventAuctionCreated,
		auction.EventAuctionActivated,
		auction.EventAuctionCreated,
		auction.EventAuctionCancelled,
	}, s.pub.types())

	cnt, err := s.im.Count(mockCtx, auction.WithSellerId(seller))
	s.Require().NoError(err)
	s.Equal(2, cnt)
}

func (s *usecaseSuite) TestCreateAuctionValidation() {
	now := s.clock.Now()
	cases := []struct {
		name string
		req  auction.CreateAuctionRequest
	}{
		{
			name: "no seller",
			req:  auction.CreateAuctionRequest{StartingPrice: d("1"), StartTime: now, EndTime: now.Add(time.Hour)},
		},
		{
			name: "zero price",
			req:  auction.CreateAuctionRequest{SellerId: seller, StartingPrice: d("0"), StartTime: now, EndTime: now.Add(time.Hour)},
		},
		{
			name: "end before start",
			req:  auction.CreateAuctionRequest{SellerId: seller, StartingPrice: d("1"), StartTime: now, EndTime: now},
		},
	}
	for _, c := range cases {
		_, err := s.im.CreateAuction(mockCtx, c.req)
		s.ErrorIs(err, domain.ErrBadParamInput, c.name)
	}
}

func (s *usecaseSuite) TestRecordView() {
	a := s.newActive(time.Hour)

	stats, err := s.im.RecordView(mockCtx, a.Id, "u1")
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalViews)
	s.Equal(int64(1), stats.LiveViewers)

	stats, err = s.im.RecordView(mockCtx, a.Id, "u2")
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalViews)
	s.Equal(int64(2), stats.LiveViewers)

	s.clock.Add(time.Minute)
	stats, err = s.im.RecordView(mockCtx, a.Id, "")
	s.Require().NoError(err)
	s.Equal(int64(3), stats.TotalViews)
	s.Equal(int64(0), stats.LiveViewers)

	_, err = s.im.RecordView(mockCtx, "missing", "u1")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *usecaseSuite) TestConcurrentBids() {
	a := s.newActive(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bidder := domain.UserId("bidder-" + string(rune('a'+i%10)))
			amount := decimal.NewFromInt(int64(110 + i*10))
			_, _ = s.im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: bidder, Amount: amount})
		}(i)
	}
	wg.Wait()

	got, err := s.im.GetAuction(mockCtx, a.Id)
	s.Require().NoError(err)

	bids, err := s.im.ListBids(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Require().NotEmpty(bids)
	s.Equal(got.BidCount, len(bids))
	s.Len(s.winning(a.Id), 1)

	// admission order is price order
	for i := 1; i < len(bids); i++ {
		s.True(bids[i].Amount.GreaterThan(bids[i-1].Amount))
		s.Equal(i+1, bids[i].Sequence)
	}
	s.True(got.CurrentPrice.Equal(bids[len(bids)-1].Amount))
	s.True(bids[len(bids)-1].IsWinning)
}

func (s *usecaseSuite) TestRepositoryUnavailable() {
	a := s.newActive(time.Hour)

	repo := mocks.NewAuctionRepo(s.T())
	repoErr := domain.NewRepositoryError("auction.FindOne", errors.New("connection reset"))
	repo.On("FindOne", mock.Anything, a.Id).Return(nil, repoErr)
	im := s.newUseCase(repo)

	_, err := im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: "A", Amount: d("150")})
	s.ErrorIs(err, auction.ErrRepositoryUnavailable)
	s.True(auction.IsTransient(err))
	s.False(auction.IsRejection(err))

	_, err = im.Finalize(mockCtx, a.Id)
	s.ErrorIs(err, auction.ErrRepositoryUnavailable)
}

func (s *usecaseSuite) TestFailedCommitLeavesNoTrace() {
	a := s.newActive(time.Hour)
	_, err := s.bid(a.Id, "A", "150")
	s.Require().NoError(err)

	// CAS fails inside the admission transaction
	repo := mocks.NewAuctionRepo(s.T())
	stored, err := s.store.AuctionRepo().FindOne(mockCtx, a.Id)
	s.Require().NoError(err)
	repo.On("FindOne", mock.Anything, a.Id).Return(stored, nil)
	repo.On("CompareAndSwap", mock.Anything, a.Id, stored.Version, mock.Anything).Return(auction.ErrVersionConflict)
	im := s.newUseCase(repo)

	_, err = im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: "B", Amount: d("200")})
	s.ErrorIs(err, auction.ErrVersionConflict)

	bids, err := s.store.BidRepo().FindAll(mockCtx, a.Id)
	s.Require().NoError(err)
	s.Require().Len(bids, 1)
	s.True(bids[0].IsWinning)
	s.Equal(domain.UserId("A"), bids[0].BidderId)
}

func (s *usecaseSuite) TestPublishFailureDoesNotFailBid() {
	a := s.newActive(time.Hour)

	pub := mocks.NewPublisher(s.T())
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *auction.Event) bool {
		return e.Type == auction.EventBidPlaced && e.AuctionId == a.Id
	})).Return(errors.New("sink down")).Once()

	im := New(&AuctionUseCaseCfg{
		Clock:       s.clock,
		AuctionRepo: s.store.AuctionRepo(),
		BidRepo:     s.store.BidRepo(),
		ProxyRepo:   s.store.ProxyRepo(),
		Transactor:  s.store.Transactor(),
		Locker:      locker.NewLocal(keylock.New(), time.Second),
		Publisher:   pub,
	})

	res, err := im.PlaceBid(mockCtx, auction.PlaceBidRequest{AuctionId: a.Id, BidderId: "A", Amount: d("150")})
	s.Require().NoError(err)
	s.Equal("150", res.Auction.CurrentPrice.String())

	stats, err := im.RecordView(mockCtx, a.Id, "u1")
	s.Require().NoError(err)
	s.Equal(int64(0), stats.LiveViewers)
}

func (s *usecaseSuite) TestMaybeExtend() {
	cfg := auction.DefaultConfig()
	end := t0.Add(time.Hour)
	a := &auction.Auction{CurrentEndTime: end}

	s.Equal(auction.Extension{NewEnd: end}, maybeExtend(cfg, a, end))
	s.Equal(auction.Extension{NewEnd: end}, maybeExtend(cfg, a, end.Add(-6*time.Minute)))
	// exactly at the window edge the new end equals the old one
	s.Equal(auction.Extension{NewEnd: end}, maybeExtend(cfg, a, end.Add(-5*time.Minute)))
	s.Equal(auction.Extension{Extended: true, NewEnd: end.Add(4 * time.Minute)}, maybeExtend(cfg, a, end.Add(-time.Minute)))

	a.ExtensionCount = cfg.MaxExtensions
	s.Equal(auction.Extension{NewEnd: end, CapReached: true}, maybeExtend(cfg, a, end.Add(-time.Minute)))
}
