package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/archive"
	"github.com/x-xyz/goauction/domain/archive/mocks"
	"github.com/x-xyz/goauction/domain/auction"
)

var (
	mockCtx = ctx.Background()
	t0      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type archiveSuite struct {
	suite.Suite

	clock *clock.Mock
	repo  *mocks.Repo
	im    archive.UseCase
}

func TestArchive(t *testing.T) {
	suite.Run(t, new(archiveSuite))
}

func (s *archiveSuite) SetupTest() {
	s.clock = clock.NewMock()
	s.clock.Set(t0)
	s.repo = mocks.NewRepo(s.T())
	s.im = New(&ArchiveUseCaseCfg{Clock: s.clock, Repo: s.repo})
}

func (s *archiveSuite) event() *auction.Event {
	a := &auction.Auction{
		Id:           "a1",
		Status:       auction.StatusActive,
		CurrentPrice: decimal.NewFromInt(150),
	}
	return auction.NewEvent(auction.EventBidPlaced, a, t0.Add(-time.Minute))
}

func (s *archiveSuite) TestArchive() {
	e := s.event()
	s.repo.On("Insert", mockCtx, mock.MatchedBy(func(r *archive.Record) bool {
		return r.EventId == e.Id && r.AuctionId == "a1" && r.ArchivedAt.Equal(t0) && r.OccurredAt.Equal(e.OccurredAt)
	})).Return(true, nil).Once()

	s.NoError(s.im.Archive(mockCtx, e))
}

func (s *archiveSuite) TestDuplicateIsNoop() {
	s.repo.On("Insert", mockCtx, mock.Anything).Return(false, nil).Once()
	s.NoError(s.im.Archive(mockCtx, s.event()))
}

func (s *archiveSuite) TestIncompleteEvent() {
	e := s.event()
	e.AuctionId = ""
	s.ErrorIs(s.im.Archive(mockCtx, e), domain.ErrBadParamInput)
	s.ErrorIs(s.im.Archive(mockCtx, nil), domain.ErrBadParamInput)
}

func (s *archiveSuite) TestRepoFailure() {
	s.repo.On("Insert", mockCtx, mock.Anything).
		Return(false, domain.NewRepositoryError("archive.Insert", errors.New("connection refused"))).Once()
	s.ErrorIs(s.im.Archive(mockCtx, s.event()), domain.ErrRepositoryUnavailable)
}

func (s *archiveSuite) TestHistory() {
	records := []*archive.Record{{EventId: "e1", AuctionId: "a1"}}
	s.repo.On("FindAll", mockCtx, "a1", mock.Anything).Return(records, nil).Once()

	res, err := s.im.History(mockCtx, "a1", archive.WithPagination(0, 10))
	s.NoError(err)
	s.Equal(records, res)
}
