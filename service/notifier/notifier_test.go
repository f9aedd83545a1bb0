package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain/auction"
)

type fakeNats struct {
	mu   sync.Mutex
	subj []string
	data [][]byte
}

func (f *fakeNats) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subj = append(f.subj, subj)
	f.data = append(f.data, data)
	return nil
}

type fakeKafka struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafka) Close() error {
	f.closed = true
	return nil
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Name() string {
	return "mock"
}

func (m *mockSink) Publish(c ctx.Ctx, e *auction.Event) error {
	return m.Called(c, e).Error(0)
}

func (m *mockSink) Close() error {
	return nil
}

type NotifierTestSuite struct {
	suite.Suite
	c     ctx.Ctx
	event *auction.Event
}

func TestNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(NotifierTestSuite))
}

func (s *NotifierTestSuite) SetupTest() {
	s.c = ctx.Background()
	a := &auction.Auction{
		Id:             "a1",
		Status:         auction.StatusActive,
		CurrentPrice:   decimal.NewFromInt(150),
		CurrentEndTime: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	bid := &auction.Bid{Id: "b1", BidderId: "u1", Amount: decimal.NewFromInt(150)}
	s.event = auction.NewEvent(auction.EventBidPlaced, a, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)).WithBid(bid)
}

func (s *NotifierTestSuite) TestNats() {
	conn := &fakeNats{}
	sink := newNats(conn, "", nil)
	s.Require().NoError(sink.Publish(s.c, s.event))

	s.Equal([]string{"auction.events.a1"}, conn.subj)
	e, err := Decode(conn.data[0])
	s.Require().NoError(err)
	s.Equal(s.event.Id, e.Id)
	s.Equal(auction.EventBidPlaced, e.Type)
	s.True(decimal.NewFromInt(150).Equal(*e.Amount))
}

func (s *NotifierTestSuite) TestKafka() {
	w := &fakeKafka{}
	sink := newKafka(w)
	s.Require().NoError(sink.Publish(s.c, s.event))
	s.Require().Len(w.msgs, 1)
	s.Equal([]byte("a1"), w.msgs[0].Key)
	s.Equal("type", w.msgs[0].Headers[0].Key)

	s.Require().NoError(sink.Close())
	s.True(w.closed)
}

func (s *NotifierTestSuite) TestMultiJoinsErrors() {
	failing := &mockSink{}
	failing.On("Publish", mock.Anything, s.event).Return(errors.New("down")).Once()
	conn := &fakeNats{}

	err := NewMulti(failing, newNats(conn, "x", nil)).Publish(s.c, s.event)
	s.Error(err)
	s.Len(conn.subj, 1)
	failing.AssertExpectations(s.T())
}

func (s *NotifierTestSuite) TestAsyncRetries() {
	done := make(chan struct{})
	sink := &mockSink{}
	sink.On("Publish", mock.Anything, s.event).Return(errors.New("timeout")).Once()
	sink.On("Publish", mock.Anything, s.event).Return(nil).Once().Run(func(mock.Arguments) {
		close(done)
	})

	a := NewAsync(sink, AsyncConfig{Workers: 2, RetryStart: time.Millisecond, RetryLimit: time.Millisecond}, metrics.New("notifier"))
	defer a.Close()

	s.Require().NoError(a.Publish(s.c, s.event))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("event not delivered")
	}
	sink.AssertExpectations(s.T())
}

func (s *NotifierTestSuite) TestAsyncDoesNotInheritCancellation() {
	done := make(chan error, 1)
	sink := &mockSink{}
	sink.On("Publish", mock.Anything, s.event).Return(nil).Run(func(args mock.Arguments) {
		done <- args.Get(0).(ctx.Ctx).Err()
	})

	a := NewAsync(sink, AsyncConfig{Workers: 1}, metrics.New("notifier"))
	defer a.Close()

	c, cancel := ctx.WithCancel(s.c)
	s.Require().NoError(a.Publish(c, s.event))
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("event not delivered")
	}
}

// orderSink records event ids per auction, the first event of each auction
// is slow so a free worker could overtake it
type orderSink struct {
	mu   sync.Mutex
	seen map[string][]string
	done chan struct{}
	want int
	n    int
}

func (o *orderSink) Name() string {
	return "order"
}

func (o *orderSink) Publish(c ctx.Ctx, e *auction.Event) error {
	o.mu.Lock()
	first := len(o.seen[e.AuctionId]) == 0
	o.mu.Unlock()
	if first {
		time.Sleep(20 * time.Millisecond)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen[e.AuctionId] = append(o.seen[e.AuctionId], e.Id)
	o.n++
	if o.n == o.want {
		close(o.done)
	}
	return nil
}

func (o *orderSink) Close() error {
	return nil
}

func (s *NotifierTestSuite) TestAsyncKeepsAuctionOrder() {
	sink := &orderSink{seen: map[string][]string{}, done: make(chan struct{}), want: 30}
	a := NewAsync(sink, AsyncConfig{Workers: 4}, metrics.New("notifier"))
	defer a.Close()

	sent := map[string][]string{}
	for i := 0; i < 10; i++ {
		for _, id := range []string{"a1", "a2", "a3"} {
			e := auction.NewEvent(auction.EventBidPlaced, &auction.Auction{Id: id}, time.Now())
			sent[id] = append(sent[id], e.Id)
			s.Require().NoError(a.Publish(s.c, e))
		}
	}

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		s.Fail("events not delivered")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	s.Equal(sent, sink.seen)
}
