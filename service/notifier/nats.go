package notifier

import (
	"github.com/nats-io/nats.go"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
)

// DefaultNatsSubject is the subject prefix, events go to <prefix>.<auctionId>
const DefaultNatsSubject = "auction.events"

type natsPublisher interface {
	Publish(subj string, data []byte) error
}

type natsSink struct {
	conn   natsPublisher
	prefix string
	close  func()
}

// NewNats publishes on conn. The connection is drained on Close.
func NewNats(conn *nats.Conn, subjectPrefix string) Sink {
	return newNats(conn, subjectPrefix, func() { _ = conn.Drain() })
}

func newNats(conn natsPublisher, subjectPrefix string, close func()) *natsSink {
	if subjectPrefix == "" {
		subjectPrefix = DefaultNatsSubject
	}
	return &natsSink{conn: conn, prefix: subjectPrefix, close: close}
}

// Subject is where events of auctionId are published
func Subject(prefix, auctionId string) string {
	return prefix + "." + auctionId
}

func (n *natsSink) Name() string {
	return "nats"
}

func (n *natsSink) Publish(c ctx.Ctx, e *auction.Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return n.conn.Publish(Subject(n.prefix, e.AuctionId), data)
}

func (n *natsSink) Close() error {
	if n.close != nil {
		n.close()
	}
	return nil
}
