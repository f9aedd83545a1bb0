package nats

import (
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/x-xyz/goauction/base/backoff"
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/base/metrics"
	"github.com/x-xyz/goauction/domain"
	"github.com/x-xyz/goauction/domain/archive"
	"github.com/x-xyz/goauction/service/notifier"
)

type Config struct {
	// events are read from <SubjectPrefix>.*
	SubjectPrefix string
	// consumers sharing a queue group split the stream
	Queue         string
	HandleTimeout time.Duration
	MaxAttempts   int
	RetryStart    time.Duration
	RetryLimit    time.Duration
}

func DefaultConfig() Config {
	return Config{
		SubjectPrefix: notifier.DefaultNatsSubject,
		Queue:         "archiver",
		HandleTimeout: 10 * time.Second,
		MaxAttempts:   5,
		RetryStart:    200 * time.Millisecond,
		RetryLimit:    5 * time.Second,
	}
}

type subscriber interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Consumer persists every event published by the nats notifier sink
type Consumer struct {
	conn subscriber
	uc   archive.UseCase
	cfg  Config
	met  metrics.Service
	sub  *nats.Subscription
}

func New(conn *nats.Conn, uc archive.UseCase, cfg Config) *Consumer {
	return newConsumer(conn, uc, cfg)
}

func newConsumer(conn subscriber, uc archive.UseCase, cfg Config) *Consumer {
	d := DefaultConfig()
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = d.SubjectPrefix
	}
	if cfg.Queue == "" {
		cfg.Queue = d.Queue
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = d.HandleTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.RetryStart <= 0 {
		cfg.RetryStart = d.RetryStart
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = d.RetryLimit
	}
	return &Consumer{
		conn: conn,
		uc:   uc,
		cfg:  cfg,
		met:  metrics.New("archiver"),
	}
}

// Start subscribes and returns, messages are handled on the subscription's
// goroutine until Close.
func (co *Consumer) Start(c ctx.Ctx) error {
	subj := notifier.Subject(co.cfg.SubjectPrefix, "*")
	sub, err := co.conn.QueueSubscribe(subj, co.cfg.Queue, func(msg *nats.Msg) {
		_ = co.handle(ctx.Detach(c), msg)
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "subject": subj}).Error("nats.QueueSubscribe failed")
		return err
	}
	co.sub = sub
	c.WithFields(log.Fields{"subject": subj, "queue": co.cfg.Queue}).Info("archive consumer subscribed")
	return nil
}

// Close drains the subscription so in-flight messages finish
func (co *Consumer) Close() error {
	if co.sub == nil {
		return nil
	}
	return co.sub.Drain()
}

func (co *Consumer) handle(c ctx.Ctx, msg *nats.Msg) error {
	defer co.met.BumpTime("handle.time").End()

	e, err := notifier.Decode(msg.Data)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "subject": msg.Subject}).Error("notifier.Decode failed")
		co.met.BumpSum("message.malformed", 1)
		return err
	}
	c = ctx.WithValues(c, map[string]interface{}{"eventId": e.Id, "auctionId": e.AuctionId})

	bo := backoff.NewExponential(co.cfg.RetryStart, co.cfg.RetryLimit)
	err = bo.Retry(c, co.cfg.MaxAttempts, isRetryable, func() error {
		tc, cancel := ctx.WithTimeout(c, co.cfg.HandleTimeout)
		defer cancel()
		return co.uc.Archive(tc, e)
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "attempts": bo.Attempts() + 1}).Error("archive.Archive failed, event dropped")
		co.met.BumpSum("message.dropped", 1, "type", string(e.Type))
		return err
	}
	return nil
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrRepositoryUnavailable)
}
