// Package notifier delivers auction events to external sinks
package notifier

import (
	"encoding/json"
	"errors"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	"github.com/x-xyz/goauction/domain/auction"
)

// Sink is a publisher that owns a connection
type Sink interface {
	auction.Publisher
	Name() string
	Close() error
}

func encode(e *auction.Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a payload written by any sink of this package
func Decode(data []byte) (*auction.Event, error) {
	e := &auction.Event{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

type logSink struct{}

// NewLog returns a sink writing every event to the log, used when no
// broker is configured.
func NewLog() Sink {
	return &logSink{}
}

func (l *logSink) Name() string {
	return "log"
}

func (l *logSink) Publish(c ctx.Ctx, e *auction.Event) error {
	c.WithFields(log.Fields{
		"eventId":   e.Id,
		"type":      e.Type,
		"auctionId": e.AuctionId,
		"bidderId":  e.BidderId,
		"amount":    e.Amount,
	}).Info("auction event")
	return nil
}

func (l *logSink) Close() error {
	return nil
}

type multi struct {
	sinks []Sink
}

// NewMulti fans an event out to every sink. All sinks are tried and their
// errors joined.
func NewMulti(sinks ...Sink) Sink {
	return &multi{sinks: sinks}
}

func (m *multi) Name() string {
	return "multi"
}

func (m *multi) Publish(c ctx.Ctx, e *auction.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(c, e); err != nil {
			c.WithFields(log.Fields{"err": err, "sink": s.Name(), "eventId": e.Id}).Error("sink.Publish failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
