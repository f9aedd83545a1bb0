package notifier

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain/auction"
)

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaSink struct {
	writer kafkaWriter
}

// NewKafka writes events keyed by auction id, so events of one auction stay
// ordered within a partition.
func NewKafka(cfg KafkaConfig) Sink {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return newKafka(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	})
}

func newKafka(w kafkaWriter) *kafkaSink {
	return &kafkaSink{writer: w}
}

func (k *kafkaSink) Name() string {
	return "kafka"
}

func (k *kafkaSink) Publish(c ctx.Ctx, e *auction.Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(c, kafka.Message{
		Key:   []byte(e.AuctionId),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	})
}

func (k *kafkaSink) Close() error {
	return k.writer.Close()
}
