package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events to a topic for the downstream pixel and
// conversions API forwarders.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(topic string, brokers ...string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.VisitorID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish event failed: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() {
	if err := k.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v\n", err)
	}
}

// LogSink writes events to the process log. Used when no broker is set.
type LogSink struct{}

func (LogSink) Send(_ context.Context, event Event) error {
	log.Printf("tracking event %s visitor=%s value=%s %s items=%v",
		event.Name, event.VisitorID, event.Params.Value.StringFixed(2), event.Params.Currency, event.Params.ContentIDs)
	return nil
}
