package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"ecombench/internal/errkind"
)

// MultiSink fans out appends to every sink in order and stops at the first
// failure.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a fan-out over sinks. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Append(ctx context.Context, recs ...Record) error {
	for _, s := range m.sinks {
		if err := s.Append(ctx, recs...); err != nil {
			return err
		}
	}
	return nil
}

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes every record as a JSON message keyed by query name.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a synchronous writer for topic. brokers is a
// comma-separated list of host:port.
func NewKafkaSink(brokers, topic string) (*KafkaSink, error) {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("ledger: kafka brokers must not be empty")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("ledger: kafka topic must not be empty")
	}
	return &KafkaSink{writer: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}}, nil
}

func (k *KafkaSink) Append(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(recs))
	for _, r := range recs {
		b, err := json.Marshal(r)
		if err != nil {
			return errkind.Persistence("publish", r.Query, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.Query), Value: b})
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return errkind.Persistence("publish", "kafka", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaSink) Close() error { return k.writer.Close() }
