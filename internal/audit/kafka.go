package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes audit events so downstream services (notifications,
// calendar sync, analytics) can react to bookings.
type KafkaSink struct {
	writer *kafka.Writer
}

type kafkaPayload struct {
	EventID      string    `json:"event_id"`
	Action       string    `json:"action"`
	BarbershopID uint      `json:"barbershop_id"`
	UserID       *uint     `json:"user_id,omitempty"`
	Entity       string    `json:"entity"`
	EntityID     *uint     `json:"entity_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Metadata     any       `json:"metadata,omitempty"`
	At           time.Time `json:"at"`
}

func NewKafkaSink(brokers, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(SplitBrokers(brokers)...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (s *KafkaSink) Write(ctx context.Context, ev Event) error {
	id := uuid.NewString()
	body, err := json.Marshal(kafkaPayload{
		EventID:      id,
		Action:       ev.Action,
		BarbershopID: ev.BarbershopID,
		UserID:       ev.UserID,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		RequestID:    ev.RequestID,
		Metadata:     ev.Metadata,
		At:           ev.At,
	})
	if err != nil {
		return err
	}

	// keyed by tenant so one shop's events stay ordered
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.BarbershopID), 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(id)},
			{Key: "event_type", Value: []byte(ev.Action)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
