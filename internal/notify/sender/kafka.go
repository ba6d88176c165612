package sender

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookstock/inventory-service/internal/model"
	"github.com/bookstock/inventory-service/pkg/broker"
)

// KafkaSender hands messages to the WhatsApp gateway by publishing them on
// its topic. Delivery to the recipient is the gateway's problem; a publish
// error here surfaces as a failed attempt and the outbox retries.
type KafkaSender struct {
	producer *broker.KafkaProducer
}

func NewKafkaSender(producer *broker.KafkaProducer) *KafkaSender {
	return &KafkaSender{producer: producer}
}

type outboundMessage struct {
	Channel  string    `json:"channel"`
	To       string    `json:"to"`
	Message  string    `json:"message"`
	QueuedAt time.Time `json:"queued_at"`
}

func (s *KafkaSender) Send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(outboundMessage{
		Channel:  model.OutboxChannelWhatsApp,
		To:       to,
		Message:  message,
		QueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, []byte(to), payload)
}
