package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/squeakroad/case-service/internal/domain"
)

type DefaultKafkaSubscriber struct {
	brokers []string
	log     *slog.Logger
}

func NewDefaultKafkaSubscriber(brokers []string, log *slog.Logger) *DefaultKafkaSubscriber {
	return &DefaultKafkaSubscriber{brokers: brokers, log: log}
}

// Subscribe streams messages of topic until ctx is done. Offsets are
// committed as messages are read.
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer reader.Close()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					k.log.Error("kafka read failed", "topic", topic, "error", err)
				}
				return
			}
			select {
			case out <- domain.Message{Key: m.Key, Value: m.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
