package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/squeakroad/case-service/internal/domain"
)

// SettlementSource reads invoice settlements relayed onto a topic by an
// external payment watcher.
type SettlementSource struct {
	subscriber domain.SubscriberPort
	topic      string
	groupID    string
	log        *slog.Logger
}

func NewSettlementSource(subscriber domain.SubscriberPort, topic, groupID string, log *slog.Logger) *SettlementSource {
	return &SettlementSource{subscriber: subscriber, topic: topic, groupID: groupID, log: log}
}

func (s *SettlementSource) Settlements(ctx context.Context) (<-chan domain.Settlement, error) {
	msgs, err := s.subscriber.Subscribe(ctx, s.topic, s.groupID)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Settlement)
	go func() {
		defer close(out)
		for m := range msgs {
			var settlement domain.Settlement
			if err := json.Unmarshal(m.Value, &settlement); err != nil || settlement.PaymentHash == "" {
				s.log.Warn("skipping malformed settlement", "key", string(m.Key), "error", err)
				continue
			}
			select {
			case out <- settlement:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
