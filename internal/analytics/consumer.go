package analytics

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/kafka"
)

// HandleEvent decodes published lookup events into agg. Undecodable
// messages are logged and skipped so they do not block the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	log := slog.Default().With("component", "analytics-consumer")
	return func(ctx context.Context, key, value []byte) error {
		event, err := kafka.DecodeJSON[LookupEvent](value)
		if err != nil {
			log.Warn("skipping malformed lookup event", "key", string(key), "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}
