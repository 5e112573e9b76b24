package store

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/socialgraph/internal/ir"
)

// Publisher is an event sink that broadcasts each event on a Redis channel
// as canonical JSON {"kind":..., "payload":...}. Delivery is best effort;
// publish errors are logged.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewPublisher publishes on <prefix>:events.
func NewPublisher(client *redis.Client, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{client: client, channel: prefix + ":events", logger: logger}
}

// Channel returns the channel name subscribers should listen on.
func (p *Publisher) Channel() string {
	return p.channel
}

func (p *Publisher) Emit(ev ir.Event) {
	data, err := marshalEnvelope(ev)
	if err != nil {
		p.logger.Error("event encode failed", "kind", ev.Kind(), "error", err)
		return
	}
	if err := p.client.Publish(context.Background(), p.channel, data).Err(); err != nil {
		p.logger.Error("event publish failed",
			"kind", ev.Kind(),
			"channel", p.channel,
			"error", err)
	}
}
