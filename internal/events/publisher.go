// Package events publishes domain events to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
)

const (
	DefaultStream = "atm.events"
	// streamMaxLen caps the stream; trimming is approximate.
	streamMaxLen = 10000
)

type Publisher struct {
	client redis.Cmdable
	stream string
}

func NewPublisher(client redis.Cmdable, stream string) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Name() string {
	return "redis"
}

func (p *Publisher) Write(ctx context.Context, event dto.Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"type":  event.Type,
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return errs.NewExternalServiceError("redis", true, err)
	}
	return nil
}
