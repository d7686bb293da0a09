// Package progresspub is an optional Redis pub/sub publisher: each
// annealing iteration record is published to a channel so an external
// dashboard can subscribe instead of polling internal/monitor or
// tailing the iterations CSV. Off by default — only active when a
// Redis address is configured.
package progresspub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passbi/railplan/internal/optimize"
)

const defaultChannel = "railplan:progress"

// Publisher owns a Redis client publishing to a single channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

// Config mirrors the standard Redis client config shape, trimmed to
// the fields a publish-only client needs.
type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Connect builds a client against cfg and pings it once.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("progresspub: connect: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = defaultChannel
	}
	return &Publisher{client: client, channel: channel}, nil
}

// Publish marshals rec to JSON and publishes it. A publish failure
// (no subscribers, transient network error) is non-fatal to the run
// — it is reported to the caller to log, never to abort annealing.
func (p *Publisher) Publish(ctx context.Context, rec optimize.IterationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("progresspub: marshal: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("progresspub: publish: %w", err)
	}
	return nil
}

// Close releases the client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
