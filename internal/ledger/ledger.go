// Package ledger keeps the last run summary per class in redis.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"contact-seeder/internal/models"
)

const keyPrefix = "seeder:last_run:"

type Ledger struct {
	client redis.Cmdable
	ttl    time.Duration
}

func New(client redis.Cmdable, ttl time.Duration) *Ledger {
	return &Ledger{client: client, ttl: ttl}
}

// Key is the redis key holding the last run of className.
func Key(className string) string {
	return keyPrefix + className
}

// Record stores summary as the last run of its class.
func (l *Ledger) Record(ctx context.Context, summary *models.RunSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := l.client.Set(ctx, Key(summary.ClassName), body, l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Last returns the most recent run of className, or nil when none is recorded.
func (l *Ledger) Last(ctx context.Context, className string) (*models.RunSummary, error) {
	raw, err := l.client.Get(ctx, Key(className)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}

	var summary models.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode last run: %w", err)
	}
	return &summary, nil
}
