package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shellgate/shellgate/internal/audit"
)

// Store keeps the audit trail in a capped Redis list, newest events first.
type Store struct {
	client    *redis.Client
	maxEvents int64
}

// NewStore creates a store capping the trail at maxEvents entries.
func NewStore(client *redis.Client, maxEvents int) *Store {
	if maxEvents < 1 {
		maxEvents = 1
	}
	return &Store{
		client:    client,
		maxEvents: int64(maxEvents),
	}
}

// Append pushes one event onto the trail and trims it to the cap. Push and
// trim travel in one pipeline so the trail never grows unbounded between
// them.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, KeyAuditTrail, data)
	pipe.LTrim(ctx, KeyAuditTrail, 0, s.maxEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. Entries that fail to
// decode are skipped, the trail survives format drift.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit < 1 || int64(limit) > s.maxEvents {
		limit = int(s.maxEvents)
	}

	raw, err := s.client.LRange(ctx, KeyAuditTrail, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}

	events := make([]audit.Event, 0, len(raw))
	for _, item := range raw {
		var event audit.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Ping reports whether the backing Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
