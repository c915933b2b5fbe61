package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ClaimState is what a delivery learns when it claims an event id.
type ClaimState int

const (
	// ClaimAcquired means this delivery owns the event and must process it.
	ClaimAcquired ClaimState = iota
	// ClaimInFlight means another delivery holds the event and has not finished.
	ClaimInFlight
	// ClaimCompleted means the event was already applied.
	ClaimCompleted
)

// EventDeduper guards against processing the same provider event twice
// concurrently. It is a fast path only; the ledger stays idempotent on its own.
type EventDeduper interface {
	// Claim marks eventID as in flight unless another delivery got there first.
	Claim(ctx context.Context, eventID string) (ClaimState, error)
	// Complete records that eventID was applied.
	Complete(ctx context.Context, eventID string) error
	// Release forgets eventID so a redelivery can be processed.
	Release(ctx context.Context, eventID string) error
}

const (
	claimProcessing = "processing"
	claimDone       = "done"
)

// RedisEventDeduper implements EventDeduper with SETNX keys. An in-flight
// claim lives for Lease so a crashed worker does not block retries for long;
// a completed one lives for TTL.
type RedisEventDeduper struct {
	Client *redis.Client
	TTL    time.Duration
	Lease  time.Duration
}

func NewRedisEventDeduper(client *redis.Client) *RedisEventDeduper {
	return &RedisEventDeduper{Client: client, TTL: 72 * time.Hour, Lease: 5 * time.Minute}
}

func dedupeKey(eventID string) string {
	return "stripe:event:" + eventID
}

// claimStateOf reads a stored claim. Keys written before leases existed hold
// a timestamp and only survived successful processing.
func claimStateOf(value string) ClaimState {
	if value == claimProcessing {
		return ClaimInFlight
	}
	return ClaimCompleted
}

func (d *RedisEventDeduper) Claim(ctx context.Context, eventID string) (ClaimState, error) {
	key := dedupeKey(eventID)
	ok, err := d.Client.SetNX(ctx, key, claimProcessing, d.Lease).Result()
	if err != nil {
		return ClaimInFlight, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	if ok {
		return ClaimAcquired, nil
	}

	value, err := d.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Released or lapsed since SETNX; the provider's retry will claim it.
		return ClaimInFlight, nil
	}
	if err != nil {
		return ClaimInFlight, fmt.Errorf("read event claim %s: %w", eventID, err)
	}
	return claimStateOf(value), nil
}

func (d *RedisEventDeduper) Complete(ctx context.Context, eventID string) error {
	if err := d.Client.Set(ctx, dedupeKey(eventID), claimDone, d.TTL).Err(); err != nil {
		return fmt.Errorf("complete event %s: %w", eventID, err)
	}
	return nil
}

func (d *RedisEventDeduper) Release(ctx context.Context, eventID string) error {
	if err := d.Client.Del(ctx, dedupeKey(eventID)).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}
