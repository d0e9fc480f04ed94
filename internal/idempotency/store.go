package idempotency

import (
	"context"
	"time"
)

// Store claims delivery keys so a redelivered webhook is processed once
// per TTL window.
type Store interface {
	// Claim returns false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

func WebhookKey(orderID, transactionStatus string) string {
	return "webhook:" + orderID + ":" + transactionStatus
}
