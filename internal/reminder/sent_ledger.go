package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

// SentLedger answers whether a reminder was already delivered for a
// booking on a given channel, so repeated runs inside the same window do
// not double-message patients.
type SentLedger interface {
	AlreadySent(ctx context.Context, channel Channel, recipient, date string) (bool, error)
	MarkSent(ctx context.Context, channel Channel, recipient, date string) error
}

// RedisSentLedger stores sent markers in Redis with a TTL.
//
// The ledger fails open: if Redis is unreachable the dispatcher should
// still send rather than silently drop reminders.
type RedisSentLedger struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisSentLedger builds a ledger. A non-positive ttl defaults to 24h.
func NewRedisSentLedger(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSentLedger {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSentLedger{client: client, ttl: ttl, logger: logger}
}

var _ SentLedger = (*RedisSentLedger)(nil)

func ledgerKey(channel Channel, recipient, date string) string {
	return fmt.Sprintf("reminder:sent:%s:%s:%s", channel, recipient, date)
}

// AlreadySent reports whether a marker exists for this channel, recipient
// and appointment date.
func (l *RedisSentLedger) AlreadySent(ctx context.Context, channel Channel, recipient, date string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(channel, recipient, date)).Result()
	if err != nil {
		return false, fmt.Errorf("reminder: ledger lookup: %w", err)
	}
	return n > 0, nil
}

// MarkSent records a marker after a successful delivery.
func (l *RedisSentLedger) MarkSent(ctx context.Context, channel Channel, recipient, date string) error {
	if err := l.client.Set(ctx, ledgerKey(channel, recipient, date), "1", l.ttl).Err(); err != nil {
		return fmt.Errorf("reminder: ledger mark: %w", err)
	}
	return nil
}
