package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*RedisSentLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSentLedger(client, time.Hour, nil), mr
}

func TestRedisSentLedgerRoundTrip(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	sent, err := ledger.AlreadySent(ctx, ChannelSMS, "+911", "2024-05-01")
	require.NoError(t, err)
	require.False(t, sent)

	require.NoError(t, ledger.MarkSent(ctx, ChannelSMS, "+911", "2024-05-01"))

	sent, err = ledger.AlreadySent(ctx, ChannelSMS, "+911", "2024-05-01")
	require.NoError(t, err)
	require.True(t, sent)

	// Same recipient on another channel is a separate marker.
	sent, err = ledger.AlreadySent(ctx, ChannelWhatsApp, "+911", "2024-05-01")
	require.NoError(t, err)
	require.False(t, sent)
}

func TestRedisSentLedgerMarkerExpires(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.MarkSent(ctx, ChannelSMS, "+911", "2024-05-01"))
	mr.FastForward(2 * time.Hour)

	sent, err := ledger.AlreadySent(ctx, ChannelSMS, "+911", "2024-05-01")
	require.NoError(t, err)
	require.False(t, sent)
}

func TestRedisSentLedgerErrorsSurface(t *testing.T) {
	ledger, mr := newTestLedger(t)
	mr.Close()

	_, err := ledger.AlreadySent(context.Background(), ChannelSMS, "+911", "2024-05-01")
	require.Error(t, err)
	require.ErrorContains(t, err, "ledger lookup")
}
