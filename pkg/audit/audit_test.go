package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewLogSink(logger)

	err := sink.Record(context.Background(), Event{
		Kind:          KindPointsExpired,
		UserID:        "u1",
		TransactionID: "t1",
		Points:        50,
		OriginalType:  "EARNED",
		OccurredAt:    time.Now(),
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, KindPointsExpired, entry.Data["kind"])
	assert.Equal(t, "u1", entry.Data["user_id"])
	assert.Equal(t, int64(50), entry.Data["points"])
	assert.Equal(t, "EARNED", entry.Data["original_type"])
	assert.NotContains(t, entry.Data, "coupon_code")
}

func TestMongoSink(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set; skipping MongoDB integration test")
	}
	ctx := context.Background()

	sink, err := NewMongoSink(ctx, uri, "loyalty_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close(context.Background()) })

	userID := "test-" + uuid.NewString()
	first := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, sink.Record(ctx, Event{Kind: KindPointsAwarded, UserID: userID, Points: 10, OccurredAt: first}))
	require.NoError(t, sink.Record(ctx, Event{Kind: KindPointsRedeemed, UserID: userID, Points: 4, OccurredAt: first.Add(time.Second)}))

	events, err := sink.EventsForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, KindPointsRedeemed, events[0].Kind)
	assert.Equal(t, KindPointsAwarded, events[1].Kind)
	assert.Equal(t, int64(10), events[1].Points)
}
