package audit

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semainier/internal/events"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndRecent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, Record{
		Op:        events.TypeDayPasted,
		Shop:      "bakery",
		WeekStart: "2026-03-02",
		Employee:  "ALICE",
		Dates:     []string{"2026-03-03", "2026-03-04"},
		CreatedAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, db.Insert(ctx, Record{
		Op:   events.TypeWeekPasted,
		Shop: "bakery",
	}))

	records, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, events.TypeWeekPasted, records[0].Op)
	assert.Equal(t, events.TypeDayPasted, records[1].Op)
	assert.Equal(t, []string{"2026-03-03", "2026-03-04"}, records[1].Dates)
	assert.NotEmpty(t, records[0].ID)
}

func TestPurgeOlderThan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, Record{Op: "old", Shop: "bakery", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, db.Insert(ctx, Record{Op: "fresh", Shop: "bakery"}))

	deleted, err := db.PurgeOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	records, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fresh", records[0].Op)
}

func TestRecorderSubscription(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.New(io.Discard)

	bus := events.NewBus()
	SubscribeAll(bus, db, &logger)

	bus.Publish(events.Event{
		Type:     events.TypeSelectionChanged,
		Shop:     "bakery",
		Employee: "BOB",
	})

	records, err := db.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BOB", records[0].Employee)
}
