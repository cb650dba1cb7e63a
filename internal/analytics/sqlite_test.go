package analytics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiralogic/elemental/internal/analytics"
	"github.com/spiralogic/elemental/pkg/types"
)

func newSQLiteSink(t *testing.T) *analytics.SQLiteSink {
	t.Helper()
	sink, err := analytics.NewSQLiteSink(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func sampleDecision(id, session string, turn int, at time.Time) *types.Decision {
	return &types.Decision{
		ID:             id,
		SessionID:      session,
		TurnIndex:      turn,
		PrimaryElement: types.Water,
		BalanceElement: types.Fire,
		Strategy:       types.StrategyChallengePattern,
		Urgency:        types.UrgencyHigh,
		Topics:         []string{"grief", "crying"},
		Intensity: map[types.Element]float64{
			types.Fire: 0.2, types.Water: 2.4, types.Earth: 0,
			types.Air: 0.3, types.Aether: 0,
		},
		CreatedAt: at,
	}
}

func TestSQLiteRecordAndReadBack(t *testing.T) {
	sink := newSQLiteSink(t)
	ctx := context.Background()

	d := sampleDecision("d1", "s1", 0, time.Now().UTC())
	require.NoError(t, sink.Record(ctx, d))

	got, err := sink.SessionDecisions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, d.ID, got[0].ID)
	assert.Equal(t, types.Water, got[0].PrimaryElement)
	assert.Equal(t, types.Fire, got[0].BalanceElement)
	assert.Equal(t, types.StrategyChallengePattern, got[0].Strategy)
	assert.Equal(t, types.UrgencyHigh, got[0].Urgency)
	assert.Equal(t, []string{"grief", "crying"}, got[0].Topics)
	assert.InDelta(t, 2.4, got[0].Intensity[types.Water], 1e-9)
}

func TestSQLiteSessionDecisionsInTurnOrder(t *testing.T) {
	sink := newSQLiteSink(t)
	ctx := context.Background()
	base := time.Now().UTC()

	// Insert out of order; reads must come back by turn index.
	require.NoError(t, sink.Record(ctx, sampleDecision("d2", "s1", 1, base.Add(time.Second))))
	require.NoError(t, sink.Record(ctx, sampleDecision("d1", "s1", 0, base)))
	require.NoError(t, sink.Record(ctx, sampleDecision("d3", "s2", 0, base)))

	got, err := sink.SessionDecisions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].TurnIndex)
	assert.Equal(t, 1, got[1].TurnIndex)
}

func TestSQLiteRecent(t *testing.T) {
	sink := newSQLiteSink(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		d := sampleDecision("d"+string(rune('0'+i)), "s1", i, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, sink.Record(ctx, d))
	}

	got, err := sink.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].TurnIndex, "most recent first")
	assert.Equal(t, 3, got[1].TurnIndex)
}

func TestSQLiteDuplicateIDFails(t *testing.T) {
	sink := newSQLiteSink(t)
	ctx := context.Background()

	d := sampleDecision("d1", "s1", 0, time.Now().UTC())
	require.NoError(t, sink.Record(ctx, d))
	assert.Error(t, sink.Record(ctx, d))
}

func TestSQLiteEmptySession(t *testing.T) {
	sink := newSQLiteSink(t)

	got, err := sink.SessionDecisions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
