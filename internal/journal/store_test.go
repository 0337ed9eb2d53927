package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/league"
)

type oneLeague struct{ p league.Profile }

func (o oneLeague) Lookup(string) (league.Profile, error) { return o.p, nil }

func openTemp(t *testing.T, maxRows int64) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"), maxRows)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	store := openTemp(t, 0)
	at := time.Date(2026, 5, 2, 19, 45, 0, 0, time.UTC)
	q, err := quoting.NewQuoter(
		oneLeague{league.Profile{Name: "Premier League", AverageGoals: 2.85, DrawRate: 0.23}},
		pricing.DefaultParams(),
		quoting.WithRecorder(store),
		quoting.WithClock(func() time.Time { return at }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := q.Price(ctx, quoting.Fixture{
			ID: fmt.Sprintf("m%d", i), League: "EPL", HomeTeam: "Home", AwayTeam: "Away",
			HomeRating: 1700 + float64(i), AwayRating: 1600,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), store.Count())

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	latest := entries[0]
	assert.Equal(t, "m2", latest.FixtureID)
	assert.Equal(t, "m1", entries[1].FixtureID)
	assert.Equal(t, at, latest.Ts)
	assert.Len(t, latest.ID, 36)
	assert.Equal(t, 1702.0, latest.HomeRating)
	assert.InDelta(t, latest.Sheet.Outcome.Home, latest.HomePct, 1e-5)
	assert.InDelta(t, latest.Sheet.Grid.LambdaTotal, latest.Lambda, 1e-5)
	assert.Equal(t, "m2", latest.Sheet.Fixture.ID)
	assert.NotEmpty(t, latest.Sheet.Markets)
}

func TestRecordEvictsOldest(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		require.NoError(t, store.Record(ctx, quoting.Sheet{Fixture: quoting.Fixture{ID: fmt.Sprintf("s%02d", i)}}))
	}
	assert.Equal(t, int64(10), store.Count())

	entries, err := store.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, "s10", entries[0].FixtureID)
	assert.Equal(t, "s01", entries[9].FixtureID)
}

func TestReopenKeepsCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), quoting.Sheet{}))
	require.NoError(t, s.Close())

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, int64(1), s.Count())
}
