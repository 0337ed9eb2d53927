package quoting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/league"
	"github.com/charleschow/fairline/internal/telemetry"
)

// ErrInvalidFixture marks fixtures that cannot be priced as given.
var ErrInvalidFixture = errors.New("invalid fixture")

const defaultMemoSize = 4096

// LeagueSource resolves a league name to its profile.
type LeagueSource interface {
	Lookup(name string) (league.Profile, error)
}

// Recorder receives every sheet the quoter produces.
type Recorder interface {
	Record(ctx context.Context, sheet Sheet) error
}

// Option configures a Quoter.
type Option func(*Quoter)

// WithRecorder journals every priced sheet. Recorder failures are logged,
// not returned.
func WithRecorder(r Recorder) Option { return func(q *Quoter) { q.recorder = r } }

// WithMemoSize bounds the memo; 0 disables it.
func WithMemoSize(n int) Option { return func(q *Quoter) { q.memoSize = n } }

// WithClock replaces time.Now for PricedAt stamps.
func WithClock(now func() time.Time) Option { return func(q *Quoter) { q.now = now } }

type memoKey struct {
	homeRating, awayRating float64
	avgGoals, drawRate     float64
}

func (k memoKey) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return f(k.homeRating) + "|" + f(k.awayRating) + "|" + f(k.avgGoals) + "|" + f(k.drawRate)
}

// Quoter prices fixtures against a league source with a fixed parameter
// set. The engines are pure, so results are memoized by their numeric inputs
// and concurrent identical requests share one computation.
type Quoter struct {
	leagues  LeagueSource
	params   pricing.Params
	recorder Recorder
	now      func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	memo     map[memoKey]priced
	order    []memoKey
	memoSize int
}

// NewQuoter validates params and builds a quoter.
func NewQuoter(leagues LeagueSource, params pricing.Params, opts ...Option) (*Quoter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	q := &Quoter{
		leagues:  leagues,
		params:   params,
		now:      time.Now,
		memo:     make(map[memoKey]priced),
		memoSize: defaultMemoSize,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Params returns the quoter's parameter set.
func (q *Quoter) Params() pricing.Params { return q.params }

// Price prices one fixture.
func (q *Quoter) Price(ctx context.Context, f Fixture) (Sheet, error) {
	if err := ctx.Err(); err != nil {
		return Sheet{}, err
	}
	if err := checkFixture(f); err != nil {
		telemetry.Metrics.PricingErrors.WithLabelValues("invalid_fixture").Inc()
		return Sheet{}, err
	}

	profile, err := q.leagues.Lookup(f.League)
	if err != nil {
		telemetry.Metrics.PricingErrors.WithLabelValues("unknown_league").Inc()
		return Sheet{}, fmt.Errorf("price %s: %w", fixtureLabel(f), err)
	}
	scoring := profile.Context()

	key := memoKey{
		homeRating: f.HomeRating,
		awayRating: f.AwayRating,
		avgGoals:   scoring.AverageGoals,
		drawRate:   scoring.DrawRate,
	}
	result := q.lookup(key, scoring).clone()

	sheet := Sheet{
		Fixture:       f,
		League:        scoring,
		MarginPercent: q.params.MarginPercent,
		Outcome:       result.outcome,
		Grid:          result.grid,
		Markets:       result.markets,
		PricedAt:      q.now().UTC(),
	}
	telemetry.Metrics.SheetsPriced.Inc()

	if q.recorder != nil {
		if err := q.recorder.Record(ctx, sheet); err != nil {
			telemetry.Warnf("quoting: record %s: %v", fixtureLabel(f), err)
		}
	}
	return sheet, nil
}

// PriceAll prices a slate with at most workers fixtures in flight and
// returns sheets in input order. The first failure cancels the rest.
func (q *Quoter) PriceAll(ctx context.Context, fixtures []Fixture, workers int) ([]Sheet, error) {
	sheets := make([]Sheet, len(fixtures))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, f := range fixtures {
		g.Go(func() error {
			s, err := q.Price(gctx, f)
			if err != nil {
				return err
			}
			sheets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}

func (q *Quoter) lookup(key memoKey, lg pricing.League) priced {
	if q.memoSize > 0 {
		q.mu.Lock()
		cached, ok := q.memo[key]
		q.mu.Unlock()
		if ok {
			telemetry.Metrics.MemoHits.Inc()
			return cached
		}
	}

	v, _, _ := q.group.Do(key.String(), func() (any, error) {
		start := time.Now()
		outcome, grid, markets := BuildMarkets(key.homeRating, key.awayRating, lg, q.params)
		telemetry.ObserveSince(telemetry.Metrics.PricingLatency, start)

		result := priced{outcome: outcome, grid: grid, markets: markets}
		q.store(key, result)
		return result, nil
	})
	return v.(priced)
}

// store inserts into the memo, evicting the oldest entry when full.
func (q *Quoter) store(key memoKey, result priced) {
	if q.memoSize <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.memo[key]; ok {
		return
	}
	if len(q.order) >= q.memoSize {
		oldest := q.order[0]
		q.order = q.order[1:]
		delete(q.memo, oldest)
	}
	q.memo[key] = result
	q.order = append(q.order, key)
}

func checkFixture(f Fixture) error {
	if f.League == "" {
		return fmt.Errorf("%w: %s: missing league", ErrInvalidFixture, fixtureLabel(f))
	}
	for _, r := range []float64{f.HomeRating, f.AwayRating} {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: %s: rating %v", ErrInvalidFixture, fixtureLabel(f), r)
		}
	}
	return nil
}

func fixtureLabel(f Fixture) string {
	if f.ID != "" {
		return f.ID
	}
	if f.HomeTeam != "" || f.AwayTeam != "" {
		return f.HomeTeam + " v " + f.AwayTeam
	}
	return "fixture"
}

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}
