package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/fairline/internal/config"
	"github.com/charleschow/fairline/internal/core/display"
	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/journal"
	"github.com/charleschow/fairline/internal/server"
	"github.com/charleschow/fairline/internal/telemetry"
)

func main() {
	var (
		leagueName   = flag.String("league", "", "league name or alias")
		home         = flag.String("home", "", "home team")
		away         = flag.String("away", "", "away team")
		homeRating   = flag.Float64("home-rating", 0, "home team rating")
		awayRating   = flag.Float64("away-rating", 0, "away team rating")
		margin       = flag.Float64("margin", 0, "bookmaker margin in percent (overrides config)")
		fixturesPath = flag.String("fixtures", "", "YAML list of fixtures to price")
		journalPath  = flag.String("journal", "", "SQLite journal path (overrides JOURNAL_DB_PATH)")
		remote       = flag.String("remote", "", "price against a running oddsd at host:port")
	)
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	fixtures, err := loadFixtures(*fixturesPath, quoting.Fixture{
		League:     *leagueName,
		HomeTeam:   *home,
		AwayTeam:   *away,
		HomeRating: *homeRating,
		AwayRating: *awayRating,
	})
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sheets []quoting.Sheet
	if *remote != "" {
		sheets, err = priceRemote(ctx, *remote, fixtures)
	} else {
		var marginOverride *float64
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "margin" {
				marginOverride = margin
			}
		})
		if *journalPath != "" {
			cfg.JournalDBPath = *journalPath
		}
		sheets, err = priceLocal(ctx, cfg, marginOverride, fixtures)
	}
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}

	for _, s := range sheets {
		if err := display.PrintSheet(os.Stdout, s); err != nil {
			telemetry.Errorf("print: %v", err)
			os.Exit(1)
		}
	}
}

func loadFixtures(path string, single quoting.Fixture) ([]quoting.Fixture, error) {
	if path == "" {
		if single.League == "" {
			return nil, fmt.Errorf("either -fixtures or -league is required")
		}
		return []quoting.Fixture{single}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []quoting.Fixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures in %s", path)
	}
	return fixtures, nil
}

func priceLocal(ctx context.Context, cfg *config.Config, margin *float64, fixtures []quoting.Fixture) ([]quoting.Sheet, error) {
	pc, err := config.LoadPricing(cfg.LeaguesPath)
	if err != nil {
		return nil, err
	}
	params := pc.Params
	if margin != nil {
		params.MarginPercent = *margin
	}

	var opts []quoting.Option
	if cfg.JournalDBPath != "" {
		store, err := journal.Open(cfg.JournalDBPath, 0)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		opts = append(opts, quoting.WithRecorder(store))
	}

	q, err := quoting.NewQuoter(pc.Registry, params, opts...)
	if err != nil {
		return nil, err
	}
	telemetry.Debugf("pricing %d fixture(s) across %d league(s)", len(fixtures), len(pc.Registry.Names()))
	return q.PriceAll(ctx, fixtures, cfg.Workers)
}

func priceRemote(ctx context.Context, addr string, fixtures []quoting.Fixture) ([]quoting.Sheet, error) {
	c, err := server.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	sheets := make([]quoting.Sheet, 0, len(fixtures))
	for _, f := range fixtures {
		s, err := c.Price(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("price %s v %s: %w", f.HomeTeam, f.AwayTeam, err)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}
