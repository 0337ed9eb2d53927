package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charleschow/fairline/internal/backtest"
	"github.com/charleschow/fairline/internal/config"
	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/telemetry"
)

var seasons = []string{"2425", "2324", "2223", "2122"}

var leagueCodes = map[string]string{
	"Premier League": "E0",
	"La Liga":        "SP1",
	"Serie A":        "I1",
	"Bundesliga":     "D1",
	"Ligue 1":        "F1",
}

func main() {
	files := flag.String("files", "", "comma-separated league=path pairs (local CSVs) instead of downloading")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	params := pricing.DefaultParams()
	config.ApplyPricingEnv(&params)
	if err := params.Validate(); err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(2)
	}

	sources, err := buildSources(*files)
	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("=== Poisson Grid Backtest ===")
	fmt.Println("Data source: football-data.co.uk (Pinnacle closing odds)")
	fmt.Println()

	byLeague := backtest.NewFetcher().FetchAll(ctx, sources)
	leagues := make([]string, 0, len(byLeague))
	for l := range byLeague {
		leagues = append(leagues, l)
	}
	sort.Strings(leagues)

	var results []backtest.Result
	for _, l := range leagues {
		r := backtest.Evaluate(l, byLeague[l], params)
		results = append(results, r)
		printResult(r)
	}

	if len(results) > 0 {
		printSummary(results)
	}
}

func buildSources(files string) ([]backtest.Source, error) {
	if files == "" {
		var out []backtest.Source
		for league, code := range leagueCodes {
			for _, s := range seasons {
				out = append(out, backtest.Source{
					League: league,
					Path:   fmt.Sprintf("https://www.football-data.co.uk/mmz4281/%s/%s.csv", s, code),
				})
			}
		}
		return out, nil
	}

	var out []backtest.Source
	for _, pair := range strings.Split(files, ",") {
		league, path, ok := strings.Cut(pair, "=")
		if !ok || league == "" || path == "" {
			return nil, fmt.Errorf("bad -files entry %q, want league=path", pair)
		}
		out = append(out, backtest.Source{League: league, Path: path})
	}
	return out, nil
}

func printResult(r backtest.Result) {
	fmt.Printf("── %s (%d matches, avg goals %.2f) ──\n", r.League, r.Matches, r.AvgGoals)
	fmt.Printf("  Pinnacle 1X2 Brier:         %.4f\n", r.PinnacleBrier)
	fmt.Printf("  Grid 1X2 Brier:             %.4f\n", r.GridBrier)
	fmt.Printf("  Grid U2.5 Brier:            %.4f\n", r.GridUnder25Brier)
	if r.PinnacleUnder25Brier > 0 {
		fmt.Printf("  Pinnacle U2.5 Brier:        %.4f\n", r.PinnacleUnder25Brier)
	}
	fmt.Printf("  Mean calibration gap:       %.2e\n", r.CalibrationGap)
	fmt.Println()
	fmt.Printf("  Grid mean signed error (bias):\n")
	fmt.Printf("    Home: %+.4f  Draw: %+.4f  Away: %+.4f\n", r.HomeBias, r.DrawBias, r.AwayBias)
	fmt.Println()

	if len(r.Buckets) > 0 {
		fmt.Println("  Calibration buckets (predicted vs actual):")
		fmt.Printf("  %-20s %6s %8s %8s %8s\n", "Bucket", "Count", "MeanPred", "ActFreq", "Error")
		for _, b := range r.Buckets {
			fmt.Printf("  %-20s %6d %8.3f %8.3f %+8.3f\n",
				b.Label, b.Count, b.MeanPred, b.ActualFreq, b.MeanPred-b.ActualFreq)
		}
	}
	fmt.Println()
}

func printSummary(results []backtest.Result) {
	fmt.Println("══════════════════════════════════════")
	fmt.Println("  OVERALL SUMMARY")
	fmt.Println("══════════════════════════════════════")

	var total int
	var pinnSum, gridSum, drawErrSum float64
	for _, r := range results {
		n := float64(r.Matches)
		total += r.Matches
		pinnSum += r.PinnacleBrier * n
		gridSum += r.GridBrier * n
		drawErrSum += r.DrawBias * n
	}
	if total == 0 {
		return
	}

	avgPinn := pinnSum / float64(total)
	avgGrid := gridSum / float64(total)
	drawBias := drawErrSum / float64(total)
	fmt.Printf("  Total matches:      %d\n", total)
	fmt.Printf("  Avg Pinnacle Brier: %.4f\n", avgPinn)
	fmt.Printf("  Avg grid Brier:     %.4f  (%+.1f%% vs Pinnacle)\n", avgGrid, (avgGrid-avgPinn)/avgPinn*100)
	fmt.Printf("  Overall draw bias:  %+.4f\n", drawBias)
	fmt.Println()

	if math.Abs(drawBias) > 0.02 {
		fmt.Println("  WARNING: Draw bias exceeds 2%. Check TOTAL_GOALS_BETA and the league goal averages.")
	}
}
