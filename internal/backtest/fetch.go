package backtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/charleschow/fairline/internal/telemetry"
)

// Fetcher reads football-data.co.uk result files from disk or over HTTP,
// throttled to a polite request rate.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
	}
}

// Source is one results file belonging to a league.
type Source struct {
	League string
	Path   string // URL or local file
}

// FetchAll loads every source concurrently and returns the matches grouped
// by league. Sources that fail are logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) map[string][]Match {
	results := make([][]Match, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range sources {
		g.Go(func() error {
			m, err := f.Fetch(ctx, src)
			if err != nil {
				telemetry.Warnf("backtest: %s: %v", src.Path, err)
				return nil
			}
			results[i] = m
			return nil
		})
	}
	g.Wait()

	byLeague := make(map[string][]Match)
	for _, m := range results {
		if len(m) == 0 {
			continue
		}
		byLeague[m[0].League] = append(byLeague[m[0].League], m...)
	}
	return byLeague
}

// Fetch loads and parses one source.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]Match, error) {
	if !strings.HasPrefix(src.Path, "http://") && !strings.HasPrefix(src.Path, "https://") {
		file, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		defer file.Close()
		return ParseResults(file, src.League)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	telemetry.Debugf("backtest: GET %s -> %d (%s)", src.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return ParseResults(resp.Body, src.League)
}
