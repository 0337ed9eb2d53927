package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the process's collectors; the daemon serves it on /metrics.
var Registry = prometheus.NewRegistry()

// Metrics is the global metrics registry.
var Metrics = struct {
	SheetsPriced   prometheus.Counter
	MemoHits       prometheus.Counter
	PricingErrors  *prometheus.CounterVec
	PricingLatency prometheus.Histogram
	JournalWrites  prometheus.Counter
	WSRequests     prometheus.Counter
	WSClients      prometheus.Gauge
}{
	SheetsPriced: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fairline_sheets_priced_total",
		Help: "Fixtures priced end to end",
	}),
	MemoHits: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fairline_memo_hits_total",
		Help: "Pricing requests answered from the memo",
	}),
	PricingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairline_pricing_errors_total",
		Help: "Pricing requests rejected, by reason",
	}, []string{"reason"}),
	PricingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fairline_pricing_duration_seconds",
		Help:    "Time to price one fixture, memo misses only",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	}),
	JournalWrites: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fairline_journal_writes_total",
		Help: "Sheets written to the journal",
	}),
	WSRequests: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fairline_ws_requests_total",
		Help: "Pricing requests received over WebSocket",
	}),
	WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fairline_ws_clients",
		Help: "Connected WebSocket clients",
	}),
}

func init() {
	Registry.MustRegister(
		Metrics.SheetsPriced,
		Metrics.MemoHits,
		Metrics.PricingErrors,
		Metrics.PricingLatency,
		Metrics.JournalWrites,
		Metrics.WSRequests,
		Metrics.WSClients,
	)
}

// ObserveSince records the time elapsed since start in h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
