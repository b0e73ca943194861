package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backtest"

// Recorder collects backtest, market data and HTTP metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	signalsTotal *prometheus.CounterVec
	winRate      *prometheus.GaugeVec
	fetchErrors  *prometheus.CounterVec
	jobRuns      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Backtest runs by symbol and outcome (ok, unavailable, error)",
			},
			[]string{"symbol", "outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a backtest run including data fetch",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"symbol"},
		),
		signalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_total",
				Help:      "Simulated signals by strategy",
			},
			[]string{"strategy"},
		),
		winRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_win_rate_percent",
				Help:      "Win rate of the most recent run per symbol",
			},
			[]string{"symbol"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candle_fetch_errors_total",
				Help:      "Candle fetch failures by exchange",
			},
			[]string{"exchange"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Scheduled job executions by job and status",
			},
			[]string{"job", "status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		registry: reg,
	}
}

// RecordRun records one finished backtest. outcome is ok, unavailable or error.
func (r *Recorder) RecordRun(symbol, outcome string, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(symbol, outcome).Inc()
	r.runDuration.WithLabelValues(symbol).Observe(elapsed.Seconds())
}

func (r *Recorder) RecordSignals(byStrategy map[string]int) {
	for strategy, count := range byStrategy {
		r.signalsTotal.WithLabelValues(strategy).Add(float64(count))
	}
}

func (r *Recorder) RecordWinRate(symbol string, winRate float64) {
	r.winRate.WithLabelValues(symbol).Set(winRate)
}

func (r *Recorder) RecordFetchError(exchange string) {
	r.fetchErrors.WithLabelValues(exchange).Inc()
}

func (r *Recorder) RecordJobRun(job, status string) {
	r.jobRuns.WithLabelValues(job, status).Inc()
}

// RecordHTTP records a served request. route should be the templated path to keep cardinality low.
func (r *Recorder) RecordHTTP(route, method, status string, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
