package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Bid metrics
	BidsPlaced   *prometheus.CounterVec
	BidsRejected *prometheus.CounterVec
	BidDuration  prometheus.Histogram

	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerErrors     *prometheus.CounterVec

	// Listing metrics
	ListingsCreated *prometheus.CounterVec
	ListingsSettled *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	SweepsSkipped   prometheus.Counter

	// Payout metrics
	PayoutsCompleted prometheus.Counter
	PayoutsFailed    prometheus.Counter
	PayoutsPending   prometheus.Gauge

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPPanics   *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Bid metrics
		BidsPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_bids_placed_total",
				Help: "Total number of accepted bids",
			},
			[]string{"listing_kind"},
		),
		BidsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_bids_rejected_total",
				Help: "Total number of rejected bids by reason",
			},
			[]string{"reason"},
		),
		BidDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buttonmarket_bid_duration_seconds",
			Help:    "Duration of bid placement",
			Buckets: prometheus.DefBuckets,
		}),

		// Ledger metrics
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_ledger_operations_total",
				Help: "Total ledger mutations by operation and kind",
			},
			[]string{"operation", "kind", "currency"},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_ledger_errors_total",
				Help: "Total failed ledger mutations by operation",
			},
			[]string{"operation", "error_type"},
		),

		// Listing metrics
		ListingsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_listings_created_total",
				Help: "Total number of listings created",
			},
			[]string{"kind"},
		),
		ListingsSettled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_listings_settled_total",
				Help: "Total number of listings reaching a terminal state",
			},
			[]string{"outcome"},
		),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buttonmarket_sweep_duration_seconds",
			Help:    "Duration of expired listing sweeps",
			Buckets: prometheus.DefBuckets,
		}),
		SweepsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttonmarket_sweeps_skipped_total",
			Help: "Sweeps skipped because another replica held the lock",
		}),

		// Payout metrics
		PayoutsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttonmarket_payouts_completed_total",
			Help: "Total refund payouts applied",
		}),
		PayoutsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttonmarket_payouts_failed_total",
			Help: "Total refund payout attempts that failed",
		}),
		PayoutsPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buttonmarket_payouts_pending",
			Help: "Pending payouts seen by the last worker poll",
		}),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_events_published_total",
				Help: "Total outbox events published",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "buttonmarket_events_failed_total",
			Help: "Total outbox events that failed to publish",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buttonmarket_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_http_panics_total",
				Help: "Handler panics recovered, by route",
			},
			[]string{"path"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttonmarket_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
