package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Allocation metrics
	PaymentsAllocated  prometheus.Counter
	ChargesSettled     prometheus.Counter
	AdvanceAmount      prometheus.Histogram
	AllocationDuration prometheus.Histogram
	AllocationErrors   *prometheus.CounterVec

	// Rebuild metrics
	RebuildsTotal   prometheus.Counter
	RebuildFailures prometheus.Counter
	RebuildDuration prometheus.Histogram

	// Balance metrics
	BalanceReports *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Allocation metrics
		PaymentsAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_payments_allocated_total",
			Help: "Total number of payments allocated",
		}),
		ChargesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_charges_settled_total",
			Help: "Total number of charges fully covered by allocations",
		}),
		AdvanceAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "billingcore_advance_amount",
			Help:    "Unallocated remainder held as advance per payment",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),
		AllocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "billingcore_allocation_duration_seconds",
			Help:    "Duration of payment allocation operations",
			Buckets: prometheus.DefBuckets,
		}),
		AllocationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billingcore_allocation_errors_total",
				Help: "Total number of allocation errors by type",
			},
			[]string{"error_type"},
		),

		// Rebuild metrics
		RebuildsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_rebuilds_total",
			Help: "Total number of account rebuilds",
		}),
		RebuildFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_rebuild_failures_total",
			Help: "Total number of rebuilds with item-level failures",
		}),
		RebuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "billingcore_rebuild_duration_seconds",
			Help:    "Duration of single-account rebuilds",
			Buckets: prometheus.DefBuckets,
		}),

		// Balance metrics
		BalanceReports: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billingcore_balance_reports_total",
				Help: "Total balance reports computed by parent type",
			},
			[]string{"parent_type"},
		),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_balance_cache_hits_total",
			Help: "Balance reports served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billingcore_balance_cache_misses_total",
			Help: "Balance reports recomputed after a cache miss",
		}),
	}
}
