package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PairMetrics holds all Prometheus metrics for the pair module
type PairMetrics struct {
	// Operation metrics
	OperationsTotal  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Swap metrics
	SwapVolume      *prometheus.CounterVec
	CommissionTotal *prometheus.CounterVec

	// Pool metrics
	PairsTotal    prometheus.Counter
	PoolReserves  *prometheus.GaugeVec
	LPTokenSupply *prometheus.GaugeVec

	// Oracle metrics
	Repegs       *prometheus.CounterVec
	Observations *prometheus.CounterVec
}

var (
	pairMetricsOnce sync.Once
	pairMetrics     *PairMetrics
)

// NewPairMetrics creates and registers pair metrics (singleton pattern)
func NewPairMetrics() *PairMetrics {
	pairMetricsOnce.Do(func() {
		pairMetrics = &PairMetrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "operations_total",
					Help:      "Total number of pair operations by outcome",
				},
				[]string{"pair_type", "action", "status"},
			),
			OperationLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "operation_latency_seconds",
					Help:      "Time spent executing pair operations",
					Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
				},
				[]string{"action"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "swap_volume_total",
					Help:      "Offered swap volume in base units",
				},
				[]string{"pair", "denom"},
			),
			CommissionTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "commission_total",
					Help:      "Swap commission in base units of the ask asset",
				},
				[]string{"pair", "denom"},
			),
			PairsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "pairs_created_total",
					Help:      "Number of instantiated pairs",
				},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "reserves",
					Help:      "Pool reserves after the last operation",
				},
				[]string{"pair", "denom"},
			),
			LPTokenSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "lp_supply",
					Help:      "LP token supply after the last operation",
				},
				[]string{"pair"},
			),
			Repegs: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "repegs_total",
					Help:      "Number of adopted price scale moves",
				},
				[]string{"pair"},
			),
			Observations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "astroport",
					Subsystem: "pair",
					Name:      "observations_total",
					Help:      "Number of observations pushed to the price buffer",
				},
				[]string{"pair"},
			),
		}
	})
	return pairMetrics
}
