package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the domain layer.
var (
	catalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pd_catalog_column_cache_hits_total",
		Help: "Column descriptor lookups served from the catalog cache.",
	})

	catalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pd_catalog_column_cache_misses_total",
		Help: "Column descriptor lookups that had to query information_schema.",
	})

	importRowsOK = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pd_import_rows_ok_total",
		Help: "CSV rows inserted successfully, by table.",
	}, []string{"table"})

	importRowsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pd_import_rows_failed_total",
		Help: "CSV rows rejected during import, by table.",
	}, []string{"table"})

	toggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pd_toggle_total",
		Help: "Active-flag toggles performed, by table.",
	}, []string{"table"})

	retainedBatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pd_failed_batches_retained",
		Help: "Failed-row batches currently held for download.",
	})
)
