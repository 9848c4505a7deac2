// Package metrics collects Prometheus metrics for the dashboard and the mirror worker.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"glowbook/internal/ledger"
	"glowbook/internal/vault"
)

// Collector implements ledger.Observer, vault.Recorder and insights.Recorder.
type Collector struct {
	ledgerChanges *prometheus.CounterVec
	persistFail   prometheus.Counter
	vaultEvents   *prometheus.CounterVec
	insightFall   prometheus.Counter
	httpStatus    *prometheus.CounterVec
	httpLatency   prometheus.Histogram
	rowsSynced    prometheus.Counter
	syncFail      prometheus.Counter
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ledgerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glowbook_ledger_changes_total",
			Help: "Appointment ledger mutations by kind",
		}, []string{"kind"}),
		persistFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glowbook_persistence_failures_total",
			Help: "Write-through failures to the durable substrate",
		}),
		vaultEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glowbook_vault_events_total",
			Help: "Access gate outcomes by action",
		}, []string{"action", "outcome"}),
		insightFall: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glowbook_insight_fallbacks_total",
			Help: "Insight requests answered with the fallback text",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glowbook_http_status_total",
			Help: "API responses by status code",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "glowbook_http_latency_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		rowsSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glowbook_sheet_rows_synced_total",
			Help: "Appointment rows written to the mirror sheet",
		}),
		syncFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glowbook_sheet_sync_failures_total",
			Help: "Failed mirror sheet writes",
		}),
	}

	reg.MustRegister(
		c.ledgerChanges,
		c.persistFail,
		c.vaultEvents,
		c.insightFall,
		c.httpStatus,
		c.httpLatency,
		c.rowsSynced,
		c.syncFail,
	)
	return c
}

// LedgerChanged counts a ledger mutation and any failed write-through.
func (c *Collector) LedgerChanged(_ context.Context, ch ledger.Change) {
	c.ledgerChanges.WithLabelValues(string(ch.Kind)).Inc()
	if !ch.Persisted {
		c.persistFail.Inc()
	}
}

func (c *Collector) VaultEvent(action vault.Action, outcome vault.Outcome) {
	label := string(action)
	if label == "" {
		label = "none"
	}
	c.vaultEvents.WithLabelValues(label, string(outcome)).Inc()
}

func (c *Collector) InsightFallback() {
	c.insightFall.Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordHTTPLatency(d time.Duration) {
	c.httpLatency.Observe(d.Seconds())
}

func (c *Collector) RecordRowsSynced(n int) {
	c.rowsSynced.Add(float64(n))
}

func (c *Collector) RecordSyncFailure() {
	c.syncFail.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
