package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"glowbook/internal/ledger"
	"glowbook/internal/vault"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestLedgerChangedCountsKindsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	ctx := context.Background()

	c.LedgerChanged(ctx, ledger.Change{Kind: ledger.ChangeCreated, Persisted: true})
	c.LedgerChanged(ctx, ledger.Change{Kind: ledger.ChangeCreated, Persisted: false})
	c.LedgerChanged(ctx, ledger.Change{Kind: ledger.ChangeStatus, Persisted: true})

	if v := counterValue(t, reg, "glowbook_ledger_changes_total", map[string]string{"kind": "created"}); v != 2 {
		t.Errorf("created = %v, want 2", v)
	}
	if v := counterValue(t, reg, "glowbook_persistence_failures_total", nil); v != 1 {
		t.Errorf("persistence failures = %v, want 1", v)
	}
}

func TestVaultEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.VaultEvent(vault.ActionReports, vault.OutcomeChallenge)
	c.VaultEvent(vault.ActionReports, vault.OutcomeDenied)
	c.VaultEvent(vault.ActionReports, vault.OutcomeDenied)
	c.VaultEvent("", vault.OutcomeLocked)

	if v := counterValue(t, reg, "glowbook_vault_events_total", map[string]string{"action": "reports", "outcome": "denied"}); v != 2 {
		t.Errorf("denied = %v, want 2", v)
	}
	if v := counterValue(t, reg, "glowbook_vault_events_total", map[string]string{"action": "none", "outcome": "locked"}); v != 1 {
		t.Errorf("locked = %v, want 1", v)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.InsightFallback()
	c.RecordHTTPStatus(http.StatusForbidden)
	c.RecordHTTPLatency(15 * time.Millisecond)
	c.RecordRowsSynced(3)
	c.RecordSyncFailure()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	for _, name := range []string{
		"glowbook_insight_fallbacks_total 1",
		`glowbook_http_status_total{status_code="403"} 1`,
		"glowbook_sheet_rows_synced_total 3",
		"glowbook_http_latency_seconds_count 1",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("scrape output missing %q", name)
		}
	}
}
