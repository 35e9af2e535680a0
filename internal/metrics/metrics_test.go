package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandlerExportsCounters(t *testing.T) {
	m := New()
	m.ExpensesCreated.Inc()
	m.ExpensesCreated.Inc()
	m.SettlementsRecorded.Inc()
	m.ItemClaims.WithLabelValues("claim").Inc()
	m.RPCRequests.WithLabelValues("/splitledger.v1.LedgerService/GetBalances", "ok").Inc()

	body := scrape(t, m)
	assert.Contains(t, body, "splitledger_expenses_created_total 2")
	assert.Contains(t, body, "splitledger_settlements_recorded_total 1")
	assert.Contains(t, body, `splitledger_item_claims_total{action="claim"} 1`)
	assert.Contains(t, body, `splitledger_rpc_requests_total{code="ok",procedure="/splitledger.v1.LedgerService/GetBalances"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ReconciledReceipts.Inc()

	assert.Contains(t, scrape(t, a), "splitledger_receipt_reconciliations_total 1")
	assert.Contains(t, scrape(t, b), "splitledger_receipt_reconciliations_total 0")
}
