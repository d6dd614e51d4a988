package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, zap.NewNop())

	m.RecordPayoutOutcome("rejected", "insufficient_balance")
	m.RecordPayoutOutcome("rejected", "insufficient_balance")
	m.RecordReferralOutcome("rewarded")
	m.RecordCampaignReward("completed")
	m.RecordLedgerConflict()
	m.RecordLedgerMovement(models.TxReferralBonus, 10000)
	m.RecordLedgerMovement(models.TxPayout, -25050)
	m.ObserveJob("process_payouts", 150*time.Millisecond, nil)
	m.ObserveJob("process_payouts", time.Second, errors.New("boom"))
	m.RecordReconciled("stale_claims", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.payoutOutcomes.WithLabelValues("rejected", "insufficient_balance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerConflicts))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.creditedRupees.WithLabelValues("referral_bonus")))
	assert.Equal(t, 250.5, testutil.ToFloat64(m.creditedRupees.WithLabelValues("payout")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.reconciled.WithLabelValues("stale_claims")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.jobDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordPayoutOutcome("approved", "")
		m.RecordLedgerConflict()
		m.ObserveJob("x", time.Second, nil)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, zap.NewNop())
	m.RecordReferralOutcome("rewarded")
	h := NewHandler(reg, zap.NewNop())

	t.Run("Metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `wallet_referral_outcomes_total{outcome="rewarded"} 1`)
	})

	t.Run("Health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","service":"wallet-payout-engine"}`, rr.Body.String())
	})
}
