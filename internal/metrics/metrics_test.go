package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.ObserveNotification("text", nil)
	m.ObserveNotification("text", errors.New("x"))
	m.ObserveNotification("file", errors.New("x"))

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("runs ok: %v", got)
	}
	if got := testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("text", "error")); got != 1 {
		t.Errorf("text errors: %v", got)
	}
	if got := testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("file", "ok")); got != 0 {
		t.Errorf("file ok: %v", got)
	}

	// a second registry must accept a fresh set
	NewMetrics(prometheus.NewRegistry())
}

func TestHealthStatus(t *testing.T) {
	h := NewHealthStatus("yahoo")
	now := time.Now()
	h.RecordRun(now, true, nil)
	s := h.Snapshot()
	if !s.LastRunOK || !s.LivePriceOK || s.RunsTotal != 1 || s.LastError != "" {
		t.Errorf("after ok run: %+v", s)
	}
	h.RecordRun(now, true, errors.New("no data"))
	s = h.Snapshot()
	if s.LastRunOK || s.LivePriceOK || s.LastError != "no data" || s.RunsTotal != 2 {
		t.Errorf("after failed run: %+v", s)
	}
	if s.DataProvider != "yahoo" {
		t.Errorf("provider: %q", s.DataProvider)
	}
}
