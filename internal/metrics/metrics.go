package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for pipeline runs and notifications.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec // labels: result=ok|error
	RunDuration        prometheus.Histogram
	LivePriceFailures  prometheus.Counter
	NotificationsTotal *prometheus.CounterVec // labels: kind=text|file, result=ok|error
	LastSignal         prometheus.Gauge       // 1=BUY, 0=SELL
	LastProbability    prometheus.Gauge
	TrainingRows       prometheus.Gauge
	WSClients          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_runs_total",
			Help: "Pipeline runs by result",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signaldesk_run_duration_seconds",
			Help:    "Wall time of a full pipeline run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LivePriceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_live_price_failures_total",
			Help: "Live price fetches that failed and were recorded as absent",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_notifications_total",
			Help: "Telegram sends by kind and result",
		}, []string{"kind", "result"}),
		LastSignal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_last_signal",
			Help: "Signal of the latest successful run (1=BUY, 0=SELL)",
		}),
		LastProbability: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_last_up_probability",
			Help: "Predicted probability of an up move for the latest row",
		}),
		TrainingRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_training_rows",
			Help: "Labeled rows used to train the latest model",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_ws_clients",
			Help: "Connected websocket clients",
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.LivePriceFailures,
		m.NotificationsTotal,
		m.LastSignal,
		m.LastProbability,
		m.TrainingRows,
		m.WSClients,
	)
	return m
}

// ObserveNotification counts one send attempt.
func (m *Metrics) ObserveNotification(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// Health is a point-in-time view of the most recent run.
type Health struct {
	LastRunAt    time.Time `json:"last_run_at"`
	LastRunOK    bool      `json:"last_run_ok"`
	LastError    string    `json:"last_error,omitempty"`
	LivePriceOK  bool      `json:"live_price_ok"`
	RunsTotal    int       `json:"runs_total"`
	StartedAt    time.Time `json:"started_at"`
	DataProvider string    `json:"data_provider"`
}

// HealthStatus tracks Health across goroutines.
type HealthStatus struct {
	mu sync.RWMutex
	h  Health
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(provider string) *HealthStatus {
	return &HealthStatus{h: Health{
		StartedAt:    time.Now(),
		DataProvider: provider,
	}}
}

// RecordRun stores the outcome of a run.
func (s *HealthStatus) RecordRun(at time.Time, livePriceOK bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.LastRunAt = at
	s.h.RunsTotal++
	s.h.LastRunOK = err == nil
	s.h.LivePriceOK = err == nil && livePriceOK
	s.h.LastError = ""
	if err != nil {
		s.h.LastError = err.Error()
	}
}

// Snapshot returns a copy of the current health.
func (s *HealthStatus) Snapshot() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}
