// Package pipeline runs the load, indicator, training, prediction and
// persistence steps as one serialized unit of work.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/strategy"
)

// Notifier is the outbound messaging channel used by the user actions.
type Notifier interface {
	SendText(ctx context.Context, text string) error
	SendFile(ctx context.Context, path string) error
}

// Runner executes pipeline runs. Only one run is in flight at a time.
type Runner struct {
	cfg       *config.Config
	collector *collector.Collector
	recorder  recorder.Recorder
	notifier  Notifier
	metrics   *metrics.Metrics
	health    *metrics.HealthStatus
	now       func() time.Time

	mu sync.Mutex // serializes Run

	lastMu    sync.RWMutex
	last      *model.RunResult
	listeners []func(*model.RunResult)
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg *config.Config, col *collector.Collector, rec recorder.Recorder, n Notifier, m *metrics.Metrics, h *metrics.HealthStatus) *Runner {
	return &Runner{
		cfg:       cfg,
		collector: col,
		recorder:  rec,
		notifier:  n,
		metrics:   m,
		health:    h,
		now:       time.Now,
	}
}

// OnRun registers fn to be called after every successful run.
func (r *Runner) OnRun(fn func(*model.RunResult)) {
	r.lastMu.Lock()
	r.listeners = append(r.listeners, fn)
	r.lastMu.Unlock()
}

// Last returns the result of the latest successful run, or nil.
func (r *Runner) Last() *model.RunResult {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	return r.last
}

// Health returns the health tracker.
func (r *Runner) Health() *metrics.HealthStatus { return r.health }

// Run executes the full pipeline. A live price failure is recorded as a
// warning; any other failure aborts the run and is returned.
func (r *Runner) Run(ctx context.Context) (*model.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := r.now()
	res, err := r.run(ctx, started)
	elapsed := time.Since(started)

	r.metrics.RunDuration.Observe(elapsed.Seconds())
	if err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		r.health.RecordRun(started, false, err)
		log.Printf("[ERROR] pipeline run for %s failed: %v", r.cfg.Symbol, err)
		return nil, err
	}
	res.Duration = elapsed

	r.metrics.RunsTotal.WithLabelValues("ok").Inc()
	r.metrics.LastSignal.Set(float64(res.Predict.Class))
	r.metrics.LastProbability.Set(res.Predict.Probability)
	r.metrics.TrainingRows.Set(float64(res.Predict.TrainRows))
	r.health.RecordRun(started, res.HasLivePrice(), nil)
	log.Printf("[INFO] pipeline run for %s: %s (p=%.3f, %d rows) in %v",
		res.Symbol, res.Predict.Signal, res.Predict.Probability, res.Predict.TrainRows, elapsed.Round(time.Millisecond))

	r.lastMu.Lock()
	r.last = res
	listeners := slices.Clone(r.listeners)
	r.lastMu.Unlock()
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, started time.Time) (*model.RunResult, error) {
	start, end, err := r.cfg.DateRange(started)
	if err != nil {
		return nil, err
	}

	series, err := r.collector.Load(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	table := calculator.Augment(series)
	ds, err := calculator.BuildDataset(table)
	if err != nil {
		return nil, fmt.Errorf("build dataset from %d bars: %w", len(series.Bars), err)
	}

	pred, err := strategy.Evaluate(ds)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	res := &model.RunResult{
		Symbol:  r.cfg.Symbol,
		Start:   start,
		End:     end,
		Table:   table,
		Dropped: len(series.Bars) - table.Len(),
		Predict: pred,
		CSVPath: r.recorder.Path(),
		RanAt:   started,
	}

	if price, err := r.collector.LivePrice(ctx); err != nil {
		r.metrics.LivePriceFailures.Inc()
		log.Printf("[WARN] live price for %s unavailable: %v", r.cfg.Symbol, err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("Could not fetch live price: %v", err))
	} else {
		res.LivePrice = &price
	}

	if err := r.recorder.Save(table); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return res, nil
}

// SendSignal relays the signal of res as a text alert.
func (r *Runner) SendSignal(ctx context.Context, res *model.RunResult) error {
	msg := notifier.FormatSignalAlert(res.Symbol, res.Predict.Signal, res.LivePrice)
	err := r.notifier.SendText(ctx, msg)
	r.metrics.ObserveNotification("text", err)
	if err != nil {
		log.Printf("[ERROR] send signal alert: %v", err)
		return err
	}
	log.Printf("[INFO] signal alert sent for %s", res.Symbol)
	return nil
}

// SendCSV uploads the snapshot written by res.
func (r *Runner) SendCSV(ctx context.Context, res *model.RunResult) error {
	if res.CSVPath == "" {
		err := fmt.Errorf("no snapshot file configured")
		r.metrics.ObserveNotification("file", err)
		return err
	}
	err := r.notifier.SendFile(ctx, res.CSVPath)
	r.metrics.ObserveNotification("file", err)
	if err != nil {
		log.Printf("[ERROR] send snapshot: %v", err)
		return err
	}
	log.Printf("[INFO] snapshot %s sent", res.CSVPath)
	return nil
}
