package strategy

import (
	"errors"
	"testing"
	"time"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/classifier"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/model"
)

func datasetFor(t *testing.T, step float64, days int) *calculator.Dataset {
	t.Helper()
	bars := collector.GenerateTrend(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, step, days)
	table := calculator.Augment(&model.PriceSeries{Symbol: "TEST", Bars: bars})
	ds, err := calculator.BuildDataset(table)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func TestEvaluate_Trends(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want model.Signal
	}{
		{"uptrend", 0.01, model.SignalBuy},
		{"downtrend", -0.01, model.SignalSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := datasetFor(t, tt.step, 30)
			pred, err := Evaluate(ds)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if pred.Signal != tt.want {
				t.Errorf("got %s (p=%.3f), want %s", pred.Signal, pred.Probability, tt.want)
			}
			if pred.TrainRows != ds.Rows() {
				t.Errorf("train rows: got %d, want %d", pred.TrainRows, ds.Rows())
			}
			if pred.Signal != model.SignalFromClass(pred.Class) {
				t.Error("signal does not match class")
			}
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	ds := datasetFor(t, 0.004, 80)
	a, err := Evaluate(ds)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	b, _ := Evaluate(ds)
	if a.Probability != b.Probability || a.Signal != b.Signal {
		t.Errorf("repeated evaluation differs: %+v vs %+v", a, b)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := Evaluate(nil); !errors.Is(err, calculator.ErrInsufficientData) {
		t.Errorf("nil dataset: got %v", err)
	}
	bad := classifier.DefaultParams()
	bad.MaxDepth = 0
	if _, err := EvaluateWith(datasetFor(t, 0.01, 30), bad); err == nil {
		t.Error("expected training error for invalid params")
	}
}
