package model

import "time"

// Signal is the actionable output of a run.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// SignalFromClass maps a predicted class to a Signal: 1 is BUY, anything else SELL.
func SignalFromClass(class int) Signal {
	if class == 1 {
		return SignalBuy
	}
	return SignalSell
}

// Emoji returns the decoration shown next to the signal.
func (s Signal) Emoji() string {
	if s == SignalBuy {
		return "📈"
	}
	return "📉"
}

// Prediction is the strategy engine's result for the latest row.
type Prediction struct {
	Signal      Signal
	Class       int
	Probability float64 // probability of class 1
	TrainRows   int
}

// RunResult is everything one pipeline run produced.
type RunResult struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Table     *Table
	Dropped   int // rows removed for insufficient indicator lookback
	Predict   *Prediction
	LivePrice *float64 // nil when the live fetch failed
	Warnings  []string
	CSVPath   string
	RanAt     time.Time
	Duration  time.Duration
}

// HasLivePrice reports whether the live price was fetched.
func (r *RunResult) HasLivePrice() bool { return r.LivePrice != nil }
