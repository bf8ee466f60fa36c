package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily history of one symbol, oldest first.
// Dates are strictly increasing.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	Start     time.Time
	End       time.Time
	FetchedAt time.Time
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}
