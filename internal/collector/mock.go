package collector

import (
	"context"
	"errors"
	"time"

	"SignalDesk/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	BarsErr   error
	PriceErr  error
	Calls     int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls++
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	days := int(end.Sub(start).Hours() / 24)
	return GenerateTrend(start, m.Price, 0.001, days), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	if m.Price == 0 {
		return 0, errors.New("mock: no price")
	}
	return m.Price, nil
}

// GenerateTrend builds count consecutive daily bars starting at from, with
// the close compounding by step per day (negative step for a downtrend).
func GenerateTrend(from time.Time, basePrice, step float64, count int) []model.OHLCV {
	if count < 0 {
		count = 0
	}
	bars := make([]model.OHLCV, count)
	p := basePrice
	for i := 0; i < count; i++ {
		bars[i] = model.OHLCV{
			Time:   from.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		p *= 1 + step
	}
	return bars
}
