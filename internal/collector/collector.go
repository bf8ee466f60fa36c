package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"SignalDesk/internal/config"
	"SignalDesk/internal/model"
)

// ErrNoData is returned when the provider yields no usable bars.
var ErrNoData = errors.New("no price data returned")

// NewFetcher selects the Fetcher for the configured provider.
func NewFetcher(cfg *config.Config) (Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderYahoo, "":
		f := NewYahooFetcher(cfg.Proxy)
		if ds.BaseURL != "" {
			f.BaseURL = ds.BaseURL
		}
		return f, nil
	case config.ProviderREST:
		return NewRestFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case config.ProviderAlpaca:
		return NewAlpacaFetcher(ds.APIKey, ds.APISecret), nil
	case config.ProviderPolygon:
		return NewPolygonFetcher(ds.APIKey, cfg.Proxy), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ds.Provider)
	}
}

// Collector loads the price history and live price for one symbol.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol}
}

// Load fetches daily bars for [start, end) and normalizes them into a
// strictly date-increasing series.
func (c *Collector) Load(ctx context.Context, start, end time.Time) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	bars = Normalize(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s..%s: %w", c.Symbol, start.Format(config.DateLayout), end.Format(config.DateLayout), ErrNoData)
	}
	log.Printf("[INFO] loaded %d bars for %s from %s", len(bars), c.Symbol, c.Fetcher.Name())
	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Bars:      bars,
		Start:     start,
		End:       end,
		FetchedAt: time.Now(),
	}, nil
}

// LivePrice fetches the current quoted price.
func (c *Collector) LivePrice(ctx context.Context) (float64, error) {
	p, err := c.Fetcher.FetchCurrentPrice(ctx, c.Symbol)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	return p, nil
}

// Normalize sorts bars by time, truncates timestamps to the UTC calendar day
// and collapses duplicate days keeping the last bar seen.
func Normalize(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]model.OHLCV, 0, len(sorted))
	for _, b := range sorted {
		y, m, d := b.Time.UTC().Date()
		b.Time = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
