package collector

import (
	"context"
	"fmt"
	"time"

	polygonrest "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"SignalDesk/internal/model"
)

// PolygonFetcher implements Fetcher using the Polygon.io REST API.
type PolygonFetcher struct {
	rest *polygonrest.Client
}

// NewPolygonFetcher creates a fetcher with optional proxy support.
func NewPolygonFetcher(apiKey, proxyURL string) *PolygonFetcher {
	return &PolygonFetcher{rest: polygonrest.NewWithClient(apiKey, newHTTPClient(proxyURL))}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	params := &models.ListAggsParams{
		Ticker:     symbol,
		Timespan:   models.Day,
		Multiplier: 1,
		From:       models.Millis(start),
		// REST 'To' is inclusive of the day; step back one millisecond to keep end exclusive.
		To: models.Millis(end.Add(-time.Millisecond)),
	}
	lim := 50000
	asc := models.Asc
	adj := true
	params.Limit = &lim
	params.Order = &asc
	params.Adjusted = &adj

	iter := f.rest.ListAggs(ctx, params)
	var bars []model.OHLCV
	for iter.Next() {
		a := iter.Item()
		bars = append(bars, model.OHLCV{
			Time:   time.Time(a.Timestamp).UTC(),
			Open:   a.Open,
			High:   a.High,
			Low:    a.Low,
			Close:  a.Close,
			Volume: a.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs: %w", err)
	}
	return bars, nil
}

func (f *PolygonFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	res, err := f.rest.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: symbol})
	if err != nil {
		return 0, fmt.Errorf("polygon last trade: %w", err)
	}
	return res.Results.Price, nil
}
