package calculator

import (
	"github.com/markcheno/go-talib"

	"SignalDesk/internal/model"
)

// Indicator windows. Not configurable.
const (
	MAPeriod   = 20
	RSIPeriod  = 14
	BollPeriod = 20
	BollDev    = 2.0
)

// Lookback is the number of leading rows without a complete set of
// indicator values. The moving average and the bands need period-1 prior
// bars; RSI needs period prior changes.
func Lookback() int {
	return max(MAPeriod-1, RSIPeriod, BollPeriod-1)
}

// Augment appends MA20, RSI14 and Bollinger(20, 2) to every bar and drops the
// leading rows whose indicators are not yet defined. A series shorter than
// Lookback()+1 bars yields an empty table.
func Augment(series *model.PriceSeries) *model.Table {
	table := &model.Table{Symbol: series.Symbol}
	lb := Lookback()
	if len(series.Bars) <= lb {
		return table
	}

	closes := series.Closes()
	ma := talib.Sma(closes, MAPeriod)
	rsi := talib.Rsi(closes, RSIPeriod)
	upper, _, lower := talib.BBands(closes, BollPeriod, BollDev, BollDev, talib.SMA)

	// talib reports 0 when there has been no price change at all; a series
	// with no losses reads as 100, so flat history is mapped there.
	flatUntil := 0
	for flatUntil+1 < len(closes) && closes[flatUntil+1] == closes[0] {
		flatUntil++
	}
	for i := RSIPeriod; i <= flatUntil; i++ {
		rsi[i] = 100
	}

	table.Rows = make([]model.IndicatorRow, 0, len(closes)-lb)
	for i := lb; i < len(closes); i++ {
		table.Rows = append(table.Rows, model.IndicatorRow{
			OHLCV:  series.Bars[i],
			MA20:   ma[i],
			RSI:    rsi[i],
			BBHigh: upper[i],
			BBLow:  lower[i],
		})
	}
	return table
}
