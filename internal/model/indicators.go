package model

// FeatureNames lists the classifier inputs in column order.
var FeatureNames = []string{"Close", "MA20", "RSI", "BB_High", "BB_Low"}

// IndicatorRow is one bar of the processed table: the original OHLCV
// columns plus the derived indicators.
type IndicatorRow struct {
	OHLCV
	MA20   float64
	RSI    float64
	BBHigh float64
	BBLow  float64
}

// Features returns the row's feature vector in FeatureNames order.
func (r IndicatorRow) Features() []float64 {
	return []float64{r.Close, r.MA20, r.RSI, r.BBHigh, r.BBLow}
}

// Table is the processed, date-indexed series with no missing values.
type Table struct {
	Symbol string
	Rows   []IndicatorRow
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Tail returns the last n rows (or all rows when fewer).
func (t *Table) Tail(n int) []IndicatorRow {
	if n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[len(t.Rows)-n:]
}
