package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat"

	"SignalDesk/internal/model"
)

func series(closes ...float64) *model.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func zigzag(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i%7) - float64(i%3)*1.5 + float64(i)*0.2
	}
	return closes
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

func TestLookback(t *testing.T) {
	if Lookback() != 19 {
		t.Fatalf("expected lookback 19, got %d", Lookback())
	}
}

func TestAugment_RowCount(t *testing.T) {
	for _, n := range []int{0, 5, 19, 20, 21, 30, 100} {
		table := Augment(series(zigzag(n)...))
		want := n - Lookback()
		if want < 0 {
			want = 0
		}
		if table.Len() != want {
			t.Errorf("n=%d: expected %d rows, got %d", n, want, table.Len())
		}
		if table.Len() > n-20+1 && n >= 20 {
			t.Errorf("n=%d: more than N-L+1 rows", n)
		}
	}
}

func TestAugment_NoMissingValues(t *testing.T) {
	table := Augment(series(zigzag(60)...))
	for i, r := range table.Rows {
		for j, v := range r.Features() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d feature %s missing", i, model.FeatureNames[j])
			}
		}
		if r.MA20 == 0 || r.BBHigh == 0 || r.BBLow == 0 {
			t.Fatalf("row %d has an undefined indicator: %+v", i, r)
		}
		if r.BBHigh < r.MA20 || r.BBLow > r.MA20 {
			t.Errorf("row %d: bands do not bracket MA20", i)
		}
		if r.RSI < 0 || r.RSI > 100 {
			t.Errorf("row %d: RSI out of range: %v", i, r.RSI)
		}
	}
}

func TestAugment_MatchesReferenceFormulas(t *testing.T) {
	closes := zigzag(45)
	table := Augment(series(closes...))
	for k, r := range table.Rows {
		i := k + Lookback()
		window := closes[i-MAPeriod+1 : i+1]
		mean, std := stat.PopMeanStdDev(window, nil)
		assertClose(t, "MA20", r.MA20, mean, 1e-9)
		assertClose(t, "BB_High", r.BBHigh, mean+BollDev*std, 1e-6)
		assertClose(t, "BB_Low", r.BBLow, mean-BollDev*std, 1e-6)
		if !r.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)) {
			t.Errorf("row %d misaligned with its bar date", k)
		}
	}
}

func TestAugment_RSIExtremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
	}
	for _, r := range Augment(series(up...)).Rows {
		assertClose(t, "RSI uptrend", r.RSI, 100, 1e-9)
	}
	for _, r := range Augment(series(down...)).Rows {
		assertClose(t, "RSI downtrend", r.RSI, 0, 1e-9)
	}
}

func TestAugment_RSIFlatHistory(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50
	}
	for _, r := range Augment(series(closes...)).Rows {
		assertClose(t, "RSI flat", r.RSI, 100, 1e-9)
	}

	// once a loss appears the flat prefix no longer applies
	closes = append(closes[:30], 49, 49, 49, 49, 49, 49, 49, 49, 49, 49)
	rows := Augment(series(closes...)).Rows
	last := rows[len(rows)-1]
	if last.RSI != 0 {
		t.Errorf("after a single loss and no gains RSI should be 0, got %v", last.RSI)
	}
	if rows[0].RSI != 100 {
		t.Errorf("flat prefix row should read 100, got %v", rows[0].RSI)
	}
}

func TestBuildDataset_Shapes(t *testing.T) {
	table := Augment(series(zigzag(40)...))
	ds, err := BuildDataset(table)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r, c := ds.X.Dims()
	if r != table.Len()-1 || r != len(ds.Y) || r != ds.Rows() {
		t.Fatalf("rows: X=%d Y=%d table=%d", r, len(ds.Y), table.Len())
	}
	if c != len(model.FeatureNames) {
		t.Fatalf("expected %d columns, got %d", len(model.FeatureNames), c)
	}
	last := table.Rows[table.Len()-1].Features()
	for j := range last {
		if ds.Latest[j] != last[j] {
			t.Errorf("latest feature %d mismatch", j)
		}
	}
}

func TestBuildDataset_LabelAlignment(t *testing.T) {
	table := Augment(series(zigzag(50)...))
	ds, err := BuildDataset(table)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, label := range ds.Y {
		want := 0
		if table.Rows[i+1].Close > table.Rows[i].Close {
			want = 1
		}
		if label != want {
			t.Errorf("label %d: got %d, want %d", i, label, want)
		}
		if ds.X.At(i, 0) != table.Rows[i].Close {
			t.Errorf("row %d: feature close does not belong to the labeled row", i)
		}
	}
}

func TestBuildDataset_EqualClosesLabelZero(t *testing.T) {
	flat := make([]float64, 25)
	for i := range flat {
		flat[i] = 50
	}
	ds, err := BuildDataset(Augment(series(flat...)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, y := range ds.Y {
		if y != 0 {
			t.Errorf("label %d: equal closes must be 0", i)
		}
	}
}

func TestBuildDataset_Insufficient(t *testing.T) {
	for _, n := range []int{0, 19, 20} {
		_, err := BuildDataset(Augment(series(zigzag(n)...)))
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}
}
