package calculator

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"SignalDesk/internal/model"
)

// ErrInsufficientData means the table has fewer than two rows, so there is
// nothing to train on.
var ErrInsufficientData = errors.New("insufficient data: need at least two indicator rows")

// Dataset is the classifier input built from an indicator table.
type Dataset struct {
	X      *mat.Dense // (N-1) x len(model.FeatureNames)
	Y      []int      // Y[i] = 1 iff Close[i+1] > Close[i]
	Latest []float64  // features of row N-1, used for prediction
	Dates  []string   // date of each training row
}

// Rows returns the number of labeled rows.
func (d *Dataset) Rows() int { return len(d.Y) }

// BuildDataset turns a table of N rows into N-1 labeled feature rows plus
// the unlabeled latest row. Row i is paired with the close of row i+1.
func BuildDataset(table *model.Table) (*Dataset, error) {
	n := table.Len()
	if n < 2 {
		return nil, ErrInsufficientData
	}
	cols := len(model.FeatureNames)
	x := mat.NewDense(n-1, cols, nil)
	y := make([]int, n-1)
	dates := make([]string, n-1)
	for i := 0; i < n-1; i++ {
		row := table.Rows[i]
		x.SetRow(i, row.Features())
		if table.Rows[i+1].Close > row.Close {
			y[i] = 1
		}
		dates[i] = row.Time.Format("2006-01-02")
	}
	return &Dataset{
		X:      x,
		Y:      y,
		Latest: table.Rows[n-1].Features(),
		Dates:  dates,
	}, nil
}
