package classifier

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func matrix(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

func TestFit_SeparableThreshold(t *testing.T) {
	var rows [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		v := float64(i)
		rows = append(rows, []float64{v, 100 - v})
		if i >= 20 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	m := New(DefaultParams())
	if err := m.Fit(matrix(rows), y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if m.Trees() != 100 {
		t.Errorf("expected 100 trees, got %d", m.Trees())
	}
	tests := []struct {
		x    []float64
		want int
	}{
		{[]float64{2, 98}, 0},
		{[]float64{15, 85}, 0},
		{[]float64{25, 75}, 1},
		{[]float64{39, 61}, 1},
		{[]float64{-50, 150}, 0},
		{[]float64{500, -400}, 1},
	}
	for _, tt := range tests {
		got, err := m.Predict(tt.x)
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if got != tt.want {
			p, _ := m.PredictProba(tt.x)
			t.Errorf("x=%v: got %d (p=%.3f), want %d", tt.x, got, p, tt.want)
		}
	}
}

func TestFit_SingleClass(t *testing.T) {
	rows := [][]float64{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}}
	ones := []int{1, 1, 1, 1, 1}
	zeros := []int{0, 0, 0, 0, 0}

	up := New(DefaultParams())
	if err := up.Fit(matrix(rows), ones); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if c, _ := up.Predict([]float64{6, 7}); c != 1 {
		t.Error("all-positive training set should predict 1")
	}

	down := New(DefaultParams())
	if err := down.Fit(matrix(rows), zeros); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if c, _ := down.Predict([]float64{6, 7}); c != 0 {
		t.Error("all-negative training set should predict 0")
	}
}

func TestFit_Interaction(t *testing.T) {
	// label is 1 only when both features are high; needs depth >= 2
	var rows [][]float64
	var y []int
	for a := 0; a < 8; a++ {
		for b := 0; b < 8; b++ {
			rows = append(rows, []float64{float64(a), float64(b)})
			if a >= 4 && b >= 4 {
				y = append(y, 1)
			} else {
				y = append(y, 0)
			}
		}
	}
	m := New(DefaultParams())
	if err := m.Fit(matrix(rows), y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	for i, r := range rows {
		got, _ := m.Predict(r)
		if got != y[i] {
			t.Errorf("row %v: got %d, want %d", r, got, y[i])
		}
	}
}

func TestFit_Deterministic(t *testing.T) {
	rows := [][]float64{{1, 5}, {2, 3}, {3, 8}, {4, 1}, {5, 9}, {6, 2}, {7, 7}, {8, 4}, {9, 6}, {10, 0}}
	y := []int{0, 1, 0, 1, 1, 0, 1, 0, 1, 0}
	p := DefaultParams()
	p.Subsample = 0.7

	a, b := New(p), New(p)
	if err := a.Fit(matrix(rows), y); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(matrix(rows), y); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	for _, r := range rows {
		pa, _ := a.PredictProba(r)
		pb, _ := b.PredictProba(r)
		if pa != pb {
			t.Fatalf("same seed produced different models: %v vs %v", pa, pb)
		}
	}
}

func TestFit_Errors(t *testing.T) {
	m := New(DefaultParams())
	if err := m.Fit(mat.NewDense(1, 2, nil), []int{0, 1}); err == nil {
		t.Error("expected length mismatch error")
	}
	if err := m.Fit(matrix([][]float64{{1}, {2}}), []int{0, 2}); err == nil {
		t.Error("expected label range error")
	}
	bad := DefaultParams()
	bad.NEstimators = 0
	if err := New(bad).Fit(matrix([][]float64{{1}, {2}}), []int{0, 1}); err == nil {
		t.Error("expected params error")
	}
	if err := m.Fit(&mat.Dense{}, nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestPredict_Errors(t *testing.T) {
	m := New(DefaultParams())
	if _, err := m.Predict([]float64{1}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
	if err := m.Fit(matrix([][]float64{{1, 1}, {2, 2}}), []int{0, 1}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("expected feature count error")
	}
}
