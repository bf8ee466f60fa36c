// Package classifier implements a gradient-boosted decision tree ensemble for
// binary classification. Trees are grown greedily on the gradient and hessian
// of the logistic loss, with L2-regularised leaf weights.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned when predicting with a model that has not been trained.
	ErrNotFitted = errors.New("classifier: model not fitted")
	// ErrEmptyData is returned by Fit when there are no training rows.
	ErrEmptyData = errors.New("classifier: empty training data")
)

// Params controls training.
type Params struct {
	NEstimators    int     // boosting rounds
	MaxDepth       int     // maximum tree depth
	LearningRate   float64 // shrinkage applied to each tree
	Lambda         float64 // L2 regularisation on leaf weights
	Gamma          float64 // minimum loss reduction to split
	MinChildWeight float64 // minimum hessian sum in a child
	BaseScore      float64 // initial probability
	Subsample      float64 // row fraction per round, (0, 1]
	Seed           int64
}

// DefaultParams returns the usual gradient boosting defaults with a fixed seed.
func DefaultParams() Params {
	return Params{
		NEstimators:    100,
		MaxDepth:       6,
		LearningRate:   0.3,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
		BaseScore:      0.5,
		Subsample:      1,
		Seed:           42,
	}
}

// Model is a binary gradient-boosted tree classifier.
type Model struct {
	params    Params
	trees     []*node
	baseScore float64 // in margin (logit) space
	nFeatures int
}

// New creates an untrained model.
func New(p Params) *Model {
	return &Model{params: p}
}

// Trees returns the number of fitted trees.
func (m *Model) Trees() int { return len(m.trees) }

// Fit trains the ensemble from scratch. x is rows x features and y holds one
// 0/1 label per row.
func (m *Model) Fit(x mat.Matrix, y []int) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return ErrEmptyData
	}
	if rows != len(y) {
		return fmt.Errorf("classifier: %d rows but %d labels", rows, len(y))
	}
	labels := make([]float64, rows)
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("classifier: label %d at row %d is not 0 or 1", v, i)
		}
		labels[i] = float64(v)
	}
	if err := m.params.validate(); err != nil {
		return err
	}

	data := make([][]float64, rows)
	for i := range data {
		data[i] = mat.Row(nil, i, x)
	}

	m.nFeatures = cols
	m.trees = m.trees[:0]
	m.baseScore = logit(m.params.BaseScore)

	margin := make([]float64, rows)
	for i := range margin {
		margin[i] = m.baseScore
	}
	grad := make([]float64, rows)
	hess := make([]float64, rows)
	rng := rand.New(rand.NewSource(m.params.Seed))

	b := &builder{data: data, grad: grad, hess: hess, p: m.params}
	for round := 0; round < m.params.NEstimators; round++ {
		for i := range margin {
			p := sigmoid(margin[i])
			grad[i] = p - labels[i]
			hess[i] = math.Max(p*(1-p), 1e-16)
		}
		tree := b.build(m.sample(rng, rows), 0)
		m.trees = append(m.trees, tree)
		for i, row := range data {
			margin[i] += tree.predict(row)
		}
	}
	return nil
}

func (m *Model) sample(rng *rand.Rand, rows int) []int {
	idx := make([]int, 0, rows)
	if m.params.Subsample >= 1 {
		for i := 0; i < rows; i++ {
			idx = append(idx, i)
		}
		return idx
	}
	for i := 0; i < rows; i++ {
		if rng.Float64() < m.params.Subsample {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		idx = append(idx, rng.Intn(rows))
	}
	return idx
}

// Margin returns the raw ensemble score (log-odds) for one feature vector.
func (m *Model) Margin(x []float64) (float64, error) {
	if len(m.trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != m.nFeatures {
		return 0, fmt.Errorf("classifier: expected %d features, got %d", m.nFeatures, len(x))
	}
	score := m.baseScore
	for _, t := range m.trees {
		score += t.predict(x)
	}
	return score, nil
}

// PredictProba returns the probability of class 1.
func (m *Model) PredictProba(x []float64) (float64, error) {
	score, err := m.Margin(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(score), nil
}

// Predict returns the class for x using the 0.5 decision boundary.
func (m *Model) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (p Params) validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("classifier: n_estimators must be positive")
	case p.MaxDepth <= 0:
		return fmt.Errorf("classifier: max_depth must be positive")
	case p.LearningRate <= 0:
		return fmt.Errorf("classifier: learning_rate must be positive")
	case p.BaseScore <= 0 || p.BaseScore >= 1:
		return fmt.Errorf("classifier: base_score must be in (0, 1)")
	case p.Subsample <= 0 || p.Subsample > 1:
		return fmt.Errorf("classifier: subsample must be in (0, 1]")
	}
	return nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func logit(p float64) float64 { return math.Log(p / (1 - p)) }
