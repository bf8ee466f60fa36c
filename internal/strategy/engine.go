package strategy

import (
	"fmt"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/classifier"
	"SignalDesk/internal/model"
)

// Evaluate trains a fresh classifier on ds with the default parameters and
// predicts the direction for the latest row.
func Evaluate(ds *calculator.Dataset) (*model.Prediction, error) {
	return EvaluateWith(ds, classifier.DefaultParams())
}

// EvaluateWith is Evaluate with explicit training parameters.
func EvaluateWith(ds *calculator.Dataset, p classifier.Params) (*model.Prediction, error) {
	if ds == nil || ds.Rows() == 0 {
		return nil, calculator.ErrInsufficientData
	}

	m := classifier.New(p)
	if err := m.Fit(ds.X, ds.Y); err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}
	prob, err := m.PredictProba(ds.Latest)
	if err != nil {
		return nil, fmt.Errorf("predict latest row: %w", err)
	}

	class := 0
	if prob > 0.5 {
		class = 1
	}
	return &model.Prediction{
		Signal:      model.SignalFromClass(class),
		Class:       class,
		Probability: prob,
		TrainRows:   ds.Rows(),
	}, nil
}
