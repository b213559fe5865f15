// Package regression loads pre-trained regression models exported to JSON
// and evaluates them. Models are immutable once loaded and safe for
// concurrent use.
package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Model types understood by Decode.
const (
	TypeRandomForest = "random_forest"
	TypeLinear       = "linear"
)

// ErrInvalidModel is wrapped by every load-time validation failure.
var ErrInvalidModel = errors.New("invalid model artifact")

// Model predicts one scalar from a fixed-length feature vector.
type Model interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
}

// artifact is the JSON document written by the export script.
type artifact struct {
	Type         string    `json:"type"`
	NFeatures    int       `json:"n_features"`
	FeatureNames []string  `json:"feature_names"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Trees        []Tree    `json:"trees"`
}

// Load reads a model artifact from path.
func Load(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return m, nil
}

// Decode parses and validates a model artifact.
func Decode(r io.Reader) (Model, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if a.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive", ErrInvalidModel)
	}
	if len(a.FeatureNames) != 0 && len(a.FeatureNames) != a.NFeatures {
		return nil, fmt.Errorf("%w: %d feature names for %d features", ErrInvalidModel, len(a.FeatureNames), a.NFeatures)
	}

	switch a.Type {
	case TypeRandomForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidModel)
		}
		for i := range a.Trees {
			if err := a.Trees[i].validate(a.NFeatures); err != nil {
				return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidModel, i, err)
			}
		}
		return &Forest{nFeatures: a.NFeatures, trees: a.Trees}, nil
	case TypeLinear:
		if len(a.Coefficients) != a.NFeatures {
			return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidModel, len(a.Coefficients), a.NFeatures)
		}
		return &Linear{intercept: a.Intercept, coefficients: a.Coefficients}, nil
	default:
		return nil, fmt.Errorf("%w: unknown model type %q", ErrInvalidModel, a.Type)
	}
}

func checkWidth(features []float64, n int) error {
	if len(features) != n {
		return fmt.Errorf("expected %d features, got %d", n, len(features))
	}
	return nil
}

// Linear is an ordinary least squares model.
type Linear struct {
	intercept    float64
	coefficients []float64
}

// NumFeatures implements Model.
func (l *Linear) NumFeatures() int { return len(l.coefficients) }

// Predict implements Model.
func (l *Linear) Predict(features []float64) (float64, error) {
	if err := checkWidth(features, len(l.coefficients)); err != nil {
		return 0, err
	}
	y := l.intercept
	for i, c := range l.coefficients {
		y += c * features[i]
	}
	return y, nil
}
