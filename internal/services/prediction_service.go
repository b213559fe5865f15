package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"goldpredict/internal/models"
	"goldpredict/pkg/regression"

	"go.uber.org/zap"
)

// FeatureCount is the width of the feature vector: SPX, USO, SLV, EUR/USD.
const FeatureCount = 4

// ErrFeatureShape means the loaded model does not take FeatureCount inputs.
var ErrFeatureShape = errors.New("model feature count mismatch")

// ErrPredictionOutOfRange means the inputs drove the model to a non-finite price.
var ErrPredictionOutOfRange = errors.New("prediction out of range")

// PredictionService wraps the pre-trained gold price model.
type PredictionService struct {
	model     regression.Model
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPredictionService checks the model shape up front so a bad artifact
// fails at startup rather than on the first request.
func NewPredictionService(model regression.Model, publisher EventPublisher, logger *zap.Logger) (*PredictionService, error) {
	if model == nil {
		return nil, fmt.Errorf("prediction model is required")
	}
	if n := model.NumFeatures(); n != FeatureCount {
		return nil, fmt.Errorf("%w: model takes %d features, want %d", ErrFeatureShape, n, FeatureCount)
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &PredictionService{model: model, publisher: publisher, logger: logger}, nil
}

// Predict estimates the gold price in USD and converts it with the request's own rate.
func (s *PredictionService) Predict(ctx context.Context, username string, req models.PredictionRequest) (*models.PredictionResponse, error) {
	usd, err := s.model.Predict(req.Features())
	if err != nil {
		return nil, fmt.Errorf("failed to predict gold price: %w", err)
	}
	resp := &models.PredictionResponse{
		PriceUSD: usd,
		PriceEUR: ToEUR(usd, req.EURUSD),
	}
	if !finite(resp.PriceUSD) || !finite(resp.PriceEUR) {
		return nil, ErrPredictionOutOfRange
	}

	body, err := newEventBody(EventPredictionCompleted, map[string]any{
		"username": username,
		"request":  req,
		"result":   resp,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, EventPredictionCompleted, body)
	}
	if err != nil {
		s.logger.Warn("failed to publish prediction event", zap.Error(err))
	}
	return resp, nil
}

// ToEUR converts a USD price with the supplied EUR per USD rate.
func ToEUR(usdPrice, eurPerUSD float64) float64 {
	return usdPrice * eurPerUSD
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
