package forecast

import (
	"math"

	"github.com/sirupsen/logrus"

	"rently/client/internal/models"
)

// Horizon bounds accepted by the forecast view.
const (
	MinHorizonYears = 1
	MaxHorizonYears = 50
)

// Predictor is the slice of the backend the forecast service consumes.
type Predictor interface {
	Predict(propertyID int64, years int) (*models.PredictionResult, error)
}

// View is the derived forecast presentation for one property and horizon.
// GrowthPercent and ProjectedPrice are both computed client-side from the
// annual appreciation rate, so the two displayed numbers always agree; the
// backend's fixed-horizon projection is ignored.
type View struct {
	Horizon                int                 `json:"horizon"`
	EstimatedPrice         float64             `json:"estimatedPrice"`
	AnnualAppreciationRate float64             `json:"annualAppreciationRate"`
	GrowthPercent          float64             `json:"growthPercent"`
	ProjectedPrice         float64             `json:"projectedPrice"`
	MarketTrend            string              `json:"marketTrend"`
	ConfidenceLevel        string              `json:"confidenceLevel"`
	HistoricalTrends       []models.TrendPoint `json:"historicalTrends"`
}

// Service fetches predictions and derives the forecast view. Every horizon
// change triggers a fresh fetch; nothing is cached across horizons.
type Service struct {
	api    Predictor
	logger *logrus.Logger
}

func NewService(api Predictor, logger *logrus.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// GrowthPercent is the compounded growth over the horizon, as a percentage.
func GrowthPercent(annualRate float64, years int) float64 {
	return (math.Pow(1+annualRate/100, float64(years)) - 1) * 100
}

// ProjectedPrice compounds the estimate forward over the horizon.
func ProjectedPrice(estimatedPrice, annualRate float64, years int) float64 {
	return estimatedPrice * math.Pow(1+annualRate/100, float64(years))
}

// ClampHorizon bounds the requested horizon to the accepted range.
func ClampHorizon(years int) int {
	if years < MinHorizonYears {
		return MinHorizonYears
	}
	if years > MaxHorizonYears {
		return MaxHorizonYears
	}
	return years
}

// Forecast fetches the prediction for the property at the given horizon and
// derives the displayed view.
func (s *Service) Forecast(propertyID int64, years int) (*View, error) {
	years = ClampHorizon(years)

	prediction, err := s.api.Predict(propertyID, years)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"property_id": propertyID,
			"years":       years,
		}).Error("Prediction fetch failed")
		return nil, err
	}

	return &View{
		Horizon:                years,
		EstimatedPrice:         prediction.EstimatedPrice,
		AnnualAppreciationRate: prediction.AnnualAppreciationRate,
		GrowthPercent:          GrowthPercent(prediction.AnnualAppreciationRate, years),
		ProjectedPrice:         ProjectedPrice(prediction.EstimatedPrice, prediction.AnnualAppreciationRate, years),
		MarketTrend:            prediction.MarketTrend,
		ConfidenceLevel:        prediction.ConfidenceLevel,
		HistoricalTrends:       prediction.HistoricalTrends,
	}, nil
}
