package models

// TrendPoint is one quarter of historical market pricing.
type TrendPoint struct {
	Quarter string  `json:"quarter"`
	Price   float64 `json:"price"`
}

// PredictionResult is the raw forecast payload returned by the backend for a
// single property and horizon. ProjectedPrice5Years is computed by the
// backend for a fixed horizon and is not displayed; the client derives its
// own projection for the selected horizon.
type PredictionResult struct {
	EstimatedPrice         float64      `json:"estimatedPrice"`
	PriceRangeLow          float64      `json:"priceRangeLow"`
	PriceRangeHigh         float64      `json:"priceRangeHigh"`
	ConfidenceLevel        string       `json:"confidenceLevel"`
	MarketTrend            string       `json:"marketTrend"`
	ProjectedPrice5Years   float64      `json:"projectedPrice5Years"`
	AnnualAppreciationRate float64      `json:"annualAppreciationRate"`
	HistoricalTrends       []TrendPoint `json:"historicalTrends"`
}
