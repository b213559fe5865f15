package models

// PredictionRequest holds the four market indicators fed to the model,
// in the order the model was trained on.
type PredictionRequest struct {
	SPX    float64 `json:"spx" form:"spx"`
	USO    float64 `json:"uso" form:"uso"`
	SLV    float64 `json:"slv" form:"slv"`
	EURUSD float64 `json:"eur_usd" form:"eur_usd"`
}

// Features returns the ordered feature vector.
func (r PredictionRequest) Features() []float64 {
	return []float64{r.SPX, r.USO, r.SLV, r.EURUSD}
}

// PredictionResponse is the model estimate in both currencies.
type PredictionResponse struct {
	PriceUSD float64 `json:"price_usd"`
	PriceEUR float64 `json:"price_eur"`
}
