package model

// PriceTable maps service id to hospital to price.
type PriceTable map[string]map[string]float64

// PriceEstimate is derived and ephemeral: computed server-side from a
// service id + hospital pair and never cached beyond the query that
// requested it.
type PriceEstimate struct {
	BasePrice   float64 `json:"basePrice"`
	Coverage    float64 `json:"coverage"`
	OutOfPocket float64 `json:"outOfPocket"`
}
