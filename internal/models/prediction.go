package models

// Prediction is the categorizer output for one description. Probabilities
// covers the classifier's full label set and sums to 1 within floating
// tolerance; Confidence is the maximum per-class probability.
type Prediction struct {
	Category      TransactionCategory `json:"category"`
	Confidence    float64             `json:"confidence"`
	Probabilities map[string]float64  `json:"probabilities"`
}
