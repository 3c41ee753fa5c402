package models

import (
	"time"
)

type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "Food"
	CategoryTransport     TransactionCategory = "Transport"
	CategoryEntertainment TransactionCategory = "Entertainment"
	CategoryShopping      TransactionCategory = "Shopping"
	CategoryBills         TransactionCategory = "Bills"
	CategoryHealthcare    TransactionCategory = "Healthcare"
	CategoryOther         TransactionCategory = "Other"
)

// Categories returns the closed label set the trained model was fitted on.
func Categories() []TransactionCategory {
	return []TransactionCategory{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryShopping,
		CategoryBills,
		CategoryHealthcare,
		CategoryOther,
	}
}

// TransactionRecord is one annotated transaction flowing through the pipeline.
// Amount is a non-negative magnitude; direction lives in IsCredit.
type TransactionRecord struct {
	TransactionID         string              `json:"transaction_id"`
	Timestamp             time.Time           `json:"timestamp"`
	Amount                float64             `json:"amount"`
	Currency              string              `json:"currency"`
	Merchant              string              `json:"merchant"`
	RawDescription        string              `json:"raw_description"`
	NormalizedDescription string              `json:"normalized_description"`
	Category              TransactionCategory `json:"category"`
	PredictedCategory     TransactionCategory `json:"predicted_category"`
	PredictionConfidence  float64             `json:"prediction_confidence"`
	IsCredit              bool                `json:"is_credit"`
	HourOfDay             int                 `json:"hour_of_day"`
	DayOfWeek             int                 `json:"day_of_week"` // Monday=0
	IsWeekend             bool                `json:"is_weekend"`
	IsNight               bool                `json:"is_night"`
	IsAmountAnomaly       bool                `json:"is_amount_anomaly"`
	IsFrequencyAnomaly    bool                `json:"is_frequency_anomaly"`
	IsMerchantAnomaly     bool                `json:"is_merchant_anomaly"`
	AnomalyScore          float64             `json:"anomaly_score"`
}

// TransactionDate returns the calendar date used for daily grouping.
func (t *TransactionRecord) TransactionDate() string {
	return t.Timestamp.Format("2006-01-02")
}
