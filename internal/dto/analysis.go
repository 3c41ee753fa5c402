package dto

import (
	"spendlens/internal/models"
)

// AnalysisResult is everything one pipeline invocation produces for a batch.
type AnalysisResult struct {
	Transactions []models.TransactionRecord `json:"transactions"`
	Predictions  []models.Prediction        `json:"predictions"`
	Insights     []models.Insight           `json:"insights"`
	Summary      models.SpendingSummary     `json:"summary"`
	Anomalies    models.AnomalySummary      `json:"anomalies"`
}
