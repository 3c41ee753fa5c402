package models

type InsightType string

const (
	InsightSpendingSummary InsightType = "spending_summary"
	InsightTopMerchant     InsightType = "top_merchant"
	InsightAnomalyAlert    InsightType = "anomaly_alert"
	InsightTrend           InsightType = "trend"
)

type InsightSeverity string

const (
	SeverityHigh   InsightSeverity = "high"
	SeverityMedium InsightSeverity = "medium"
)

// Insight is a single generated observation about spending behavior.
// Generated fresh per call and never persisted by the pipeline.
type Insight struct {
	Type          InsightType         `json:"type"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      TransactionCategory `json:"category,omitempty"`
	Merchant      string              `json:"merchant,omitempty"`
	Amount        float64             `json:"amount,omitempty"`
	Count         int                 `json:"count,omitempty"`
	Severity      InsightSeverity     `json:"severity,omitempty"`
	TransactionID string              `json:"transaction_id,omitempty"`
}

// SpendingSummary aggregates a batch into income/spending totals.
// CategoryBreakdown holds summed debit amounts only.
type SpendingSummary struct {
	TotalIncome       float64                         `json:"total_income"`
	TotalSpending     float64                         `json:"total_spending"`
	Net               float64                         `json:"net"`
	NumTransactions   int                             `json:"num_transactions"`
	CategoryBreakdown map[TransactionCategory]float64 `json:"category_breakdown"`
	AvgTransaction    float64                         `json:"avg_transaction"`
}

// AnomalySummary counts flags across a batch. TotalAnomalies counts
// transactions with a composite score above zero.
type AnomalySummary struct {
	TotalTransactions  int     `json:"total_transactions"`
	AmountAnomalies    int     `json:"amount_anomalies"`
	FrequencyAnomalies int     `json:"frequency_anomalies"`
	MerchantAnomalies  int     `json:"merchant_anomalies"`
	TotalAnomalies     int     `json:"total_anomalies"`
	AnomalyRate        float64 `json:"anomaly_rate"`
}
