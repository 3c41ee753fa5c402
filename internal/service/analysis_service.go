package service

import (
	"context"
	"fmt"

	"spendlens/internal/dto"
	"spendlens/internal/models"

	"go.uber.org/zap"
)

// AnalysisService composes the pipeline linearly: normalize descriptions,
// categorize, apply optional rule overrides, detect anomalies, then generate
// insights and summaries. One synchronous pass, no partial results.
type AnalysisService struct {
	normalizer  *NormalizerService
	categorizer *CategorizerService
	anomalies   *AnomalyService
	insights    *InsightService
	rules       *RuleService
	logger      *zap.Logger
}

func NewAnalysisService(
	normalizer *NormalizerService,
	categorizer *CategorizerService,
	anomalies *AnomalyService,
	insights *InsightService,
	rules *RuleService,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		normalizer:  normalizer,
		categorizer: categorizer,
		anomalies:   anomalies,
		insights:    insights,
		rules:       rules,
		logger:      logger,
	}
}

// Analyze runs the full pipeline over a batch. The input is not mutated.
// Transactions arriving with an empty category take the model's prediction;
// a caller-supplied category is kept as-is.
func (s *AnalysisService) Analyze(ctx context.Context, batch []models.TransactionRecord) (*dto.AnalysisResult, error) {
	records := make([]models.TransactionRecord, len(batch))
	copy(records, batch)

	descriptions := make([]string, len(records))
	for i := range records {
		records[i].NormalizedDescription = s.normalizer.Normalize(records[i].RawDescription)
		descriptions[i] = records[i].NormalizedDescription
	}

	predictions, err := s.categorizer.Predict(descriptions)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize batch: %w", err)
	}
	for i := range records {
		records[i].PredictedCategory = predictions[i].Category
		records[i].PredictionConfidence = predictions[i].Confidence
		if records[i].Category == "" {
			records[i].Category = predictions[i].Category
		}
	}

	if s.rules != nil && !s.rules.Empty() {
		overridden := s.rules.Apply(records)
		if overridden > 0 {
			s.logger.Info("rule overrides applied", zap.Int("overridden", overridden))
		}
	}

	records = s.anomalies.DetectAnomalies(records)

	result := &dto.AnalysisResult{
		Transactions: records,
		Predictions:  predictions,
		Insights:     s.insights.GenerateInsights(records),
		Summary:      s.insights.SpendingSummary(records),
		Anomalies:    s.anomalies.AnomalySummary(records),
	}

	s.logger.Info("batch analyzed",
		zap.Int("transactions", len(records)),
		zap.Int("insights", len(result.Insights)),
		zap.Int("anomalies", result.Anomalies.TotalAnomalies),
	)
	return result, nil
}
