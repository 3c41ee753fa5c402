package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spendlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalysisService(t *testing.T, modelPath string) *AnalysisService {
	t.Helper()

	rules, err := NewRuleService("", testLogger())
	require.NoError(t, err)

	return NewAnalysisService(
		NewNormalizerService(),
		NewCategorizerService(modelPath, testLogger()),
		NewAnomalyService(DefaultZThreshold, testLogger()),
		NewInsightService("€", testLogger()),
		rules,
		testLogger(),
	)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	svc := newTestAnalysisService(t, writeTestModel(t))

	batch := []models.TransactionRecord{
		{
			TransactionID:  "t1",
			Timestamp:      mustTime(t, "2024-03-04 09:15:00"),
			Amount:         4.5,
			Merchant:       "starbucks",
			RawDescription: "POS VISA STARBUCKS COFFEE 99283311",
		},
		{
			TransactionID:  "t2",
			Timestamp:      mustTime(t, "2024-03-04 18:40:00"),
			Amount:         12.8,
			Merchant:       "uber",
			RawDescription: "UBER*TRIP AUTH928374",
		},
		{
			TransactionID:  "t3",
			Timestamp:      mustTime(t, "2024-03-05 12:00:00"),
			Amount:         9.2,
			Merchant:       "starbucks",
			RawDescription: "STARBUCKS COFFEE LONDON",
			Category:       models.CategoryBills, // caller-supplied category is kept
		},
	}

	result, err := svc.Analyze(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	require.Len(t, result.Predictions, 3)

	first := result.Transactions[0]
	assert.Equal(t, "starbucks coffee", first.NormalizedDescription)
	assert.Equal(t, models.CategoryFood, first.PredictedCategory)
	assert.Equal(t, models.CategoryFood, first.Category, "empty category takes the prediction")
	assert.Greater(t, first.PredictionConfidence, 0.0)

	second := result.Transactions[1]
	assert.Equal(t, "uber trip", second.NormalizedDescription)
	assert.Equal(t, models.CategoryTransport, second.Category)

	third := result.Transactions[2]
	assert.Equal(t, models.CategoryFood, third.PredictedCategory)
	assert.Equal(t, models.CategoryBills, third.Category)

	assert.Equal(t, 3, result.Summary.NumTransactions)
	assert.Equal(t, 3, result.Anomalies.TotalTransactions)
	assert.NotNil(t, result.Insights)

	// The caller's batch is untouched.
	assert.Empty(t, batch[0].NormalizedDescription)
	assert.Empty(t, batch[0].Category)
}

func TestAnalyzeEmptyBatchSkipsModel(t *testing.T) {
	// The model path does not exist; an empty batch must still succeed
	// because Predict is never reached with work to do.
	svc := newTestAnalysisService(t, filepath.Join(t.TempDir(), "missing.gob"))

	result, err := svc.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.Insights)
	assert.Zero(t, result.Summary.NumTransactions)
	assert.Zero(t, result.Anomalies.TotalTransactions)
}

func TestAnalyzeSurfacesModelErrors(t *testing.T) {
	svc := newTestAnalysisService(t, filepath.Join(t.TempDir(), "missing.gob"))

	_, err := svc.Analyze(context.Background(), []models.TransactionRecord{
		{TransactionID: "t1", Amount: 5, Merchant: "cafe", RawDescription: "coffee", Timestamp: mustTime(t, "2024-03-04 09:00:00")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestAnalyzeAppliesRuleOverrides(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("Bills:\n  - \"(?i)^DIRECT DEBIT\"\n"), 0o644))

	rules, err := NewRuleService(rulesPath, testLogger())
	require.NoError(t, err)

	svc := NewAnalysisService(
		NewNormalizerService(),
		NewCategorizerService(writeTestModel(t), testLogger()),
		NewAnomalyService(DefaultZThreshold, testLogger()),
		NewInsightService("€", testLogger()),
		rules,
		testLogger(),
	)

	result, err := svc.Analyze(context.Background(), []models.TransactionRecord{
		{
			TransactionID:  "t1",
			Timestamp:      mustTime(t, "2024-03-04 09:00:00"),
			Amount:         80,
			Merchant:       "energy co",
			RawDescription: "DIRECT DEBIT STARBUCKS COFFEE CLUB",
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.CategoryBills, result.Transactions[0].Category,
		"rule override wins over the model prediction")
	assert.Equal(t, models.CategoryFood, result.Transactions[0].PredictedCategory)
}
