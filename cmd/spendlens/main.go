package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"spendlens/internal/ingest"
	"spendlens/internal/models"
	"spendlens/internal/service"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var (
	csvFile   = flag.String("csv", "", "CSV file containing the transaction batch to analyze.")
	modelPath = flag.String("model", "", "Categorizer model artifact. Overrides MODEL_PATH.")
	rulesFile = flag.String("rules", "", "Optional yaml file with category override rules. Overrides RULES_FILE.")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}
	if *rulesFile != "" {
		cfg.Rules.Path = *rulesFile
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()

	if *csvFile == "" {
		fmt.Println("Usage: spendlens -csv transactions.csv [-model path] [-rules path]")
		os.Exit(1)
	}

	// Explicit construction at process start; no ambient singletons.
	normalizer := service.NewNormalizerService()
	categorizer := service.NewCategorizerService(cfg.Model.Path, appLogger)
	anomalies := service.NewAnomalyService(cfg.Anomaly.ZThreshold, appLogger)
	insights := service.NewInsightService(cfg.Insight.CurrencySymbol, appLogger)

	rules, err := service.NewRuleService(cfg.Rules.Path, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load category rules", zap.Error(err))
	}

	analysis := service.NewAnalysisService(normalizer, categorizer, anomalies, insights, rules, appLogger)

	loader := ingest.NewCSVLoader(appLogger)
	batch, err := loader.LoadFile(*csvFile)
	if err != nil {
		appLogger.Fatal("Failed to load transaction batch", zap.Error(err))
	}

	if info, err := categorizer.ModelInfo(); err == nil {
		appLogger.Debug("categorizer ready", zap.Strings("labels", info.Labels))
	}

	result, err := analysis.Analyze(context.Background(), batch)
	if err != nil {
		appLogger.Fatal("Failed to analyze batch", zap.Error(err))
	}

	printReport(result.Summary, result.Insights, result.Anomalies, cfg.Insight.CurrencySymbol)
}

func printReport(summary models.SpendingSummary, insights []models.Insight, anomalies models.AnomalySummary, currency string) {
	header := color.New(color.Bold, color.FgCyan)
	header.Printf("\nSpending Summary (%d transactions)\n", summary.NumTransactions)
	fmt.Printf("  Income:   %s%.2f\n", currency, summary.TotalIncome)
	fmt.Printf("  Spending: %s%.2f\n", currency, summary.TotalSpending)
	fmt.Printf("  Net:      %s%.2f\n", currency, summary.Net)
	fmt.Printf("  Average:  %s%.2f per debit\n", currency, summary.AvgTransaction)

	if len(insights) > 0 {
		header.Println("\nInsights")
	}
	for _, insight := range insights {
		label := color.New(color.FgGreen)
		switch insight.Severity {
		case models.SeverityHigh:
			label = color.New(color.FgRed, color.Bold)
		case models.SeverityMedium:
			label = color.New(color.FgYellow)
		}
		label.Printf("  [%s] %s\n", insight.Type, insight.Title)
		fmt.Printf("      %s\n", insight.Description)
	}

	header.Println("\nAnomalies")
	fmt.Printf("  amount=%d frequency=%d merchant=%d total=%d rate=%.1f%%\n",
		anomalies.AmountAnomalies,
		anomalies.FrequencyAnomalies,
		anomalies.MerchantAnomalies,
		anomalies.TotalAnomalies,
		anomalies.AnomalyRate*100,
	)
}
