package service

import (
	"fmt"
	"sort"

	"spendlens/internal/models"

	"go.uber.org/zap"
)

const (
	topCategoryInsights = 3
	topMerchantInsights = 3
	maxAmountAlerts     = 3
	maxFrequencyAlerts  = 2

	// Weekend averages must exceed weekday averages by this factor before
	// a trend insight is emitted.
	weekendSpikeFactor = 1.2

	// Night-pattern insights need more than this many night transactions.
	nightPatternMinimum = 5

	defaultCurrencySymbol = "€"
)

// InsightService turns an annotated batch into ranked natural-language
// insights and an aggregate spending summary. Deterministic and stateless:
// groups are accumulated in first-seen order and top-N ranking is a stable
// descending sort, so ties keep their grouping order.
type InsightService struct {
	currency string
	logger   *zap.Logger
}

func NewInsightService(currencySymbol string, logger *zap.Logger) *InsightService {
	if currencySymbol == "" {
		currencySymbol = defaultCurrencySymbol
	}
	return &InsightService{currency: currencySymbol, logger: logger}
}

// GenerateInsights concatenates four independently computed groups: category
// spending, top merchants, anomaly alerts and time patterns. An empty batch
// yields an empty result, never an error.
func (s *InsightService) GenerateInsights(batch []models.TransactionRecord) []models.Insight {
	if len(batch) == 0 {
		return []models.Insight{}
	}

	insights := []models.Insight{}
	insights = append(insights, s.categorySpendingInsights(batch)...)
	insights = append(insights, s.topMerchantInsights(batch)...)
	insights = append(insights, s.anomalyInsights(batch)...)
	insights = append(insights, s.timePatternInsights(batch)...)

	s.logger.Debug("insights generated",
		zap.Int("transactions", len(batch)),
		zap.Int("insights", len(insights)),
	)
	return insights
}

// SpendingSummary aggregates income, spending and the per-category debit
// breakdown. AvgTransaction is spending divided by the debit count, 0 when
// the batch has no debits.
func (s *InsightService) SpendingSummary(batch []models.TransactionRecord) models.SpendingSummary {
	summary := models.SpendingSummary{
		NumTransactions:   len(batch),
		CategoryBreakdown: make(map[models.TransactionCategory]float64),
	}

	var debitCount int
	for _, t := range batch {
		if t.IsCredit {
			summary.TotalIncome += t.Amount
			continue
		}
		summary.TotalSpending += t.Amount
		summary.CategoryBreakdown[t.Category] += t.Amount
		debitCount++
	}

	summary.Net = summary.TotalIncome - summary.TotalSpending
	if debitCount > 0 {
		summary.AvgTransaction = summary.TotalSpending / float64(debitCount)
	}
	return summary
}

type spendAggregate struct {
	sum   float64
	count int
}

func (s *InsightService) categorySpendingInsights(batch []models.TransactionRecord) []models.Insight {
	var order []models.TransactionCategory
	groups := make(map[models.TransactionCategory]*spendAggregate)
	var totalSpent float64

	for _, t := range batch {
		if t.IsCredit {
			continue
		}
		agg, ok := groups[t.Category]
		if !ok {
			agg = &spendAggregate{}
			groups[t.Category] = agg
			order = append(order, t.Category)
		}
		agg.sum += t.Amount
		agg.count++
		totalSpent += t.Amount
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].sum > groups[order[j]].sum
	})

	insights := make([]models.Insight, 0, topCategoryInsights)
	for _, category := range order[:min(topCategoryInsights, len(order))] {
		agg := groups[category]
		mean := agg.sum / float64(agg.count)
		var pct float64
		if totalSpent > 0 {
			pct = agg.sum / totalSpent * 100
		}
		insights = append(insights, models.Insight{
			Type:  models.InsightSpendingSummary,
			Title: fmt.Sprintf("%s Spending", category),
			Description: fmt.Sprintf(
				"You spent %s%.2f on %s (%.0f%% of total spending) across %d transactions. Average: %s%.2f per transaction.",
				s.currency, agg.sum, category, pct, agg.count, s.currency, mean,
			),
			Category: category,
			Amount:   agg.sum,
			Count:    agg.count,
		})
	}
	return insights
}

func (s *InsightService) topMerchantInsights(batch []models.TransactionRecord) []models.Insight {
	var order []string
	groups := make(map[string]*spendAggregate)

	for _, t := range batch {
		if t.IsCredit {
			continue
		}
		agg, ok := groups[t.Merchant]
		if !ok {
			agg = &spendAggregate{}
			groups[t.Merchant] = agg
			order = append(order, t.Merchant)
		}
		agg.sum += t.Amount
		agg.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].sum > groups[order[j]].sum
	})

	insights := make([]models.Insight, 0, topMerchantInsights)
	for _, merchant := range order[:min(topMerchantInsights, len(order))] {
		agg := groups[merchant]
		insights = append(insights, models.Insight{
			Type:  models.InsightTopMerchant,
			Title: fmt.Sprintf("Top Merchant: %s", titleCase(merchant)),
			Description: fmt.Sprintf(
				"You spent %s%.2f at %s across %d visits. Average: %s%.2f per visit.",
				s.currency, agg.sum, titleCase(merchant), agg.count, s.currency, agg.sum/float64(agg.count),
			),
			Merchant: merchant,
			Amount:   agg.sum,
			Count:    agg.count,
		})
	}
	return insights
}

func (s *InsightService) anomalyInsights(batch []models.TransactionRecord) []models.Insight {
	var insights []models.Insight

	// One high-severity alert per amount-anomalous transaction, batch order.
	var amountAlerts int
	for _, t := range batch {
		if !t.IsAmountAnomaly || amountAlerts >= maxAmountAlerts {
			continue
		}
		insights = append(insights, models.Insight{
			Type:  models.InsightAnomalyAlert,
			Title: "Unusual Amount Detected",
			Description: fmt.Sprintf(
				"Transaction of %s%.2f at %s is significantly higher than your typical %s spending.",
				s.currency, t.Amount, titleCase(t.Merchant), t.Category,
			),
			Severity:      models.SeverityHigh,
			Merchant:      t.Merchant,
			Amount:        t.Amount,
			Category:      t.Category,
			TransactionID: t.TransactionID,
		})
		amountAlerts++
	}

	// Medium-severity alerts aggregate frequency anomalies by merchant.
	var merchantOrder []string
	repeats := make(map[string]int)
	for _, t := range batch {
		if !t.IsFrequencyAnomaly {
			continue
		}
		if _, ok := repeats[t.Merchant]; !ok {
			merchantOrder = append(merchantOrder, t.Merchant)
		}
		repeats[t.Merchant]++
	}
	for _, merchant := range merchantOrder[:min(maxFrequencyAlerts, len(merchantOrder))] {
		insights = append(insights, models.Insight{
			Type:  models.InsightAnomalyAlert,
			Title: "Repeated Charges Detected",
			Description: fmt.Sprintf(
				"Multiple charges (%d) from %s detected. Please verify these are not duplicates.",
				repeats[merchant], titleCase(merchant),
			),
			Severity: models.SeverityMedium,
			Merchant: merchant,
			Count:    repeats[merchant],
		})
	}

	return insights
}

// timePatternInsights deliberately sums all transactions, credits included,
// for both buckets; spending direction is not separated here.
func (s *InsightService) timePatternInsights(batch []models.TransactionRecord) []models.Insight {
	var insights []models.Insight

	var weekendTotal, weekdayTotal float64
	weekendDays := make(map[string]struct{})
	weekdayDays := make(map[string]struct{})
	for i := range batch {
		t := &batch[i]
		if t.IsWeekend {
			weekendTotal += t.Amount
			weekendDays[t.TransactionDate()] = struct{}{}
		} else {
			weekdayTotal += t.Amount
			weekdayDays[t.TransactionDate()] = struct{}{}
		}
	}

	if len(weekendDays) > 0 && len(weekdayDays) > 0 {
		weekendAvg := weekendTotal / float64(len(weekendDays))
		weekdayAvg := weekdayTotal / float64(len(weekdayDays))
		if weekendAvg > weekdayAvg*weekendSpikeFactor {
			pctMore := (weekendAvg/weekdayAvg - 1) * 100
			insights = append(insights, models.Insight{
				Type:  models.InsightTrend,
				Title: "Weekend Spending Pattern",
				Description: fmt.Sprintf(
					"You spend %.0f%% more on weekends (%s%.2f/day) compared to weekdays (%s%.2f/day).",
					pctMore, s.currency, weekendAvg, s.currency, weekdayAvg,
				),
			})
		}
	}

	var nightCount int
	var nightTotal float64
	for _, t := range batch {
		if t.IsNight {
			nightCount++
			nightTotal += t.Amount
		}
	}
	if nightCount > nightPatternMinimum {
		insights = append(insights, models.Insight{
			Type:  models.InsightTrend,
			Title: "Late-Night Transactions",
			Description: fmt.Sprintf(
				"You made %d transactions late at night (12am-6am), totaling %s%.2f. Consider reviewing these for accuracy.",
				nightCount, s.currency, nightTotal,
			),
			Count:  nightCount,
			Amount: nightTotal,
		})
	}

	return insights
}
