package service

import (
	"math"
	"sort"
	"time"

	"spendlens/internal/models"

	"go.uber.org/zap"
)

const (
	// DefaultZThreshold is the z-score cutoff for amount anomalies.
	DefaultZThreshold = 3.0

	// Composite score weights. The achievable score set is exactly
	// {0, 0.3, 0.4, 0.6, 0.7, 1.0}.
	amountAnomalyWeight    = 0.4
	frequencyAnomalyWeight = 0.3
	merchantAnomalyWeight  = 0.3

	// More than this many charges to one merchant on one calendar date
	// flags the whole group.
	dailyMerchantLimit = 3

	// Minimum category group size for z-score evidence.
	minAmountGroup = 3

	duplicateWindow    = 24 * time.Hour
	duplicateTolerance = 0.01
)

// nightSensitiveCategories are unusual to transact in at night. Matches are
// written into IsMerchantAnomaly: the field historically reserved for
// merchant novelty carries this night-sensitive-category rule instead, and
// no genuine novelty check exists. Kept for compatibility with persisted
// scores; see DESIGN.md before reinterpreting the field.
var nightSensitiveCategories = []models.TransactionCategory{
	models.CategoryBills,
	models.CategoryHealthcare,
}

// AnomalyService computes three independent boolean anomaly flags and a
// composite score per transaction. Stateless apart from the tunable z-score
// threshold; every call runs over its full input.
type AnomalyService struct {
	zThreshold float64
	logger     *zap.Logger
}

func NewAnomalyService(zThreshold float64, logger *zap.Logger) *AnomalyService {
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	return &AnomalyService{zThreshold: zThreshold, logger: logger}
}

// DetectAnomalies returns a flag-annotated copy of the batch. Flags are
// monotonic within one invocation: pre-existing input flags are kept and
// nothing is ever cleared. An empty batch yields an empty result.
func (s *AnomalyService) DetectAnomalies(batch []models.TransactionRecord) []models.TransactionRecord {
	if len(batch) == 0 {
		return []models.TransactionRecord{}
	}

	annotated := make([]models.TransactionRecord, len(batch))
	copy(annotated, batch)

	s.flagAmountAnomalies(annotated)
	s.flagFrequencyAnomalies(annotated)
	s.flagNightSensitiveCategories(annotated)
	s.flagDuplicateCharges(annotated)

	var flagged int
	for i := range annotated {
		annotated[i].AnomalyScore = compositeScore(
			annotated[i].IsAmountAnomaly,
			annotated[i].IsFrequencyAnomaly,
			annotated[i].IsMerchantAnomaly,
		)
		if annotated[i].AnomalyScore > 0 {
			flagged++
		}
	}

	s.logger.Debug("anomaly detection finished",
		zap.Int("transactions", len(annotated)),
		zap.Int("flagged", flagged),
	)
	return annotated
}

// AnomalySummary runs detection and reports per-flag counts plus the overall
// anomaly rate. Detection is idempotent, so summarizing an already annotated
// batch yields the same numbers.
func (s *AnomalyService) AnomalySummary(batch []models.TransactionRecord) models.AnomalySummary {
	annotated := s.DetectAnomalies(batch)

	summary := models.AnomalySummary{TotalTransactions: len(annotated)}
	for _, t := range annotated {
		if t.IsAmountAnomaly {
			summary.AmountAnomalies++
		}
		if t.IsFrequencyAnomaly {
			summary.FrequencyAnomalies++
		}
		if t.IsMerchantAnomaly {
			summary.MerchantAnomalies++
		}
		if t.AnomalyScore > 0 {
			summary.TotalAnomalies++
		}
	}
	if summary.TotalTransactions > 0 {
		summary.AnomalyRate = float64(summary.TotalAnomalies) / float64(summary.TotalTransactions)
	}
	return summary
}

// flagAmountAnomalies flags amounts far from their category's typical value.
// Groups with fewer than minAmountGroup members or zero spread carry
// insufficient evidence and are skipped, not treated as "no anomaly".
func (s *AnomalyService) flagAmountAnomalies(batch []models.TransactionRecord) {
	groups := make(map[models.TransactionCategory][]int)
	for i := range batch {
		groups[batch[i].Category] = append(groups[batch[i].Category], i)
	}

	for _, members := range groups {
		if len(members) < minAmountGroup {
			continue
		}

		var sum float64
		for _, i := range members {
			sum += batch[i].Amount
		}
		mean := sum / float64(len(members))

		var variance float64
		for _, i := range members {
			d := batch[i].Amount - mean
			variance += d * d
		}
		variance /= float64(len(members))
		std := math.Sqrt(variance)
		if std == 0 {
			continue
		}

		for _, i := range members {
			if math.Abs(batch[i].Amount-mean)/std > s.zThreshold {
				batch[i].IsAmountAnomaly = true
			}
		}
	}
}

type dateMerchantKey struct {
	date     string
	merchant string
}

func (s *AnomalyService) flagFrequencyAnomalies(batch []models.TransactionRecord) {
	groups := make(map[dateMerchantKey][]int)
	for i := range batch {
		key := dateMerchantKey{batch[i].TransactionDate(), batch[i].Merchant}
		groups[key] = append(groups[key], i)
	}

	for _, members := range groups {
		if len(members) <= dailyMerchantLimit {
			continue
		}
		for _, i := range members {
			batch[i].IsFrequencyAnomaly = true
		}
	}
}

func (s *AnomalyService) flagNightSensitiveCategories(batch []models.TransactionRecord) {
	for i := range batch {
		if !batch[i].IsNight {
			continue
		}
		for _, category := range nightSensitiveCategories {
			if batch[i].Category == category {
				batch[i].IsMerchantAnomaly = true
				break
			}
		}
	}
}

// flagDuplicateCharges walks the batch in timestamp order and flags the later
// transaction of each adjacent pair with identical merchant and amount within
// the duplicate window. Contributes to the frequency flag.
func (s *AnomalyService) flagDuplicateCharges(batch []models.TransactionRecord) {
	order := make([]int, len(batch))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return batch[order[a]].Timestamp.Before(batch[order[b]].Timestamp)
	})

	for k := 0; k+1 < len(order); k++ {
		cur := &batch[order[k]]
		next := &batch[order[k+1]]
		if cur.Merchant != next.Merchant {
			continue
		}
		if math.Abs(cur.Amount-next.Amount) >= duplicateTolerance {
			continue
		}
		if next.Timestamp.Sub(cur.Timestamp) < duplicateWindow {
			next.IsFrequencyAnomaly = true
		}
	}
}

func compositeScore(amount, frequency, merchant bool) float64 {
	var score float64
	if amount {
		score += amountAnomalyWeight
	}
	if frequency {
		score += frequencyAnomalyWeight
	}
	if merchant {
		score += merchantAnomalyWeight
	}
	return score
}
