package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// CSVLoader turns exported transaction CSVs into pipeline batches. This is
// the external-collaborator shim for the CLI; the pipeline core never
// parses CSV itself.
//
// Required columns: amount, merchant, is_credit and one of
// timestamp/transaction_date. Optional columns (transaction_id, currency,
// description, category, is_weekend, is_night and the anomaly flags) are
// honored when present; absent optional fields default to zero values and
// time features are derived from the timestamp.
type CSVLoader struct {
	logger *zap.Logger
}

func NewCSVLoader(logger *zap.Logger) *CSVLoader {
	return &CSVLoader{logger: logger}
}

func (l *CSVLoader) LoadFile(path string) ([]models.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()
	return l.Load(f)
}

func (l *CSVLoader) Load(r io.Reader) ([]models.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.TransactionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"amount", "merchant", "is_credit"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv is missing required column %q", required)
		}
	}
	if _, hasTS := columns["timestamp"]; !hasTS {
		if _, hasDate := columns["transaction_date"]; !hasDate {
			return nil, fmt.Errorf("csv is missing required column %q", "timestamp")
		}
	}

	var batch []models.TransactionRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		line++

		record, err := l.parseRow(columns, row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		batch = append(batch, record)
	}

	l.logger.Info("csv batch loaded", zap.Int("transactions", len(batch)))
	return batch, nil
}

func (l *CSVLoader) parseRow(columns map[string]int, row []string) (models.TransactionRecord, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var record models.TransactionRecord

	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return record, fmt.Errorf("invalid amount %q", field("amount"))
	}
	record.Amount = amount

	isCredit, err := strconv.ParseBool(field("is_credit"))
	if err != nil {
		return record, fmt.Errorf("invalid is_credit %q", field("is_credit"))
	}
	record.IsCredit = isCredit

	timestamp, err := parseTimestamp(field("timestamp"), field("transaction_date"))
	if err != nil {
		return record, err
	}
	record.Timestamp = timestamp

	record.Merchant = strings.ToLower(field("merchant"))
	record.RawDescription = field("description")
	record.Currency = field("currency")
	record.Category = models.TransactionCategory(field("category"))

	record.TransactionID = field("transaction_id")
	if record.TransactionID == "" {
		record.TransactionID = uuid.NewString()
	}

	record.HourOfDay = timestamp.Hour()
	record.DayOfWeek = (int(timestamp.Weekday()) + 6) % 7 // Monday=0
	record.IsWeekend = record.DayOfWeek >= 5
	record.IsNight = record.HourOfDay <= 5
	if v := field("is_weekend"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			record.IsWeekend = b
		}
	}
	if v := field("is_night"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			record.IsNight = b
		}
	}

	// Pre-existing anomaly flags are honored; the detector only adds to them.
	record.IsAmountAnomaly = parseOptionalBool(field("is_amount_anomaly"))
	record.IsFrequencyAnomaly = parseOptionalBool(field("is_frequency_anomaly"))
	record.IsMerchantAnomaly = parseOptionalBool(field("is_merchant_anomaly"))

	return record, nil
}

func parseTimestamp(timestamp, transactionDate string) (time.Time, error) {
	value := timestamp
	if value == "" {
		value = transactionDate
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func parseOptionalBool(value string) bool {
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	return err == nil && b
}
