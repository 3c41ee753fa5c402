package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jbrukh/bayesian"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return ts
}

// writeTestModel fits a tiny two-class artifact and writes it to a temp file.
func writeTestModel(t *testing.T) string {
	t.Helper()

	cl := bayesian.NewClassifierTfIdf(bayesian.Class("Food"), bayesian.Class("Transport"))
	cl.Learn([]string{"starbucks", "coffee"}, "Food")
	cl.Learn([]string{"pret", "manger", "lunch"}, "Food")
	cl.Learn([]string{"lidl", "groceries"}, "Food")
	cl.Learn([]string{"uber", "trip"}, "Transport")
	cl.Learn([]string{"shell", "fuel"}, "Transport")
	cl.Learn([]string{"tfl", "travel"}, "Transport")
	cl.ConvertTermsFreqToTfIdf()

	path := filepath.Join(t.TempDir(), "categorizer.gob")
	require.NoError(t, cl.WriteToFile(path))
	return path
}
