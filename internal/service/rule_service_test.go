package service

import (
	"os"
	"path/filepath"
	"testing"

	"spendlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRuleServiceMissingFileIsEmpty(t *testing.T) {
	svc, err := NewRuleService(filepath.Join(t.TempDir(), "nope.yaml"), testLogger())
	require.NoError(t, err)
	assert.True(t, svc.Empty())
	assert.Zero(t, svc.Apply([]models.TransactionRecord{{RawDescription: "anything"}}))

	svc, err = NewRuleService("", testLogger())
	require.NoError(t, err)
	assert.True(t, svc.Empty())
}

func TestRuleServiceApply(t *testing.T) {
	path := writeRules(t, `
Bills:
  - "^DIRECT DEBIT"
Food:
  - "^STARBUCKS"
  - "^PRET"
`)
	svc, err := NewRuleService(path, testLogger())
	require.NoError(t, err)
	require.False(t, svc.Empty())

	batch := []models.TransactionRecord{
		{TransactionID: "a", RawDescription: "DIRECT DEBIT ENERGY CO"},
		{TransactionID: "b", RawDescription: "PRET A MANGER LONDON"},
		{TransactionID: "c", RawDescription: "SOMETHING ELSE", Category: models.CategoryOther},
	}

	overridden := svc.Apply(batch)
	assert.Equal(t, 2, overridden)
	assert.Equal(t, models.CategoryBills, batch[0].Category)
	assert.Equal(t, models.CategoryFood, batch[1].Category)
	assert.Equal(t, models.CategoryOther, batch[2].Category, "unmatched transactions keep their category")
}

func TestRuleServiceInvalidPattern(t *testing.T) {
	path := writeRules(t, "Bills:\n  - \"([unclosed\"\n")
	_, err := NewRuleService(path, testLogger())
	require.Error(t, err)
}
