package service

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"spendlens/internal/models"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

// RuleService applies user-maintained category overrides before anomaly
// detection. The rules file maps a category to a list of regular expressions
// over the raw description:
//
//	Bills:
//	  - ^DIRECT DEBIT
//	Food:
//	  - ^STARBUCKS
//
// A missing file is a no-op rule set. Categories are matched in alphabetical
// order and the first match wins.
type RuleService struct {
	categories []models.TransactionCategory
	patterns   map[models.TransactionCategory][]*regexp.Regexp
	logger     *zap.Logger
}

func NewRuleService(path string, logger *zap.Logger) (*RuleService, error) {
	s := &RuleService{
		patterns: make(map[models.TransactionCategory][]*regexp.Regexp),
		logger:   logger,
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for category, expressions := range raw {
		compiled := make([]*regexp.Regexp, 0, len(expressions))
		for _, expression := range expressions {
			re, err := regexp.Compile(expression)
			if err != nil {
				return nil, fmt.Errorf("failed to compile rule %q for %s: %w", expression, category, err)
			}
			compiled = append(compiled, re)
		}
		s.categories = append(s.categories, models.TransactionCategory(category))
		s.patterns[models.TransactionCategory(category)] = compiled
	}
	sort.Slice(s.categories, func(i, j int) bool { return s.categories[i] < s.categories[j] })

	logger.Info("category rules loaded",
		zap.String("path", path),
		zap.Int("categories", len(s.categories)),
	)
	return s, nil
}

// Empty reports whether any rules were loaded.
func (s *RuleService) Empty() bool {
	return len(s.categories) == 0
}

// Apply overrides the category of every transaction whose raw description
// matches a rule. Returns the number of overridden transactions.
func (s *RuleService) Apply(batch []models.TransactionRecord) int {
	if s.Empty() {
		return 0
	}

	var overridden int
	for i := range batch {
		for _, category := range s.categories {
			var matched bool
			for _, re := range s.patterns[category] {
				if re.MatchString(batch[i].RawDescription) {
					batch[i].Category = category
					overridden++
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return overridden
}
