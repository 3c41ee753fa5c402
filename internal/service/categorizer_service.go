package service

import (
	"os"
	"strings"
	"sync"
	"time"

	"spendlens/internal/models"

	"github.com/jbrukh/bayesian"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrModelNotFound means the model artifact path does not exist.
	ErrModelNotFound = errors.New("categorizer model artifact not found")
	// ErrModelLoad means the artifact exists but could not be deserialized
	// or is structurally unusable.
	ErrModelLoad = errors.New("categorizer model artifact could not be loaded")
)

type modelLoader func(path string) (*bayesian.Classifier, error)

// CategorizerService wraps a pretrained TF-IDF naive Bayes artifact. The
// artifact is loaded at most once per instance: the first Predict call pays
// the load latency, later calls share the cached classifier, and a new model
// version requires a process restart.
type CategorizerService struct {
	modelPath string
	logger    *zap.Logger
	loader    modelLoader

	once    sync.Once
	cl      *bayesian.Classifier
	loadErr error
}

func NewCategorizerService(modelPath string, logger *zap.Logger) *CategorizerService {
	return &CategorizerService{
		modelPath: modelPath,
		logger:    logger,
		loader:    loadClassifier,
	}
}

// ModelInfo reports artifact metadata, loading the model if needed.
type ModelInfo struct {
	ModelType string   `json:"model_type"`
	Labels    []string `json:"labels"`
	ModelPath string   `json:"model_path"`
}

// Predict scores each normalized description and returns, aligned to input
// order, the predicted category, its confidence (the maximum class
// probability) and the full class-probability distribution. An empty input
// returns an empty result without touching the model.
func (s *CategorizerService) Predict(descriptions []string) ([]models.Prediction, error) {
	if len(descriptions) == 0 {
		return []models.Prediction{}, nil
	}

	cl, err := s.classifier()
	if err != nil {
		return nil, err
	}

	predictions := make([]models.Prediction, 0, len(descriptions))
	for _, desc := range descriptions {
		terms := strings.Fields(desc)
		scores, best, _ := cl.ProbScores(terms)

		probabilities := make(map[string]float64, len(cl.Classes))
		for i, class := range cl.Classes {
			probabilities[string(class)] = scores[i]
		}

		predictions = append(predictions, models.Prediction{
			Category:      models.TransactionCategory(cl.Classes[best]),
			Confidence:    scores[best],
			Probabilities: probabilities,
		})
	}

	return predictions, nil
}

func (s *CategorizerService) ModelInfo() (ModelInfo, error) {
	cl, err := s.classifier()
	if err != nil {
		return ModelInfo{}, err
	}

	labels := make([]string, 0, len(cl.Classes))
	for _, class := range cl.Classes {
		labels = append(labels, string(class))
	}

	return ModelInfo{
		ModelType: "TF-IDF naive Bayes",
		Labels:    labels,
		ModelPath: s.modelPath,
	}, nil
}

func (s *CategorizerService) classifier() (*bayesian.Classifier, error) {
	s.once.Do(func() {
		start := time.Now()
		s.cl, s.loadErr = s.loader(s.modelPath)
		if s.loadErr != nil {
			s.logger.Error("failed to load categorizer model",
				zap.String("path", s.modelPath),
				zap.Error(s.loadErr),
			)
			return
		}
		s.logger.Info("categorizer model loaded",
			zap.String("path", s.modelPath),
			zap.Int("classes", len(s.cl.Classes)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	return s.cl, s.loadErr
}

func loadClassifier(path string) (*bayesian.Classifier, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrModelNotFound, "stat %s", path)
		}
		return nil, errors.Wrapf(ErrModelLoad, "stat %s: %v", path, err)
	}

	cl, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "decode %s: %v", path, err)
	}
	if len(cl.Classes) < 2 {
		return nil, errors.Wrapf(ErrModelLoad, "artifact %s carries %d classes, need at least 2", path, len(cl.Classes))
	}
	return cl, nil
}
