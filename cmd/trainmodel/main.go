// Command trainmodel fits the categorizer artifact from a labeled CSV of
// transactions. It is the offline batch process backing the pipeline; the
// pipeline itself only ever loads the resulting artifact.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spendlens/internal/service"
	"spendlens/pkg/logger"

	"github.com/jbrukh/bayesian"
	"go.uber.org/zap"
)

var (
	csvFile = flag.String("csv", "", "Labeled CSV with description and category columns.")
	outFile = flag.String("out", "models/categorizer.gob", "Where to write the model artifact.")
)

func main() {
	flag.Parse()

	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if *csvFile == "" {
		fmt.Println("Usage: trainmodel -csv labeled.csv [-out models/categorizer.gob]")
		os.Exit(1)
	}

	if err := train(*csvFile, *outFile, appLogger); err != nil {
		appLogger.Fatal("Training failed", zap.Error(err))
	}
}

func train(csvPath, outPath string, appLogger *zap.Logger) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open training csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read csv header: %w", err)
	}
	descCol, catCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "clean_description", "description":
			if descCol < 0 {
				descCol = i
			}
		case "category":
			catCol = i
		}
	}
	if descCol < 0 || catCol < 0 {
		return fmt.Errorf("training csv needs description and category columns")
	}

	normalizer := service.NewNormalizerService()

	type example struct {
		terms []string
		class bayesian.Class
	}
	var examples []example
	classSet := make(map[bayesian.Class]bool)
	var classes []bayesian.Class

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read csv row: %w", err)
		}
		if descCol >= len(row) || catCol >= len(row) {
			continue
		}

		terms := strings.Fields(normalizer.Normalize(row[descCol]))
		class := bayesian.Class(strings.TrimSpace(row[catCol]))
		if len(terms) == 0 || class == "" {
			continue
		}
		if !classSet[class] {
			classSet[class] = true
			classes = append(classes, class)
		}
		examples = append(examples, example{terms: terms, class: class})
	}

	if len(classes) < 2 {
		return fmt.Errorf("need at least 2 categories to train, found %d", len(classes))
	}

	cl := bayesian.NewClassifierTfIdf(classes...)
	for _, ex := range examples {
		cl.Learn(ex.terms, ex.class)
	}
	cl.ConvertTermsFreqToTfIdf()

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := cl.WriteToFile(outPath); err != nil {
		return fmt.Errorf("failed to write model artifact: %w", err)
	}

	appLogger.Info("model artifact written",
		zap.String("path", outPath),
		zap.Int("examples", len(examples)),
		zap.Int("classes", len(classes)),
	)
	return nil
}
