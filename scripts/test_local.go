package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"emi-eligibility-engine/internal/features"
	"emi-eligibility-engine/internal/prediction"
	"emi-eligibility-engine/internal/services/modelstore"
	"emi-eligibility-engine/internal/utils"
)

func main() {
	fmt.Println("=== EMI Eligibility Engine - Local Test ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}
	_ = utils.InitLogger("warn")
	defer utils.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "./artifacts"
	}

	bundle, err := modelstore.Load(ctx, modelstore.NewFileSource(modelDir), modelstore.ArtifactNames{
		Classifier:   "emi_eligibility_classifier.json",
		Regressor:    "max_emi_regressor.json",
		LabelEncoder: "emi_eligibility_label_encoder.json",
	})
	if err != nil {
		fmt.Printf("❌ Failed to load model artifacts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded artifacts from %s (classes: %v)\n", bundle.Source, bundle.Classes())

	engine, err := prediction.NewEngine(bundle.Classifier, bundle.Regressor, bundle.LabelEncoder,
		prediction.WithLogger(utils.GetLogger()))
	if err != nil {
		fmt.Printf("❌ Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	// Parse sample CSV
	fmt.Println()
	fmt.Println("📖 Parsing sample CSV...")

	csvContent, err := os.ReadFile("data/sample_applicants.csv")
	if err != nil {
		fmt.Printf("❌ Failed to read CSV: %v\n", err)
		os.Exit(1)
	}

	rows, errors := utils.NewCSVParser(0).ParseApplicants(string(csvContent))
	for _, e := range errors {
		fmt.Printf("⚠️  %v\n", e)
	}
	fmt.Printf("✅ Parsed %d applicants from CSV\n", len(rows))

	fmt.Println()
	fmt.Printf("%-6s %-14s %-8s %12s %12s %12s %12s\n", "LINE", "LABEL", "TIER", "MODEL_EMI", "BAND_MIN", "BAND_MAX", "FINAL_EMI")
	for _, row := range rows {
		a, err := engine.Assess(row.Input)
		if err != nil {
			fmt.Printf("%-6d ❌ %v\n", row.Line, err)
			continue
		}
		r := a.Result
		fmt.Printf("%-6d %-14s %-8s %12.2f %12.2f %12.2f %12.2f\n",
			row.Line, r.EligibilityLabel, a.Outcome.Tier, r.PredictedMaxEMI, r.Band.Min, r.Band.Max, r.CorrectedEMI)
		for _, d := range a.Diagnostics {
			if d.Kind == features.DiagFieldDropped {
				continue
			}
			fmt.Printf("       ↳ %s: %s (%s)\n", d.Field, d.Kind, d.Detail)
		}
	}

	fmt.Println()
	fmt.Println("=== Test Complete ===")
}
