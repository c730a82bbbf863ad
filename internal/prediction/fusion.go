package prediction

import (
	"fmt"
	"math"

	"emi-eligibility-engine/internal/features"
	"emi-eligibility-engine/internal/models"
)

// Share of monthly salary that bounds a safe EMI.
const (
	MinEMIShare = 0.3
	MaxEMIShare = 0.5
)

// AffordabilityBandFor returns the EMI range a salary can carry.
func AffordabilityBandFor(salary float64) models.AffordabilityBand {
	return models.AffordabilityBand{
		Min: MinEMIShare * salary,
		Max: MaxEMIShare * salary,
	}
}

// CorrectEMI clamps a model estimate into the band.
func CorrectEMI(raw float64, band models.AffordabilityBand) float64 {
	return math.Max(band.Min, math.Min(raw, band.Max))
}

// Fuse runs both models on vec and applies the affordability rule for salary.
// Every model or decoder failure comes back as a *models.PredictionError.
func (e *Engine) Fuse(vec *features.Vector, salary float64) (*models.PredictionResult, error) {
	code, err := e.classifier.Predict(vec)
	if err != nil {
		return nil, models.NewPredictionError(models.StageClassifier, err)
	}

	label, err := e.decoder.InverseTransform(code)
	if err != nil {
		return nil, models.NewPredictionError(models.StageDecoder, err)
	}

	raw, err := e.regressor.Predict(vec)
	if err != nil {
		return nil, models.NewPredictionError(models.StageRegressor, err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil, models.NewPredictionError(models.StageRegressor, fmt.Errorf("non-finite estimate %v", raw))
	}

	band := AffordabilityBandFor(salary)

	return &models.PredictionResult{
		EligibilityLabel: label,
		PredictedMaxEMI:  raw,
		Band:             band,
		CorrectedEMI:     CorrectEMI(raw, band),
	}, nil
}
