package models

// AffordabilityBand is the salary-derived EMI range considered safe.
type AffordabilityBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether amount lies inside the band, bounds included.
func (b AffordabilityBand) Contains(amount float64) bool {
	return amount >= b.Min && amount <= b.Max
}

// CorrectionDirection describes how the business rule moved the model estimate.
type CorrectionDirection string

const (
	CorrectionNone CorrectionDirection = "none"
	CorrectionUp   CorrectionDirection = "up"
	CorrectionDown CorrectionDirection = "down"
)

// PredictionResult is the fused output of the classifier, the regressor and the affordability rule.
type PredictionResult struct {
	EligibilityLabel string            `json:"eligibility_label"`
	PredictedMaxEMI  float64           `json:"predicted_max_emi"`
	Band             AffordabilityBand `json:"affordability_band"`
	CorrectedEMI     float64           `json:"corrected_emi"`
}

// Correction reports whether the corrected EMI was pulled up, pushed down or left alone.
func (r *PredictionResult) Correction() CorrectionDirection {
	switch {
	case r.CorrectedEMI > r.PredictedMaxEMI:
		return CorrectionUp
	case r.CorrectedEMI < r.PredictedMaxEMI:
		return CorrectionDown
	default:
		return CorrectionNone
	}
}

// Tier is the presentation severity of an eligibility label.
type Tier string

const (
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

// Outcome pairs a tier with the advisory message shown to the user.
type Outcome struct {
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}
