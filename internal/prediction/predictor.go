// Package prediction fuses classifier and regressor outputs with the
// salary-based affordability rule and maps labels to user-facing outcomes.
package prediction

import "emi-eligibility-engine/internal/features"

// Classifier predicts an encoded eligibility class for a feature vector.
type Classifier interface {
	Predict(vec *features.Vector) (int, error)
}

// Regressor predicts the maximum monthly EMI for a feature vector.
type Regressor interface {
	Predict(vec *features.Vector) (float64, error)
}

// LabelDecoder maps an encoded class back to its label.
type LabelDecoder interface {
	InverseTransform(code int) (string, error)
}

// FeatureNamer is implemented by models that know the columns they were trained on.
type FeatureNamer interface {
	FeatureNames() []string
}
