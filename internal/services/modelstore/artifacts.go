// Package modelstore loads the trained eligibility classifier, the EMI
// regressor and the label encoder from JSON artifacts.
package modelstore

import (
	"errors"
	"fmt"
	"math"

	"emi-eligibility-engine/internal/features"
)

const (
	TypeLinearClassifier = "linear_classifier"
	TypeLinearRegressor  = "linear_regressor"
)

var (
	// ErrFeatureMismatch is returned by Predict when the vector does not fit the model.
	ErrFeatureMismatch = errors.New("feature vector does not match model")
	// ErrInvalidArtifact is returned when an artifact is malformed.
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrUnknownClass is returned by InverseTransform for codes the encoder never saw.
	ErrUnknownClass = errors.New("unknown class code")
)

// LinearClassifier is a multiclass linear model over numeric and one-hot
// encoded categorical features. The predicted class is the highest score.
type LinearClassifier struct {
	Type           string                          `json:"type"`
	FeatureNamesIn []string                        `json:"feature_names_in"`
	Intercepts     []float64                       `json:"intercepts"`
	Coefficients   map[string][]float64            `json:"coefficients"`
	Categories     map[string]map[string][]float64 `json:"categories"`
}

// NumClasses returns the number of classes the model scores.
func (c *LinearClassifier) NumClasses() int {
	return len(c.Intercepts)
}

// FeatureNames returns the columns the model was trained on, in order.
func (c *LinearClassifier) FeatureNames() []string {
	out := make([]string, len(c.FeatureNamesIn))
	copy(out, c.FeatureNamesIn)
	return out
}

// Validate checks the artifact shape.
func (c *LinearClassifier) Validate() error {
	if c.Type != TypeLinearClassifier {
		return fmt.Errorf("%w: type %q, want %q", ErrInvalidArtifact, c.Type, TypeLinearClassifier)
	}
	k := len(c.Intercepts)
	if k < 2 {
		return fmt.Errorf("%w: classifier needs at least 2 classes, got %d", ErrInvalidArtifact, k)
	}
	known, err := featureSet(c.FeatureNamesIn)
	if err != nil {
		return err
	}
	for name, w := range c.Coefficients {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: coefficient for unlisted feature %q", ErrInvalidArtifact, name)
		}
		if len(w) != k {
			return fmt.Errorf("%w: feature %q has %d coefficients, want %d", ErrInvalidArtifact, name, len(w), k)
		}
	}
	for name, levels := range c.Categories {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: categories for unlisted feature %q", ErrInvalidArtifact, name)
		}
		if _, dup := c.Coefficients[name]; dup {
			return fmt.Errorf("%w: feature %q is both numeric and categorical", ErrInvalidArtifact, name)
		}
		for level, w := range levels {
			if len(w) != k {
				return fmt.Errorf("%w: %s=%q has %d weights, want %d", ErrInvalidArtifact, name, level, len(w), k)
			}
		}
	}
	return nil
}

// Predict returns the encoded class with the highest score. Ties go to the lower code.
func (c *LinearClassifier) Predict(vec *features.Vector) (int, error) {
	scores := make([]float64, len(c.Intercepts))
	copy(scores, c.Intercepts)

	for _, name := range c.FeatureNamesIn {
		val, ok := vec.Get(name)
		if !ok {
			return 0, fmt.Errorf("%w: missing feature %q", ErrFeatureMismatch, name)
		}

		if w, numeric := c.Coefficients[name]; numeric {
			x, err := numericInput(name, val)
			if err != nil {
				return 0, err
			}
			for i := range scores {
				scores[i] += w[i] * x
			}
			continue
		}

		if levels, categorical := c.Categories[name]; categorical {
			level, err := categoricalInput(name, val)
			if err != nil {
				return 0, err
			}
			for i, w := range levels[level] {
				scores[i] += w
			}
		}
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, nil
}

// LinearRegressor predicts the maximum monthly EMI.
type LinearRegressor struct {
	Type           string                        `json:"type"`
	FeatureNamesIn []string                      `json:"feature_names_in"`
	Intercept      float64                       `json:"intercept"`
	Coefficients   map[string]float64            `json:"coefficients"`
	Categories     map[string]map[string]float64 `json:"categories"`
}

// FeatureNames returns the columns the model was trained on, in order.
func (r *LinearRegressor) FeatureNames() []string {
	out := make([]string, len(r.FeatureNamesIn))
	copy(out, r.FeatureNamesIn)
	return out
}

// Validate checks the artifact shape.
func (r *LinearRegressor) Validate() error {
	if r.Type != TypeLinearRegressor {
		return fmt.Errorf("%w: type %q, want %q", ErrInvalidArtifact, r.Type, TypeLinearRegressor)
	}
	known, err := featureSet(r.FeatureNamesIn)
	if err != nil {
		return err
	}
	for name := range r.Coefficients {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: coefficient for unlisted feature %q", ErrInvalidArtifact, name)
		}
	}
	for name := range r.Categories {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: categories for unlisted feature %q", ErrInvalidArtifact, name)
		}
		if _, dup := r.Coefficients[name]; dup {
			return fmt.Errorf("%w: feature %q is both numeric and categorical", ErrInvalidArtifact, name)
		}
	}
	return nil
}

// Predict returns the raw EMI estimate.
func (r *LinearRegressor) Predict(vec *features.Vector) (float64, error) {
	y := r.Intercept

	for _, name := range r.FeatureNamesIn {
		val, ok := vec.Get(name)
		if !ok {
			return 0, fmt.Errorf("%w: missing feature %q", ErrFeatureMismatch, name)
		}

		if w, numeric := r.Coefficients[name]; numeric {
			x, err := numericInput(name, val)
			if err != nil {
				return 0, err
			}
			y += w * x
			continue
		}

		if levels, categorical := r.Categories[name]; categorical {
			level, err := categoricalInput(name, val)
			if err != nil {
				return 0, err
			}
			y += levels[level]
		}
	}

	return y, nil
}

// LabelEncoder maps class codes to eligibility labels.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Validate checks the encoder has unique, non-empty classes.
func (l *LabelEncoder) Validate() error {
	if len(l.Classes) == 0 {
		return fmt.Errorf("%w: label encoder has no classes", ErrInvalidArtifact)
	}
	seen := make(map[string]struct{}, len(l.Classes))
	for _, c := range l.Classes {
		if c == "" {
			return fmt.Errorf("%w: empty class label", ErrInvalidArtifact)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate class label %q", ErrInvalidArtifact, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// InverseTransform returns the label for code.
func (l *LabelEncoder) InverseTransform(code int) (string, error) {
	if code < 0 || code >= len(l.Classes) {
		return "", fmt.Errorf("%w: %d (encoder has %d classes)", ErrUnknownClass, code, len(l.Classes))
	}
	return l.Classes[code], nil
}

func featureSet(names []string) (map[string]struct{}, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: feature_names_in is empty", ErrInvalidArtifact)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: empty feature name", ErrInvalidArtifact)
		}
		if _, dup := set[n]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrInvalidArtifact, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

func numericInput(name string, val features.Value) (float64, error) {
	x, ok := val.Float()
	if !ok {
		return 0, fmt.Errorf("%w: feature %q expects a number, got %q", ErrFeatureMismatch, name, val.String())
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: feature %q is not finite", ErrFeatureMismatch, name)
	}
	return x, nil
}

func categoricalInput(name string, val features.Value) (string, error) {
	s, ok := val.Text()
	if !ok {
		return "", fmt.Errorf("%w: feature %q expects a category, got %s", ErrFeatureMismatch, name, val.String())
	}
	return s, nil
}
