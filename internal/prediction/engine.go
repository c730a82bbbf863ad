package prediction

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"emi-eligibility-engine/internal/features"
	"emi-eligibility-engine/internal/metrics"
	"emi-eligibility-engine/internal/models"
)

// ErrMissingModel is returned by NewEngine when a model or the decoder is nil.
var ErrMissingModel = errors.New("classifier, regressor and label decoder are all required")

// Assessment is everything one prediction produces.
type Assessment struct {
	Result      *models.PredictionResult   `json:"result"`
	Outcome     models.Outcome             `json:"outcome"`
	Correction  models.CorrectionDirection `json:"correction"`
	Diagnostics []features.Diagnostic      `json:"diagnostics,omitempty"`
}

// Engine composes the vector builder, both models and the label decoder.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	builder    *features.Builder
	classifier Classifier
	regressor  Regressor
	decoder    LabelDecoder
	logger     *zap.Logger
}

type engineOptions struct {
	schema *features.Schema
	align  bool
	logger *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

// WithSchema overrides the default feature schema.
func WithSchema(s *features.Schema) EngineOption {
	return func(o *engineOptions) { o.schema = s }
}

// WithModelAlignment orders vector columns by the classifier's feature names
// when the classifier exposes them. Enabled by default.
func WithModelAlignment(enabled bool) EngineOption {
	return func(o *engineOptions) { o.align = enabled }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = l }
}

// NewEngine creates an engine over the given models.
func NewEngine(clf Classifier, reg Regressor, dec LabelDecoder, opts ...EngineOption) (*Engine, error) {
	if clf == nil || reg == nil || dec == nil {
		return nil, ErrMissingModel
	}

	o := engineOptions{align: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	var builderOpts []features.Option
	if namer, ok := clf.(FeatureNamer); ok && o.align {
		builderOpts = append(builderOpts, features.WithAlignment(namer.FeatureNames()))
	}

	return &Engine{
		builder:    features.NewBuilder(o.schema, builderOpts...),
		classifier: clf,
		regressor:  reg,
		decoder:    dec,
		logger:     o.logger,
	}, nil
}

// Builder returns the vector builder the engine uses.
func (e *Engine) Builder() *features.Builder {
	return e.builder
}

// Assess builds the vector for raw, fuses both predictions and classifies the label.
func (e *Engine) Assess(raw *models.RawApplicantInput) (*Assessment, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	vec := e.builder.Build(raw)
	diags := vec.Diagnostics()
	e.recordDiagnostics(diags)

	var salary float64
	if raw != nil {
		salary = raw.MonthlySalary
	}

	result, err := e.Fuse(vec, salary)
	if err != nil {
		var predErr *models.PredictionError
		if errors.As(err, &predErr) {
			metrics.PredictionFailures.WithLabelValues(string(predErr.Stage)).Inc()
		}
		e.logger.Error("Prediction failed",
			zap.Error(err),
			zap.Int("feature_count", vec.Len()),
		)
		return nil, err
	}

	outcome := Classify(result.EligibilityLabel)
	correction := result.Correction()

	metrics.PredictionsTotal.WithLabelValues(result.EligibilityLabel, string(outcome.Tier)).Inc()
	metrics.CorrectionsTotal.WithLabelValues(string(correction)).Inc()

	e.logger.Info("Assessment completed",
		zap.String("label", result.EligibilityLabel),
		zap.String("tier", string(outcome.Tier)),
		zap.Float64("predicted_max_emi", result.PredictedMaxEMI),
		zap.Float64("corrected_emi", result.CorrectedEMI),
		zap.String("correction", string(correction)),
		zap.Int("diagnostics", len(diags)),
	)

	return &Assessment{
		Result:      result,
		Outcome:     outcome,
		Correction:  correction,
		Diagnostics: diags,
	}, nil
}

func (e *Engine) recordDiagnostics(diags []features.Diagnostic) {
	for _, d := range diags {
		switch d.Kind {
		case features.DiagNumericCoercionFailed, features.DiagFlagDefaulted, features.DiagCategoricalExpected:
			metrics.CoercionFallbacks.WithLabelValues(d.Field).Inc()
			e.logger.Warn("Feature value fell back",
				zap.String("field", d.Field),
				zap.String("kind", string(d.Kind)),
				zap.String("detail", d.Detail),
			)
		case features.DiagModelOnlyField:
			e.logger.Warn("Model expects a field outside the schema",
				zap.String("field", d.Field),
			)
		default:
			e.logger.Debug("Feature diagnostic",
				zap.String("field", d.Field),
				zap.String("kind", string(d.Kind)),
			)
		}
	}
}
