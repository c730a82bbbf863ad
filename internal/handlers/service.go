package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"emi-eligibility-engine/internal/config"
	"emi-eligibility-engine/internal/features"
	"emi-eligibility-engine/internal/models"
	"emi-eligibility-engine/internal/prediction"
	"emi-eligibility-engine/internal/services/modelstore"
	"emi-eligibility-engine/internal/utils"
)

var errBadRequest = errors.New("malformed request")

// Service is the transport-independent assessment API.
type Service struct {
	engine *prediction.Engine
	bundle *modelstore.Bundle
	cfg    *config.Config
	logger *zap.Logger
}

// NewService wires an engine over a loaded bundle.
func NewService(cfg *config.Config, bundle *modelstore.Bundle, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = utils.GetLogger()
	}

	engine, err := prediction.NewEngine(bundle.Classifier, bundle.Regressor, bundle.LabelEncoder,
		prediction.WithModelAlignment(cfg.AlignToModelFeatures),
		prediction.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction engine: %w", err)
	}

	return &Service{engine: engine, bundle: bundle, cfg: cfg, logger: logger}, nil
}

// Bootstrap loads the configured artifacts and builds a Service.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	bundle, err := modelstore.LoadFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load model artifacts: %w", err)
	}
	return NewService(cfg, bundle, logger)
}

// AssessmentData is the payload of a successful prediction.
type AssessmentData struct {
	EligibilityLabel string                   `json:"eligibility_label"`
	PredictedMaxEMI  float64                  `json:"predicted_max_emi"`
	Band             models.AffordabilityBand `json:"affordability_band"`
	CorrectedEMI     float64                  `json:"corrected_emi"`
	Correction       string                   `json:"correction"`
	Tier             models.Tier              `json:"tier"`
	Message          string                   `json:"message"`
	Diagnostics      []features.Diagnostic    `json:"diagnostics,omitempty"`
}

func newAssessmentData(a *prediction.Assessment) AssessmentData {
	return AssessmentData{
		EligibilityLabel: a.Result.EligibilityLabel,
		PredictedMaxEMI:  a.Result.PredictedMaxEMI,
		Band:             a.Result.Band,
		CorrectedEMI:     a.Result.CorrectedEMI,
		Correction:       string(a.Correction),
		Tier:             a.Outcome.Tier,
		Message:          a.Outcome.Message,
		Diagnostics:      a.Diagnostics,
	}
}

// DecodeApplicant parses a JSON applicant and canonicalizes its enum fields.
func DecodeApplicant(body []byte) (*models.RawApplicantInput, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", errBadRequest)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var in models.RawApplicantInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	in.EmploymentType = models.NormalizeEmploymentType(string(in.EmploymentType))
	in.HouseType = models.NormalizeHouseType(string(in.HouseType))

	return &in, nil
}

// Predict assesses one JSON applicant.
func (s *Service) Predict(requestID string, body []byte) (int, Response) {
	logger := s.logger.With(zap.String("request_id", requestID))

	in, err := DecodeApplicant(body)
	if err == nil {
		err = models.ValidateApplicant(in)
	}
	if err != nil {
		logger.Warn("Rejected applicant", zap.Error(err))
		return errorResponse(err)
	}

	a, err := s.engine.Assess(in)
	if err != nil {
		logger.Error("Assessment failed", zap.Error(err))
		return errorResponse(err)
	}

	return http.StatusOK, Response{
		Success: true,
		Message: a.Outcome.Message,
		Data:    newAssessmentData(a),
	}
}

// BatchItem is one assessed CSV row.
type BatchItem struct {
	Line       int            `json:"line"`
	Assessment AssessmentData `json:"assessment"`
}

// BatchError is one CSV row that could not be assessed.
type BatchError struct {
	Line  int    `json:"line,omitempty"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// BatchResult summarizes a CSV batch.
type BatchResult struct {
	BatchID      string         `json:"batch_id"`
	TotalRows    int            `json:"total_rows"`
	Assessed     int            `json:"assessed"`
	Failed       int            `json:"failed"`
	ByLabel      map[string]int `json:"by_label"`
	Results      []BatchItem    `json:"results"`
	Errors       []BatchError   `json:"errors,omitempty"`
	ProcessingMs int64          `json:"processing_ms"`
}

// PredictBatch assesses every valid row of a CSV upload. Row failures are
// reported in the result and never abort the batch.
func (s *Service) PredictBatch(requestID, content string) (int, Response) {
	logger := s.logger.With(zap.String("request_id", requestID))
	startTime := time.Now()

	rows, parseErrors := utils.NewCSVParser(s.cfg.MaxBatchRows).ParseApplicants(content)
	if len(rows) == 0 && len(parseErrors) > 0 {
		logger.Warn("Rejected CSV batch", zap.Error(parseErrors[0]), zap.Int("errors", len(parseErrors)))
		status, resp := errorResponse(parseErrors[0])
		resp.Data = batchErrors(parseErrors[1:])
		return status, resp
	}

	result := &BatchResult{
		BatchID:   requestID,
		TotalRows: len(rows) + len(parseErrors),
		ByLabel:   make(map[string]int),
		Results:   make([]BatchItem, 0, len(rows)),
		Errors:    batchErrors(parseErrors),
	}

	for _, row := range rows {
		a, err := s.engine.Assess(row.Input)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Line: row.Line, Error: err.Error(), Code: errorCode(err)})
			continue
		}
		result.ByLabel[a.Result.EligibilityLabel]++
		result.Results = append(result.Results, BatchItem{Line: row.Line, Assessment: newAssessmentData(a)})
	}

	result.Assessed = len(result.Results)
	result.Failed = len(result.Errors)
	result.ProcessingMs = time.Since(startTime).Milliseconds()

	logger.Info("Processed CSV batch",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("assessed", result.Assessed),
		zap.Int("failed", result.Failed),
		zap.Int64("processing_ms", result.ProcessingMs),
	)

	return http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Assessed %d of %d rows", result.Assessed, result.TotalRows),
		Data:    result,
	}
}

func batchErrors(errs []error) []BatchError {
	out := make([]BatchError, 0, len(errs))
	for _, err := range errs {
		be := BatchError{Error: err.Error(), Code: errorCode(err)}
		var rowErr *utils.RowError
		if errors.As(err, &rowErr) {
			be.Line = rowErr.Line
			be.Error = rowErr.Err.Error()
			if be.Code == CodeInternal {
				be.Code = CodeInvalidInput
			}
		}
		out = append(out, be)
	}
	return out
}

// ModelInfo describes the loaded artifacts.
type ModelInfo struct {
	Source       string    `json:"source"`
	Classes      []string  `json:"classes"`
	FeatureCount int       `json:"feature_count"`
	Aligned      bool      `json:"aligned"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// HealthData is the health check payload.
type HealthData struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Stage     string    `json:"stage"`
	Timestamp string    `json:"timestamp"`
	Model     ModelInfo `json:"model"`
}

// Health reports service and model status.
func (s *Service) Health() (int, Response) {
	return http.StatusOK, Response{
		Success: true,
		Message: "EMI Eligibility Engine API is running",
		Data: HealthData{
			Status:    "healthy",
			Service:   "emi-eligibility-engine",
			Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
			Stage:     s.cfg.Stage,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Model: ModelInfo{
				Source:       s.bundle.Source,
				Classes:      s.bundle.Classes(),
				FeatureCount: len(s.engine.Builder().Columns()),
				Aligned:      s.engine.Builder().Aligned(),
				LoadedAt:     s.bundle.LoadedAt,
			},
		},
	}
}

// SchemaField describes one feature column.
type SchemaField struct {
	Name    string         `json:"name"`
	Kind    string         `json:"kind"`
	Default features.Value `json:"default"`
}

// SchemaData is the schema endpoint payload.
type SchemaData struct {
	Fields         []SchemaField `json:"fields"`
	RequiredFields []string      `json:"required_fields"`
	Columns        []string      `json:"columns"`
	Aligned        bool          `json:"aligned"`
}

// Schema lists the feature schema and the columns sent to the models.
func (s *Service) Schema() (int, Response) {
	b := s.engine.Builder()
	defs := b.Schema().Definitions()

	fields := make([]SchemaField, len(defs))
	for i, f := range defs {
		fields[i] = SchemaField{Name: f.Name, Kind: f.Kind.String(), Default: f.Default}
	}

	return http.StatusOK, Response{
		Success: true,
		Data: SchemaData{
			Fields:         fields,
			RequiredFields: utils.RequiredColumns,
			Columns:        b.Columns(),
			Aligned:        b.Aligned(),
		},
	}
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
