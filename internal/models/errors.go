// Package models defines the data structures for the EMI eligibility engine.
package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the parent of every applicant validation error.
var ErrInvalidInput = errors.New("invalid applicant input")

// Common errors
var (
	ErrInvalidSalary         = fmt.Errorf("%w: monthly salary must be a non-negative number", ErrInvalidInput)
	ErrInvalidCreditScore    = fmt.Errorf("%w: credit score must be between %d and %d", ErrInvalidInput, MinCreditScore, MaxCreditScore)
	ErrInvalidTenure         = fmt.Errorf("%w: requested tenure must be between %d and %d months", ErrInvalidInput, MinTenureMonths, MaxTenureMonths)
	ErrInvalidEmploymentType = fmt.Errorf("%w: employment type must be Private, Government or Self-employed", ErrInvalidInput)
	ErrInvalidHouseType      = fmt.Errorf("%w: house type must be Own, Rented or Family", ErrInvalidInput)
	ErrNegativeAmount        = fmt.Errorf("%w: amounts and counts cannot be negative", ErrInvalidInput)
)

// ValidateApplicant checks the form constraints the presentation layer enforces.
func ValidateApplicant(in *RawApplicantInput) error {
	if in.MonthlySalary < 0 || math.IsNaN(in.MonthlySalary) || math.IsInf(in.MonthlySalary, 0) {
		return ErrInvalidSalary
	}

	if in.CreditScore < MinCreditScore || in.CreditScore > MaxCreditScore {
		return ErrInvalidCreditScore
	}

	if in.RequestedTenure < MinTenureMonths || in.RequestedTenure > MaxTenureMonths {
		return ErrInvalidTenure
	}

	if !in.EmploymentType.IsValid() {
		return ErrInvalidEmploymentType
	}

	if !in.HouseType.IsValid() {
		return ErrInvalidHouseType
	}

	if in.YearsOfEmployment < 0 || in.CurrentEMIAmount < 0 || in.RequestedAmount < 0 ||
		in.FamilySize < 0 || in.Dependents < 0 {
		return ErrNegativeAmount
	}

	return nil
}

// PredictionStage names the model call that failed.
type PredictionStage string

const (
	StageClassifier PredictionStage = "classifier"
	StageRegressor  PredictionStage = "regressor"
	StageDecoder    PredictionStage = "decoder"
)

// ErrModelSchemaMismatch marks failures caused by the feature vector and the
// loaded artifacts disagreeing. These are configuration problems and never retried.
var ErrModelSchemaMismatch = errors.New("model and feature schema are incompatible")

// PredictionError wraps any failure raised by a model or the label decoder.
type PredictionError struct {
	Stage PredictionStage
	Err   error
}

// NewPredictionError creates a PredictionError for the given stage.
func NewPredictionError(stage PredictionStage, err error) *PredictionError {
	return &PredictionError{Stage: stage, Err: err}
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s prediction failed: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrModelSchemaMismatch so callers can branch without a type assertion.
func (e *PredictionError) Is(target error) bool {
	return target == ErrModelSchemaMismatch
}

// Retryable is always false: the same vector fails the same way.
func (e *PredictionError) Retryable() bool {
	return false
}

// UserMessage is the actionable text shown to callers.
func (e *PredictionError) UserMessage() string {
	return fmt.Sprintf("The %s artifact rejected the feature vector. The deployed model and the feature schema are out of sync; redeploy matching artifacts.", e.Stage)
}
