package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validApplicant() *RawApplicantInput {
	return &RawApplicantInput{
		MonthlySalary:     30000,
		CreditScore:       700,
		YearsOfEmployment: 3,
		CurrentEMIAmount:  0,
		RequestedAmount:   50000,
		RequestedTenure:   12,
		EmploymentType:    EmploymentTypePrivate,
		HouseType:         HouseTypeRented,
		FamilySize:        3,
		Dependents:        1,
	}
}

func TestEmploymentType_IsValid(t *testing.T) {
	tests := []struct {
		value    EmploymentType
		expected bool
	}{
		{EmploymentTypePrivate, true},
		{EmploymentTypeGovernment, true},
		{EmploymentTypeSelfEmployed, true},
		{EmploymentType("private"), false},
		{EmploymentType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.IsValid())
		})
	}
}

func TestNormalizeEmploymentType(t *testing.T) {
	tests := []struct {
		input    string
		expected EmploymentType
	}{
		{"Private", EmploymentTypePrivate},
		{"salaried", EmploymentTypePrivate},
		{"GOVT", EmploymentTypeGovernment},
		{"Government", EmploymentTypeGovernment},
		{"self-employed", EmploymentTypeSelfEmployed},
		{"Self Employed", EmploymentTypeSelfEmployed},
		{"freelancer", EmploymentTypeSelfEmployed},
		{" Contractor ", EmploymentType("Contractor")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeEmploymentType(tt.input))
		})
	}
}

func TestNormalizeHouseType(t *testing.T) {
	assert.Equal(t, HouseTypeOwn, NormalizeHouseType("owned"))
	assert.Equal(t, HouseTypeRented, NormalizeHouseType("RENT"))
	assert.Equal(t, HouseTypeFamily, NormalizeHouseType("with family"))
	assert.Equal(t, HouseType("Hostel"), NormalizeHouseType("Hostel"))
}

func TestValidateApplicant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *RawApplicantInput)
		wantErr error
	}{
		{"valid", func(in *RawApplicantInput) {}, nil},
		{"zero salary allowed", func(in *RawApplicantInput) { in.MonthlySalary = 0 }, nil},
		{"negative salary", func(in *RawApplicantInput) { in.MonthlySalary = -1 }, ErrInvalidSalary},
		{"credit score low", func(in *RawApplicantInput) { in.CreditScore = 299 }, ErrInvalidCreditScore},
		{"credit score high", func(in *RawApplicantInput) { in.CreditScore = 851 }, ErrInvalidCreditScore},
		{"tenure low", func(in *RawApplicantInput) { in.RequestedTenure = 2 }, ErrInvalidTenure},
		{"tenure high", func(in *RawApplicantInput) { in.RequestedTenure = 85 }, ErrInvalidTenure},
		{"employment type", func(in *RawApplicantInput) { in.EmploymentType = "Retired" }, ErrInvalidEmploymentType},
		{"house type", func(in *RawApplicantInput) { in.HouseType = "Hostel" }, ErrInvalidHouseType},
		{"negative dependents", func(in *RawApplicantInput) { in.Dependents = -1 }, ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validApplicant()
			tt.mutate(in)

			err := ValidateApplicant(in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRawApplicantInput_Fields(t *testing.T) {
	in := validApplicant()
	in.AdditionalFields = map[string]any{
		"age":            42,
		"monthly_salary": 1,
	}

	fields := in.Fields()

	assert.Equal(t, 42, fields["age"])
	assert.Equal(t, 30000.0, fields["monthly_salary"], "form values win over additional fields")
	assert.Equal(t, "Private", fields["employment_type"])
	assert.Equal(t, "Rented", fields["house_type"])
	assert.Len(t, fields, 11)
}

func TestPredictionError(t *testing.T) {
	cause := errors.New("feature credit_score is categorical")
	err := fmt.Errorf("assess: %w", NewPredictionError(StageRegressor, cause))

	assert.ErrorIs(t, err, ErrModelSchemaMismatch)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	var predErr *PredictionError
	if assert.ErrorAs(t, err, &predErr) {
		assert.Equal(t, StageRegressor, predErr.Stage)
		assert.False(t, predErr.Retryable())
		assert.Contains(t, predErr.UserMessage(), "regressor")
	}
	assert.Contains(t, err.Error(), "regressor prediction failed")
}

func TestPredictionResult_Correction(t *testing.T) {
	assert.Equal(t, CorrectionDown, (&PredictionResult{PredictedMaxEMI: 20000, CorrectedEMI: 15000}).Correction())
	assert.Equal(t, CorrectionUp, (&PredictionResult{PredictedMaxEMI: 5000, CorrectedEMI: 9000}).Correction())
	assert.Equal(t, CorrectionNone, (&PredictionResult{PredictedMaxEMI: 10000, CorrectedEMI: 10000}).Correction())
}

func TestAffordabilityBand_Contains(t *testing.T) {
	band := AffordabilityBand{Min: 9000, Max: 15000}
	assert.True(t, band.Contains(9000))
	assert.True(t, band.Contains(15000))
	assert.False(t, band.Contains(8999.99))
	assert.False(t, band.Contains(15000.01))
}
