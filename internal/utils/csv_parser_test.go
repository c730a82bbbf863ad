package utils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-eligibility-engine/internal/models"
	"emi-eligibility-engine/internal/utils"
)

const header = "monthly_salary,credit_score,years_of_employment,current_emi_amount,requested_amount,requested_tenure,employment_type,house_type,family_size,dependents"

func TestCSVParser_ValidFile(t *testing.T) {
	csvContent := header + `
30000,700,3,0,50000,12,Private,Rented,3,1
"85,000",810,12,8000,500000,60,Government,Own,5,3`

	parser := utils.NewCSVParser(0)
	rows, errs := parser.ParseApplicants(csvContent)

	require.Empty(t, errs, "Expected no parse errors")
	require.Len(t, rows, 2, "Expected 2 applicants")

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, 30000.0, first.Input.MonthlySalary)
	assert.Equal(t, 700, first.Input.CreditScore)
	assert.Equal(t, 12, first.Input.RequestedTenure)
	assert.Equal(t, models.EmploymentTypePrivate, first.Input.EmploymentType)
	assert.Equal(t, models.HouseTypeRented, first.Input.HouseType)
	assert.Nil(t, first.Input.AdditionalFields)

	assert.Equal(t, 85000.0, rows[1].Input.MonthlySalary)
}

func TestCSVParser_ColumnAliases(t *testing.T) {
	csvContent := `salary,cibil,experience,emi,loan_amount,tenure,occupation,residence,family,dependants
40000,680,3,2000,150000,18,self employed,owned,2,0`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	require.Empty(t, errs)
	require.Len(t, rows, 1)

	in := rows[0].Input
	assert.Equal(t, 40000.0, in.MonthlySalary)
	assert.Equal(t, 680, in.CreditScore)
	assert.Equal(t, 18, in.RequestedTenure)
	assert.Equal(t, models.EmploymentTypeSelfEmployed, in.EmploymentType)
	assert.Equal(t, models.HouseTypeOwn, in.HouseType)
}

func TestCSVParser_AnnualIncome(t *testing.T) {
	csvContent := `annual_income,credit_score,years_of_employment,current_emi_amount,requested_amount,requested_tenure,employment_type,house_type,family_size,dependents
360000,700,3,0,50000,12,Private,Rented,3,1`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, 30000.0, rows[0].Input.MonthlySalary)
}

func TestCSVParser_ExtraSchemaColumns(t *testing.T) {
	csvContent := header + `,age,existing_loans,favourite_colour
30000,700,3,0,50000,12,Private,Rented,3,1,41,Yes,blue
30000,700,3,0,50000,12,Private,Rented,3,1,,,`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]any{"age": "41", "existing_loans": "Yes"}, rows[0].Input.AdditionalFields)
	assert.Nil(t, rows[1].Input.AdditionalFields, "empty cells fall back to defaults")
}

func TestCSVParser_RowErrorsDoNotAbort(t *testing.T) {
	csvContent := header + `
30000,700,3,0,50000,12,Private,Rented,3,1
abc,700,3,0,50000,12,Private,Rented,3,1
30000,200,3,0,50000,12,Private,Rented,3,1
30000,700,3,0,50000,12,Contractor,Rented,3,1`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	require.Len(t, rows, 1)
	require.Len(t, errs, 3)

	var rowErr *utils.RowError
	require.True(t, errors.As(errs[0], &rowErr))
	assert.Equal(t, 3, rowErr.Line)

	assert.ErrorIs(t, errs[1], models.ErrInvalidCreditScore)
	assert.ErrorIs(t, errs[2], models.ErrInvalidEmploymentType)
	assert.ErrorIs(t, errs[2], models.ErrInvalidInput)
}

func TestCSVParser_MissingRequiredColumns(t *testing.T) {
	csvContent := `monthly_salary,years_of_employment
30000,3`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], utils.ErrMissingColumns)
	assert.Contains(t, errs[0].Error(), "credit_score")
}

func TestCSVParser_EmptyFile(t *testing.T) {
	rows, errs := utils.NewCSVParser(0).ParseApplicants("  \n")

	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], utils.ErrEmptyCSV)
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	rows, errs := utils.NewCSVParser(0).ParseApplicants(header)

	assert.Empty(t, rows)
	assert.Empty(t, errs)
}

func TestCSVParser_AllRowsInvalid(t *testing.T) {
	csvContent := header + `
30000,700,3,0,50000,1,Private,Rented,3,1`

	rows, errs := utils.NewCSVParser(0).ParseApplicants(csvContent)

	assert.Empty(t, rows)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], utils.ErrNoDataRows)
	assert.ErrorIs(t, errs[1], models.ErrInvalidTenure)
}

func TestCSVParser_RowLimit(t *testing.T) {
	csvContent := header + `
30000,700,3,0,50000,12,Private,Rented,3,1
30000,700,3,0,50000,12,Private,Rented,3,1
30000,700,3,0,50000,12,Private,Rented,3,1`

	rows, errs := utils.NewCSVParser(2).ParseApplicants(csvContent)

	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], utils.ErrTooManyRows)

	rows, errs = utils.NewCSVParser(3).ParseApplicants(csvContent)
	assert.Empty(t, errs)
	assert.Len(t, rows, 3)
}
