// Package models defines the data structures for the EMI eligibility engine.
package models

import (
	"strings"
)

// EmploymentType represents the applicant's employment category.
type EmploymentType string

const (
	EmploymentTypePrivate      EmploymentType = "Private"
	EmploymentTypeGovernment   EmploymentType = "Government"
	EmploymentTypeSelfEmployed EmploymentType = "Self-employed"
)

// ValidEmploymentTypes returns all valid employment type values.
func ValidEmploymentTypes() []EmploymentType {
	return []EmploymentType{
		EmploymentTypePrivate,
		EmploymentTypeGovernment,
		EmploymentTypeSelfEmployed,
	}
}

// IsValid checks if the employment type is valid.
func (e EmploymentType) IsValid() bool {
	for _, valid := range ValidEmploymentTypes() {
		if e == valid {
			return true
		}
	}
	return false
}

// HouseType represents the applicant's housing situation.
type HouseType string

const (
	HouseTypeOwn    HouseType = "Own"
	HouseTypeRented HouseType = "Rented"
	HouseTypeFamily HouseType = "Family"
)

// ValidHouseTypes returns all valid house type values.
func ValidHouseTypes() []HouseType {
	return []HouseType{HouseTypeOwn, HouseTypeRented, HouseTypeFamily}
}

// IsValid checks if the house type is valid.
func (h HouseType) IsValid() bool {
	for _, valid := range ValidHouseTypes() {
		if h == valid {
			return true
		}
	}
	return false
}

// Credit score and tenure bounds accepted by the input form.
const (
	MinCreditScore     = 300
	MaxCreditScore     = 850
	MinTenureMonths    = 3
	MaxTenureMonths    = 84
	MonthlySalaryField = "monthly_salary"
)

// RawApplicantInput is what the presentation layer collects for one prediction.
type RawApplicantInput struct {
	MonthlySalary     float64        `json:"monthly_salary"`
	CreditScore       int            `json:"credit_score"`
	YearsOfEmployment float64        `json:"years_of_employment"`
	CurrentEMIAmount  float64        `json:"current_emi_amount"`
	RequestedAmount   float64        `json:"requested_amount"`
	RequestedTenure   int            `json:"requested_tenure"`
	EmploymentType    EmploymentType `json:"employment_type"`
	HouseType         HouseType      `json:"house_type"`
	FamilySize        int            `json:"family_size"`
	Dependents        int            `json:"dependents"`

	// AdditionalFields carries extra feature values (age, gender, existing_loans, ...)
	// for callers that collect more than the form does. Values are untyped on purpose;
	// the vector builder coerces them.
	AdditionalFields map[string]any `json:"additional_fields,omitempty"`
}

// Fields flattens the input into feature-name keyed values.
// Form fields take precedence over AdditionalFields with the same name.
func (r *RawApplicantInput) Fields() map[string]any {
	fields := make(map[string]any, len(r.AdditionalFields)+10)
	for k, v := range r.AdditionalFields {
		fields[k] = v
	}

	fields[MonthlySalaryField] = r.MonthlySalary
	fields["credit_score"] = r.CreditScore
	fields["years_of_employment"] = r.YearsOfEmployment
	fields["current_emi_amount"] = r.CurrentEMIAmount
	fields["requested_amount"] = r.RequestedAmount
	fields["requested_tenure"] = r.RequestedTenure
	fields["employment_type"] = string(r.EmploymentType)
	fields["house_type"] = string(r.HouseType)
	fields["family_size"] = r.FamilySize
	fields["dependents"] = r.Dependents

	return fields
}

// NormalizeEmploymentType converts common spellings to the canonical values.
func NormalizeEmploymentType(value string) EmploymentType {
	normalized := normalizeToken(value)

	typeMap := map[string]EmploymentType{
		"private":         EmploymentTypePrivate,
		"private_sector":  EmploymentTypePrivate,
		"salaried":        EmploymentTypePrivate,
		"employed":        EmploymentTypePrivate,
		"government":      EmploymentTypeGovernment,
		"govt":            EmploymentTypeGovernment,
		"gov":             EmploymentTypeGovernment,
		"public_sector":   EmploymentTypeGovernment,
		"self_employed":   EmploymentTypeSelfEmployed,
		"selfemployed":    EmploymentTypeSelfEmployed,
		"business":        EmploymentTypeSelfEmployed,
		"business_owner":  EmploymentTypeSelfEmployed,
		"freelancer":      EmploymentTypeSelfEmployed,
		"self_employment": EmploymentTypeSelfEmployed,
		"entrepreneur":    EmploymentTypeSelfEmployed,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return EmploymentType(strings.TrimSpace(value))
}

// NormalizeHouseType converts common spellings to the canonical values.
func NormalizeHouseType(value string) HouseType {
	normalized := normalizeToken(value)

	typeMap := map[string]HouseType{
		"own":          HouseTypeOwn,
		"owned":        HouseTypeOwn,
		"self_owned":   HouseTypeOwn,
		"rented":       HouseTypeRented,
		"rent":         HouseTypeRented,
		"rental":       HouseTypeRented,
		"family":       HouseTypeFamily,
		"parents":      HouseTypeFamily,
		"with_family":  HouseTypeFamily,
		"family_owned": HouseTypeFamily,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}

	return HouseType(strings.TrimSpace(value))
}

func normalizeToken(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}
