package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"emi-eligibility-engine/internal/features"
	"emi-eligibility-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrTooManyRows    = errors.New("CSV file exceeds the batch row limit")
)

// RequiredColumns are the form fields every applicant row must carry.
var RequiredColumns = []string{
	"monthly_salary",
	"credit_score",
	"years_of_employment",
	"current_emi_amount",
	"requested_amount",
	"requested_tenure",
	"employment_type",
	"house_type",
	"family_size",
	"dependents",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// salary aliases
	"salary":         "monthly_salary",
	"income":         "monthly_salary",
	"monthly_income": "monthly_salary",
	"monthlysalary":  "monthly_salary",
	"monthly salary": "monthly_salary",
	"annual_income":  "monthly_salary", // Will divide by 12
	"annual income":  "monthly_salary",
	"annual_salary":  "monthly_salary",
	"annual salary":  "monthly_salary",

	// credit_score aliases
	"creditscore":  "credit_score",
	"credit score": "credit_score",
	"cibil":        "credit_score",
	"cibil_score":  "credit_score",
	"cibilscore":   "credit_score",

	// years_of_employment aliases
	"experience":          "years_of_employment",
	"years_employed":      "years_of_employment",
	"years of employment": "years_of_employment",

	// current_emi_amount aliases
	"current_emi":  "current_emi_amount",
	"existing_emi": "current_emi_amount",
	"emi":          "current_emi_amount",

	// requested_amount aliases
	"loan_amount": "requested_amount",
	"amount":      "requested_amount",

	// requested_tenure aliases
	"tenure":        "requested_tenure",
	"tenure_months": "requested_tenure",
	"loan_tenure":   "requested_tenure",

	// employment_type aliases
	"employment":      "employment_type",
	"employment type": "employment_type",
	"occupation":      "employment_type",

	// house_type aliases
	"house":      "house_type",
	"house type": "house_type",
	"residence":  "house_type",

	// household aliases
	"family":         "family_size",
	"household_size": "family_size",
	"dependants":     "dependents",
}

// ApplicantRow is one parsed CSV row and its 1-based line number.
type ApplicantRow struct {
	Line  int
	Input *models.RawApplicantInput
}

// RowError reports why a CSV line was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CSVParser handles parsing of applicant CSV files.
type CSVParser struct {
	schema          *features.Schema
	maxRows         int
	columnMapping   map[string]int
	originalHeaders map[string]string // Maps normalized column name to original header
}

// NewCSVParser creates a parser that accepts up to maxRows data rows; 0 means no limit.
func NewCSVParser(maxRows int) *CSVParser {
	return &CSVParser{
		schema:          features.DefaultSchema(),
		maxRows:         maxRows,
		columnMapping:   make(map[string]int),
		originalHeaders: make(map[string]string),
	}
}

// ParseApplicants parses CSV content into applicant inputs. Bad rows are
// reported as *RowError and do not stop the rest of the file.
func (p *CSVParser) ParseApplicants(content string) ([]ApplicantRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var rows []ApplicantRow
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, &RowError{Line: lineNum, Err: err})
			continue
		}
		if isBlank(record) {
			continue
		}

		if p.maxRows > 0 && len(rows)+len(parseErrors) >= p.maxRows {
			return nil, []error{fmt.Errorf("%w of %d", ErrTooManyRows, p.maxRows)}
		}

		input, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, &RowError{Line: lineNum, Err: err})
			continue
		}

		if err := models.ValidateApplicant(input); err != nil {
			parseErrors = append(parseErrors, &RowError{Line: lineNum, Err: err})
			continue
		}

		rows = append(rows, ApplicantRow{Line: lineNum, Input: input})
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	p.originalHeaders = make(map[string]string)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		original := normalized

		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}

		p.columnMapping[normalized] = i
		p.originalHeaders[normalized] = original
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a RawApplicantInput.
func (p *CSVParser) parseRow(record []string) (*models.RawApplicantInput, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	in := &models.RawApplicantInput{}

	salary, err := parseFloat(getValue("monthly_salary"))
	if err != nil {
		return nil, fmt.Errorf("invalid monthly_salary: %w", err)
	}
	if strings.Contains(p.originalHeaders["monthly_salary"], "annual") {
		salary = salary / 12.0
	}
	in.MonthlySalary = salary

	floats := []struct {
		column string
		dst    *float64
	}{
		{"years_of_employment", &in.YearsOfEmployment},
		{"current_emi_amount", &in.CurrentEMIAmount},
		{"requested_amount", &in.RequestedAmount},
	}
	for _, f := range floats {
		v, err := parseFloat(getValue(f.column))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.column, err)
		}
		*f.dst = v
	}

	ints := []struct {
		column string
		dst    *int
	}{
		{"credit_score", &in.CreditScore},
		{"requested_tenure", &in.RequestedTenure},
		{"family_size", &in.FamilySize},
		{"dependents", &in.Dependents},
	}
	for _, f := range ints {
		v, err := parseInt(getValue(f.column))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.column, err)
		}
		*f.dst = v
	}

	in.EmploymentType = models.NormalizeEmploymentType(getValue("employment_type"))
	in.HouseType = models.NormalizeHouseType(getValue("house_type"))

	// Remaining schema columns ride along untyped; the vector builder coerces them.
	required := make(map[string]struct{}, len(RequiredColumns))
	for _, c := range RequiredColumns {
		required[c] = struct{}{}
	}
	for column := range p.columnMapping {
		if _, isForm := required[column]; isForm || !p.schema.Has(column) {
			continue
		}
		if v := getValue(column); v != "" {
			if in.AdditionalFields == nil {
				in.AdditionalFields = make(map[string]any)
			}
			in.AdditionalFields[column] = v
		}
	}

	return in, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "750.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}
