package features

import (
	"fmt"
)

// ExistingLoansField is the boolean-like field normalized onto {0, 1}.
const ExistingLoansField = "existing_loans"

// Field describes one schema column: its name, declared kind and default.
type Field struct {
	Name    string
	Kind    Kind
	Default Value
}

// Schema is the canonical, ordered list of features the trained models expect.
// A Schema never changes after construction.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from an ordered field list.
func NewSchema(fields []Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema field %d has no name", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate schema field %q", f.Name)
		}
		if f.Default.Kind() == 0 {
			return nil, fmt.Errorf("schema field %q has no default", f.Name)
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

func numeric(name string, def float64) Field {
	return Field{Name: name, Kind: KindNumeric, Default: Num(def)}
}

func categorical(name, def string) Field {
	return Field{Name: name, Kind: KindCategorical, Default: Cat(def)}
}

// formCategorical is a categorical form field whose fallback is the numeric 0
// every unlisted column gets.
func formCategorical(name string) Field {
	return Field{Name: name, Kind: KindCategorical, Default: Num(0)}
}

// Columns the EMI models were trained on, in training order.
// The ten form fields default to 0 only when a caller bypasses the form.
var defaultFields = []Field{
	numeric("age", 30),
	categorical("gender", "Male"),
	categorical("marital_status", "Single"),
	categorical("education", "Graduate"),
	numeric("monthly_salary", 0),
	formCategorical("employment_type"),
	numeric("years_of_employment", 0),
	categorical("company_type", "Private"),
	formCategorical("house_type"),
	numeric("monthly_rent", 0),
	numeric("family_size", 0),
	numeric("dependents", 0),
	numeric("school_fees", 0),
	numeric("college_fees", 0),
	numeric("travel_expenses", 0),
	numeric("groceries_utilities", 0),
	numeric("other_monthly_expenses", 0),
	numeric(ExistingLoansField, 0),
	numeric("current_emi_amount", 0),
	numeric("credit_score", 0),
	numeric("bank_balance", 10000),
	numeric("emergency_fund", 5000),
	categorical("emi_scenario", "Personal Loan"),
	numeric("requested_amount", 0),
	numeric("requested_tenure", 0),
	numeric("total_expenses", 0),
	numeric("debt_to_income", 0),
	numeric("expense_to_income", 0),
	numeric("savings_ratio", 0),
	numeric("affordability_ratio", 0),
}

var defaultSchema = mustSchema(defaultFields)

func mustSchema(fields []Field) *Schema {
	s, err := NewSchema(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultSchema returns the schema the shipped artifacts were trained against.
func DefaultSchema() *Schema {
	return defaultSchema
}

// Fields returns the ordered field names. The slice is a copy.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Definitions returns the ordered field definitions. The slice is a copy.
func (s *Schema) Definitions() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field definition by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// DefaultFor returns the default value of a schema field.
func (s *Schema) DefaultFor(name string) (Value, bool) {
	f, ok := s.Field(name)
	if !ok {
		return Value{}, false
	}
	return f.Default, true
}

// Has reports whether name is a schema field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}
