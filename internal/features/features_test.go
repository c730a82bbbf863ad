package features

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-eligibility-engine/internal/models"
)

func sampleApplicant() *models.RawApplicantInput {
	return &models.RawApplicantInput{
		MonthlySalary:     30000,
		CreditScore:       700,
		YearsOfEmployment: 3,
		CurrentEMIAmount:  0,
		RequestedAmount:   50000,
		RequestedTenure:   12,
		EmploymentType:    models.EmploymentTypePrivate,
		HouseType:         models.HouseTypeOwn,
		FamilySize:        3,
		Dependents:        1,
	}
}

func diagKinds(v *Vector) map[string]DiagnosticKind {
	out := make(map[string]DiagnosticKind)
	for _, d := range v.Diagnostics() {
		out[d.Field] = d.Kind
	}
	return out
}

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	require.Equal(t, 30, s.Len())
	fields := s.Fields()
	assert.Equal(t, "age", fields[0])
	assert.Equal(t, "affordability_ratio", fields[len(fields)-1])

	defaults := map[string]Value{
		"age":            Num(30),
		"gender":         Cat("Male"),
		"marital_status": Cat("Single"),
		"education":      Cat("Graduate"),
		"company_type":   Cat("Private"),
		"bank_balance":   Num(10000),
		"emergency_fund": Num(5000),
		"emi_scenario":   Cat("Personal Loan"),
		"existing_loans": Num(0),
		"monthly_rent":   Num(0),
		"monthly_salary": Num(0),
	}
	for name, want := range defaults {
		got, ok := s.DefaultFor(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := s.DefaultFor("favourite_colour")
	assert.False(t, ok)
	assert.False(t, s.Has("favourite_colour"))
}

func TestSchema_FieldsIsCopy(t *testing.T) {
	s := DefaultSchema()
	fields := s.Fields()
	fields[0] = "mutated"

	assert.Equal(t, "age", s.Fields()[0])
}

func TestNewSchema_Rejects(t *testing.T) {
	_, err := NewSchema([]Field{numeric("a", 0), numeric("a", 1)})
	assert.Error(t, err)

	_, err = NewSchema([]Field{{Name: "", Kind: KindNumeric, Default: Num(0)}})
	assert.Error(t, err)

	_, err = NewSchema([]Field{{Name: "b", Kind: KindNumeric}})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Value
		wantErr bool
	}{
		{"float", 12.5, Num(12.5), false},
		{"int", 7, Num(7), false},
		{"int64", int64(-3), Num(-3), false},
		{"bool true", true, Num(1), false},
		{"bool false", false, Num(0), false},
		{"numeric string", " 700 ", Num(700), false},
		{"json number", json.Number("42"), Num(42), false},
		{"categorical string", "Male", Cat("Male"), true},
		{"empty string", "", Cat(""), true},
		{"numeric value passes", Num(3), Num(3), false},
		{"categorical value reparsed", Cat("15"), Num(15), false},
		{"categorical value kept", Cat("Graduate"), Cat("Graduate"), true},
		{"unsupported type", []int{1}, Cat("[1]"), true},
		{"NaN string", "NaN", Cat("NaN"), true},
		{"Inf string", "Inf", Cat("Inf"), true},
		{"signed infinity string", "+Infinity", Cat("+Infinity"), true},
		{"NaN float", math.NaN(), Cat("NaN"), true},
		{"negative infinity float", math.Inf(-1), Cat("-Inf"), true},
		{"infinite numeric value", Num(math.Inf(1)), Cat("+Inf"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.raw)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeFlag(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   float64
		wantOK bool
	}{
		{"Yes", "Yes", 1, true},
		{"No", "No", 0, true},
		{"lowercase yes", "yes", 1, true},
		{"maybe", "maybe", 0, false},
		{"int one", 1, 1, true},
		{"int zero", 0, 0, true},
		{"numeric string", "1", 1, true},
		{"non-zero collapses to one", 3, 1, true},
		{"NaN", math.NaN(), 0, false},
		{"Inf string", "Inf", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := NormalizeFlag(tt.raw)
			f, isNum := v.Float()
			require.True(t, isNum)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestValue_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Value{"a": Num(1.5), "b": Cat("Own"), "c": Num(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":"Own","c":"+Inf"}`, string(out))
}

func TestBuilder_Build_FillsDefaults(t *testing.T) {
	b := NewBuilder(nil)
	v := b.Build(sampleApplicant())

	require.Equal(t, DefaultSchema().Len(), v.Len())
	assert.Equal(t, DefaultSchema().Fields(), v.Names())

	age, ok := v.Float("age")
	require.True(t, ok)
	assert.Equal(t, 30.0, age, "omitted age takes the schema default")

	salary, _ := v.Float("monthly_salary")
	assert.Equal(t, 30000.0, salary)

	bank, _ := v.Float("bank_balance")
	assert.Equal(t, 10000.0, bank)

	scenario, _ := v.Get("emi_scenario")
	assert.Equal(t, Cat("Personal Loan"), scenario)

	emp, _ := v.Get("employment_type")
	assert.Equal(t, Cat("Private"), emp)

	loans, _ := v.Float("existing_loans")
	assert.Equal(t, 0.0, loans)

	assert.Empty(t, v.Diagnostics(), "intentionally categorical fields are not diagnostics")
}

func TestBuilder_Build_Idempotent(t *testing.T) {
	b := NewBuilder(nil, WithAlignment([]string{"credit_score", "age", "model_extra"}))
	raw := sampleApplicant()
	raw.AdditionalFields = map[string]any{"existing_loans": "maybe", "zzz": 1, "aaa": 2}

	first := b.Build(raw)
	second := b.Build(raw)

	assert.Equal(t, first, second)
}

func TestBuilder_ExistingLoans(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		set      bool
		want     float64
		wantDiag bool
	}{
		{"Yes", "Yes", true, 1, false},
		{"No", "No", true, 0, false},
		{"maybe", "maybe", true, 0, true},
		{"one", 1, true, 1, false},
		{"unset", nil, false, 0, false},
	}

	b := NewBuilder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := sampleApplicant()
			if tt.set {
				raw.AdditionalFields = map[string]any{ExistingLoansField: tt.raw}
			}

			v := b.Build(raw)
			got, ok := v.Float(ExistingLoansField)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			_, hasDiag := diagKinds(v)[ExistingLoansField]
			assert.Equal(t, tt.wantDiag, hasDiag)
		})
	}
}

func TestBuilder_CoercionFallbackIsObservable(t *testing.T) {
	raw := sampleApplicant()
	raw.AdditionalFields = map[string]any{
		"age":          "thirty",
		"bank_balance": "Inf",
		"school_fees":  math.NaN(),
		"monthly_rent": "12000",
		"gender":       "Female",
		"education":    5,
	}

	v := NewBuilder(nil).Build(raw)

	age, _ := v.Get("age")
	assert.Equal(t, Num(30), age, "failed coercion falls back to the default")

	balance, _ := v.Get("bank_balance")
	assert.Equal(t, Num(10000), balance)

	fees, _ := v.Get("school_fees")
	assert.Equal(t, Num(0), fees)

	rent, _ := v.Float("monthly_rent")
	assert.Equal(t, 12000.0, rent)

	gender, _ := v.Get("gender")
	assert.Equal(t, Cat("Female"), gender)

	education, _ := v.Get("education")
	assert.Equal(t, Cat("5"), education)

	kinds := diagKinds(v)
	assert.Equal(t, DiagNumericCoercionFailed, kinds["age"])
	assert.Equal(t, DiagNumericCoercionFailed, kinds["bank_balance"])
	assert.Equal(t, DiagNumericCoercionFailed, kinds["school_fees"])
	assert.Equal(t, DiagCategoricalExpected, kinds["education"])
	assert.NotContains(t, kinds, "gender")
	assert.NotContains(t, kinds, "monthly_rent")
}

func TestBuilder_NumericFieldsAlwaysFinite(t *testing.T) {
	raw := sampleApplicant()
	raw.AdditionalFields = map[string]any{
		"bank_balance":     "+Infinity",
		"emergency_fund":   "-inf",
		"total_expenses":   "nan",
		"debt_to_income":   math.Inf(1),
		ExistingLoansField: "Inf",
	}

	v := NewBuilder(nil).Build(raw)

	for _, f := range DefaultSchema().Definitions() {
		if f.Kind != KindNumeric {
			continue
		}
		x, ok := v.Float(f.Name)
		require.True(t, ok, f.Name)
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), "%s = %v", f.Name, x)
	}
}

func TestBuilder_UnknownFieldsIgnored(t *testing.T) {
	raw := sampleApplicant()
	raw.AdditionalFields = map[string]any{"shoe_size": 42}

	v := NewBuilder(nil).Build(raw)

	_, present := v.Get("shoe_size")
	assert.False(t, present)
	assert.Equal(t, DiagUnknownField, diagKinds(v)["shoe_size"])
}

func TestBuilder_Alignment(t *testing.T) {
	expected := []string{"credit_score", "monthly_salary", "age", "loan_purpose_code"}
	b := NewBuilder(nil, WithAlignment(expected))

	assert.True(t, b.Aligned())
	v := b.Build(sampleApplicant())

	assert.Equal(t, expected, v.Names())

	purpose, ok := v.Float("loan_purpose_code")
	require.True(t, ok)
	assert.Equal(t, 0.0, purpose)

	_, hasGender := v.Get("gender")
	assert.False(t, hasGender)

	kinds := diagKinds(v)
	assert.Equal(t, DiagModelOnlyField, kinds["loan_purpose_code"])
	assert.Equal(t, DiagFieldDropped, kinds["gender"])
}

func TestBuilder_EmptyAlignmentUsesSchema(t *testing.T) {
	b := NewBuilder(nil, WithAlignment(nil))
	assert.False(t, b.Aligned())
	assert.Equal(t, DefaultSchema().Fields(), b.Columns())
}

func TestBuilder_NilInput(t *testing.T) {
	v := NewBuilder(nil).Build(nil)

	assert.Equal(t, DefaultSchema().Len(), v.Len())
	salary, _ := v.Float("monthly_salary")
	assert.Equal(t, 0.0, salary)
}

func TestVector_AccessorsReturnCopies(t *testing.T) {
	v := NewBuilder(nil).Build(sampleApplicant())

	names := v.Names()
	names[0] = "mutated"
	values := v.Values()
	values[0] = Num(-1)

	assert.Equal(t, "age", v.Names()[0])
	age, _ := v.Float("age")
	assert.Equal(t, 30.0, age)

	m := v.Map()
	assert.Equal(t, 30.0, m["age"])
	assert.Equal(t, "Male", m["gender"])
}
