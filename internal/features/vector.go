package features

// DiagnosticKind classifies a tolerated irregularity found while building a vector.
type DiagnosticKind string

const (
	// DiagNumericCoercionFailed: a field declared numeric got a non-numeric or non-finite value and fell back to its default.
	DiagNumericCoercionFailed DiagnosticKind = "numeric_coercion_failed"
	// DiagCategoricalExpected: a field declared categorical got a number and kept its text form.
	DiagCategoricalExpected DiagnosticKind = "categorical_expected"
	// DiagFlagDefaulted: existing_loans could not be read as yes/no or a number and became 0.
	DiagFlagDefaulted DiagnosticKind = "flag_defaulted"
	// DiagUnknownField: the input named a field outside the schema; it was ignored.
	DiagUnknownField DiagnosticKind = "unknown_field"
	// DiagModelOnlyField: the model expects a field the schema lacks; it was filled with 0.
	DiagModelOnlyField DiagnosticKind = "model_only_field"
	// DiagFieldDropped: a schema field is not expected by the model and was left out.
	DiagFieldDropped DiagnosticKind = "field_dropped"
)

// Diagnostic records one irregularity. Diagnostics never block a prediction.
type Diagnostic struct {
	Field  string         `json:"field"`
	Kind   DiagnosticKind `json:"kind"`
	Detail string         `json:"detail,omitempty"`
}

// Vector is an ordered, immutable set of named feature values.
type Vector struct {
	names       []string
	values      []Value
	index       map[string]int
	diagnostics []Diagnostic
}

func newVector(names []string, values []Value, diagnostics []Diagnostic) *Vector {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return &Vector{
		names:       names,
		values:      values,
		index:       index,
		diagnostics: diagnostics,
	}
}

// Len returns the number of columns.
func (v *Vector) Len() int {
	return len(v.names)
}

// Names returns the column names in order. The slice is a copy.
func (v *Vector) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Values returns the column values in order. The slice is a copy.
func (v *Vector) Values() []Value {
	out := make([]Value, len(v.values))
	copy(out, v.values)
	return out
}

// Get returns the value for a column.
func (v *Vector) Get(name string) (Value, bool) {
	i, ok := v.index[name]
	if !ok {
		return Value{}, false
	}
	return v.values[i], true
}

// Float returns a numeric column value; ok is false when absent or categorical.
func (v *Vector) Float(name string) (float64, bool) {
	val, ok := v.Get(name)
	if !ok {
		return 0, false
	}
	return val.Float()
}

// Diagnostics returns what the builder tolerated. The slice is a copy.
func (v *Vector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(v.diagnostics))
	copy(out, v.diagnostics)
	return out
}

// Map returns the vector as plain values, for logging and JSON responses.
func (v *Vector) Map() map[string]any {
	out := make(map[string]any, len(v.names))
	for i, n := range v.names {
		out[n] = v.values[i].Interface()
	}
	return out
}
