package features

import (
	"fmt"
	"sort"

	"emi-eligibility-engine/internal/models"
)

// Builder produces model-ready vectors. It never fails: missing or dirty values
// fall back to schema defaults, and every fallback is listed in the vector's diagnostics.
type Builder struct {
	schema    *Schema
	alignment []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithAlignment makes the builder emit exactly these columns in this order,
// typically the classifier's own feature names. An empty list is ignored.
func WithAlignment(names []string) Option {
	return func(b *Builder) {
		if len(names) == 0 {
			return
		}
		b.alignment = make([]string, len(names))
		copy(b.alignment, names)
	}
}

// NewBuilder creates a builder over schema, or the default schema when nil.
func NewBuilder(schema *Schema, opts ...Option) *Builder {
	if schema == nil {
		schema = DefaultSchema()
	}
	b := &Builder{schema: schema}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Schema returns the schema the builder fills from.
func (b *Builder) Schema() *Schema {
	return b.schema
}

// Columns returns the output column order.
func (b *Builder) Columns() []string {
	if b.alignment != nil {
		out := make([]string, len(b.alignment))
		copy(out, b.alignment)
		return out
	}
	return b.schema.Fields()
}

// Aligned reports whether output columns follow a model's feature list.
func (b *Builder) Aligned() bool {
	return b.alignment != nil
}

// Build turns one applicant into a feature vector.
func (b *Builder) Build(raw *models.RawApplicantInput) *Vector {
	if raw == nil {
		return b.BuildFields(nil)
	}
	return b.BuildFields(raw.Fields())
}

// BuildFields builds a vector from feature-name keyed raw values.
// Nil values count as absent.
func (b *Builder) BuildFields(fields map[string]any) *Vector {
	var diags []Diagnostic

	unknown := make([]string, 0)
	for name := range fields {
		if !b.schema.Has(name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		diags = append(diags, Diagnostic{Field: name, Kind: DiagUnknownField, Detail: "not a schema field; ignored"})
	}

	columns := b.Columns()
	if b.alignment != nil {
		expected := make(map[string]struct{}, len(columns))
		for _, c := range columns {
			expected[c] = struct{}{}
		}
		for _, name := range b.schema.Fields() {
			if _, ok := expected[name]; !ok {
				diags = append(diags, Diagnostic{Field: name, Kind: DiagFieldDropped, Detail: "not expected by the model"})
			}
		}
	}

	values := make([]Value, len(columns))
	for i, name := range columns {
		field, inSchema := b.schema.Field(name)
		if !inSchema {
			values[i] = Num(0)
			diags = append(diags, Diagnostic{Field: name, Kind: DiagModelOnlyField, Detail: "expected by the model but unknown to the schema; filled with 0"})
			continue
		}

		var raw any = field.Default
		supplied := false
		if v, ok := fields[name]; ok && v != nil {
			raw = v
			supplied = true
		}

		if name == ExistingLoansField {
			flag, ok := NormalizeFlag(raw)
			if !ok {
				diags = append(diags, Diagnostic{Field: name, Kind: DiagFlagDefaulted, Detail: fmt.Sprintf("unreadable value %v; using 0", displayRaw(raw))})
			}
			values[i] = flag
			continue
		}

		v, err := Coerce(raw)
		switch {
		case field.Kind == KindNumeric && err != nil:
			diags = append(diags, Diagnostic{Field: name, Kind: DiagNumericCoercionFailed, Detail: fmt.Sprintf("%v; using default %s", err, field.Default)})
			v = field.Default
		case field.Kind == KindCategorical && supplied && v.IsNumeric():
			diags = append(diags, Diagnostic{Field: name, Kind: DiagCategoricalExpected, Detail: fmt.Sprintf("numeric value %s kept as text", v)})
			v = Cat(v.String())
		}
		values[i] = v
	}

	return newVector(columns, values, diags)
}

func displayRaw(raw any) string {
	if v, ok := raw.(Value); ok {
		return fmt.Sprintf("%q", v.String())
	}
	return fmt.Sprintf("%#v", raw)
}
