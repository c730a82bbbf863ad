// Package features turns raw applicant fields into the ordered, typed feature
// vector the eligibility and EMI models consume.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags a Value as numeric or categorical.
type Kind uint8

const (
	KindNumeric Kind = iota + 1
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "invalid"
	}
}

// Value is a single feature cell. The zero Value is invalid; use Num or Cat.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Num returns a numeric Value.
func Num(f float64) Value {
	return Value{kind: KindNumeric, num: f}
}

// Cat returns a categorical Value.
func Cat(s string) Value {
	return Value{kind: KindCategorical, text: s}
}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether the value is numeric.
func (v Value) IsNumeric() bool { return v.kind == KindNumeric }

// Float returns the numeric payload; ok is false for categorical values.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Text returns the categorical payload; ok is false for numeric values.
func (v Value) Text() (string, bool) {
	if v.kind != KindCategorical {
		return "", false
	}
	return v.text, true
}

// Interface returns float64 for numeric values and string for categorical ones.
func (v Value) Interface() any {
	if v.kind == KindNumeric {
		return v.num
	}
	return v.text
}

func (v Value) String() string {
	if v.kind == KindNumeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON writes numbers as JSON numbers and categories as strings.
// Non-finite numbers are written as strings since JSON has no literal for them.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumeric {
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

var errNotNumeric = errors.New("value is not numeric")

// Coerce converts an arbitrary raw input into a Value.
//
// Numbers, booleans and numeric strings become Num. Anything else becomes Cat
// holding its text, and the returned error says why numeric conversion failed.
// NaN and infinities are never numeric, whether given as floats or as text.
// The returned Value is always usable; the error is informational.
func Coerce(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		if x.kind == KindNumeric {
			return coerceFloat(x.num)
		}
		return coerceString(x.text)
	case float64:
		return coerceFloat(x)
	case float32:
		return coerceFloat(float64(x))
	case int:
		return Num(float64(x)), nil
	case int8:
		return Num(float64(x)), nil
	case int16:
		return Num(float64(x)), nil
	case int32:
		return Num(float64(x)), nil
	case int64:
		return Num(float64(x)), nil
	case uint:
		return Num(float64(x)), nil
	case uint8:
		return Num(float64(x)), nil
	case uint16:
		return Num(float64(x)), nil
	case uint32:
		return Num(float64(x)), nil
	case uint64:
		return Num(float64(x)), nil
	case bool:
		if x {
			return Num(1), nil
		}
		return Num(0), nil
	case json.Number:
		return coerceString(x.String())
	case string:
		return coerceString(x)
	case nil:
		return Cat(""), fmt.Errorf("%w: missing value", errNotNumeric)
	default:
		return Cat(fmt.Sprint(x)), fmt.Errorf("%w: unsupported type %T", errNotNumeric, raw)
	}
}

func coerceString(s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cat(s), fmt.Errorf("%w: empty string", errNotNumeric)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || !isFinite(f) {
		return Cat(s), fmt.Errorf("%w: %q", errNotNumeric, s)
	}
	return Num(f), nil
}

func coerceFloat(f float64) (Value, error) {
	if !isFinite(f) {
		text := strconv.FormatFloat(f, 'f', -1, 64)
		return Cat(text), fmt.Errorf("%w: %s is not finite", errNotNumeric, text)
	}
	return Num(f), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NormalizeFlag maps a boolean-like raw value onto {0, 1}.
//
// "Yes" and "No" (any case) map to 1 and 0. Finite numbers map to 1 when
// non-zero and 0 otherwise. Everything else, NaN and infinities included,
// becomes 0 and ok is false.
func NormalizeFlag(raw any) (v Value, ok bool) {
	if s, isString := raw.(string); isString {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes":
			return Num(1), true
		case "no":
			return Num(0), true
		}
	}

	coerced, err := Coerce(raw)
	if err != nil {
		return Num(0), false
	}

	if f, _ := coerced.Float(); f == 0 {
		return Num(0), true
	}
	return Num(1), true
}
