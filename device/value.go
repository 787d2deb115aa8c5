// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package device holds the data model for hub devices: the dynamically typed
// attribute value, the immutable Device record, and the fixed capability
// catalog that maps capabilities to attribute and command schemas.
package device

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the underlying Go type a Value currently holds.
type Kind int

// The set of dynamically typed scalar kinds a device attribute may hold.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns a human readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed scalar: bool, integer, number, string, or
// null. It is kept as a small discriminated struct instead of a bare
// interface{} so that coercion and JSON (de)serialization live in one place.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null is the null value.
var Null = Value{kind: KindNull}

// NewBool builds a Value wrapping a bool.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt builds a Value wrapping an integer.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat builds a Value wrapping a number.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewString builds a Value wrapping a string.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the value's current kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull returns true if the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the bool representation, coercing from other kinds where
// sensible (numbers: non-zero is true; strings: whatever strconv.ParseBool
// accepts, e.g. "true"/"false", "1"/"0", "t"/"f").
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		return v.i != 0, true
	case KindFloat:
		return v.f != 0, true
	case KindString:
		b, err := strconv.ParseBool(v.s)
		return b, err == nil
	default:
		return false, false
	}
}

// Int returns the integer representation if one can be derived.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f), true
	case KindString:
		i, err := strconv.ParseInt(v.s, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Float returns the floating point representation if one can be derived.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String returns a textual representation of the value, used for string
// comparisons and for the `=`/`!=` operators against string-typed conditions.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Equal compares two values for equality, coercing the receiver to match the
// kind of other when practical. This backs the Device condition's `=`/`!=`
// operators.
func (v Value) Equal(other Value) bool {
	switch other.kind {
	case KindBool:
		b, ok := v.Bool()
		return ok && b == other.b
	case KindInt:
		// compare as float so "100" == 100.0 style coercions still work
		f, ok := v.Float()
		of, _ := other.Float()
		return ok && f == of
	case KindFloat:
		f, ok := v.Float()
		return ok && f == other.f
	case KindString:
		return v.String() == other.s
	case KindNull:
		return v.kind == KindNull
	default:
		return false
	}
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater than
// other. When both sides convert to numbers they are compared numerically;
// otherwise their String() forms are compared lexically, so the second
// result is always true. This backs the Device condition's `<`/`<=`/`>`/`>=`
// operators.
func (v Value) Compare(other Value) (int, bool) {
	vf, ok1 := v.Float()
	of, ok2 := other.Float()
	if ok1 && ok2 {
		switch {
		case vf < of:
			return -1, true
		case vf > of:
			return 1, true
		default:
			return 0, true
		}
	}
	vs, os := v.String(), other.String()
	switch {
	case vs < os:
		return -1, true
	case vs > os:
		return 1, true
	default:
		return 0, true
	}
}

// CoerceTo attempts to re-type v to match the kind of target, falling back to
// the original value unchanged if coercion is not possible (per spec: a
// coercion failure just means the eventual comparison is likely to fail,
// rather than being a hard error at ingest time).
func (v Value) CoerceTo(target Value) Value {
	switch target.kind {
	case KindBool:
		if b, ok := v.Bool(); ok {
			return NewBool(b)
		}
	case KindInt:
		if i, ok := v.Int(); ok {
			return NewInt(i)
		}
	case KindFloat:
		if f, ok := v.Float(); ok {
			return NewFloat(f)
		}
	case KindString:
		return NewString(v.String())
	}
	return v
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromInterface(raw)
	return nil
}

// FromInterface builds a Value from a decoded JSON interface{}, as produced
// by encoding/json or a hub event payload.
func FromInterface(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return Null
	case bool:
		return NewBool(x)
	case float64:
		if x == float64(int64(x)) {
			return NewInt(int64(x))
		}
		return NewFloat(x)
	case int:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case string:
		return NewString(x)
	default:
		return NewString(fmt.Sprintf("%v", x))
	}
}
