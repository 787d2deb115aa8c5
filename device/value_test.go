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

package device

import "testing"

func TestEqualCoercesStringToNumber(t *testing.T) {
	if !NewString("100").Equal(NewInt(100)) {
		t.Fatal("expected string \"100\" to equal int 100")
	}
	if NewString("abc").Equal(NewInt(100)) {
		t.Fatal("did not expect a non-numeric string to equal an int")
	}
}

func TestCompareOrdersNumerically(t *testing.T) {
	cmp, ok := NewFloat(21.5).Compare(NewInt(22))
	if !ok || cmp >= 0 {
		t.Fatalf("expected 21.5 < 22, got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCompareFallsBackToStringOrdering(t *testing.T) {
	cmp, ok := NewString("closed").Compare(NewString("open"))
	if !ok || cmp >= 0 {
		t.Fatalf("expected \"closed\" < \"open\", got cmp=%d ok=%v", cmp, ok)
	}
}

func TestCoerceToMatchesTargetKind(t *testing.T) {
	v := NewString("42").CoerceTo(NewInt(0))
	if v.Kind() != KindInt {
		t.Fatalf("expected coercion to int, got %s", v.Kind())
	}
	if i, ok := v.Int(); !ok || i != 42 {
		t.Fatalf("expected 42, got %d (ok=%v)", i, ok)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, v := range []Value{NewBool(true), NewInt(7), NewFloat(3.5), NewString("hello"), Null} {
		raw, err := v.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", v, err)
		}
		var out Value
		if err := out.UnmarshalJSON(raw); err != nil {
			t.Fatalf("UnmarshalJSON(%s): %v", raw, err)
		}
		if !v.Equal(out) && !(v.IsNull() && out.IsNull()) {
			t.Fatalf("round trip mismatch: %v -> %s -> %v", v, raw, out)
		}
	}
}

func TestFromInterfaceDistinguishesIntFromFloat(t *testing.T) {
	if FromInterface(float64(3)).Kind() != KindInt {
		t.Fatal("expected a whole-number float64 to decode as KindInt")
	}
	if FromInterface(float64(3.5)).Kind() != KindFloat {
		t.Fatal("expected a fractional float64 to decode as KindFloat")
	}
}
