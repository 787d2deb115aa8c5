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

package condition

import (
	"fmt"

	"github.com/hauto/ruled/device"
)

// Spec is the declarative, JSON-friendly form of a condition, as it appears
// inside a persisted rule trigger or an inline action predicate. Compile
// turns it into a live Condition. This is the one place the declarative
// model and the runtime Condition hierarchy meet, so that persistence
// (package persist) never needs to know about condition internals.
type Spec struct {
	Kind string `json:"kind"`

	// Device fields.
	DeviceID  int          `json:"device_id,omitempty"`
	Attribute string       `json:"attribute,omitempty"`
	Operator  string       `json:"operator,omitempty"`
	Value     device.Value `json:"value,omitempty"`

	// Boolean fields.
	BoolOperator string `json:"bool_operator,omitempty"`
	Children     []Spec `json:"children,omitempty"`

	// TimeOfDay fields.
	TimeOperator string `json:"time_operator,omitempty"`
	Hour         int    `json:"hour,omitempty"`
	Minute       int    `json:"minute,omitempty"`
}

// The accepted Spec.Kind values.
const (
	KindDevice    = "device"
	KindBoolean   = "boolean"
	KindTimeOfDay = "timeofday"
	KindTrue      = "true"
)

// Compile builds a live Condition from its declarative Spec, validating
// operators and arity along the way.
func Compile(spec Spec) (Condition, error) {
	switch spec.Kind {
	case KindDevice:
		return NewDevice(spec.DeviceID, spec.Attribute, Operator(spec.Operator), spec.Value)
	case KindBoolean:
		children := make([]Condition, 0, len(spec.Children))
		for _, cs := range spec.Children {
			c, err := Compile(cs)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return NewBoolean(BoolOp(spec.BoolOperator), children...)
	case KindTimeOfDay:
		return NewTimeOfDay(TimeOfDayOp(spec.TimeOperator), spec.Hour, spec.Minute)
	case KindTrue:
		return NewTrue(), nil
	default:
		return nil, fmt.Errorf("condition: unknown condition kind `%s`", spec.Kind)
	}
}
