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

// Operator is a Device condition's comparison operator. The canonical
// equality spellings are `=`/`!=`; `==` is rejected by NewDevice so that
// persisted rules only ever contain one textual form.
type Operator string

// The fixed operator enum.
const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLessThan     Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreaterThan  Operator = ">"
	OpGreaterEqual Operator = ">="
	OpChanged      Operator = "changed"
)

// ValidOperators lists every accepted Operator, in declaration order, for
// use in validation error messages.
var ValidOperators = []Operator{OpEqual, OpNotEqual, OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual, OpChanged}

func isValidOperator(op Operator) bool {
	for _, o := range ValidOperators {
		if o == op {
			return true
		}
	}
	return false
}

// Device is true when a single device's attribute compares against a fixed
// value (or, for `changed`, whenever the attribute's value differs from its
// previous reading).
type Device struct {
	id string

	DeviceID  int
	Attribute string
	Op        Operator
	Value     device.Value

	current  device.Value
	previous device.Value
	hasValue bool
}

// NewDevice builds a Device condition. It rejects `==` and any operator
// outside ValidOperators with a validation error naming the accepted set.
func NewDevice(deviceID int, attribute string, op Operator, value device.Value) (*Device, error) {
	if op == "==" {
		return nil, fmt.Errorf("condition: operator `==` is not accepted, use `=`; valid operators are %v", ValidOperators)
	}
	if !isValidOperator(op) {
		return nil, fmt.Errorf("condition: unknown operator `%s`; valid operators are %v", op, ValidOperators)
	}
	return &Device{
		id:        nextID("device"),
		DeviceID:  deviceID,
		Attribute: attribute,
		Op:        op,
		Value:     value,
	}, nil
}

// Identifier implements Condition.
func (d *Device) Identifier() string { return d.id }

// Devices implements Condition.
func (d *Device) Devices() map[int][]string {
	return map[int][]string{d.DeviceID: {d.Attribute}}
}

// SubConditions implements Condition.
func (d *Device) SubConditions() []Condition { return nil }

// Initialize implements Condition.
func (d *Device) Initialize(attrs map[int]map[string]device.Value, subStates map[string]bool) bool {
	if perDevice, ok := attrs[d.DeviceID]; ok {
		if v, ok := perDevice[d.Attribute]; ok {
			coerced := v.CoerceTo(d.Value)
			d.current = coerced
			d.previous = coerced
			d.hasValue = true
		}
	}
	return d.Evaluate()
}

// OnDeviceEvent implements Condition. The incoming value is cast to Value's
// kind here, once, rather than on every Evaluate call.
func (d *Device) OnDeviceEvent(ev Event) {
	if ev.DeviceID != d.DeviceID || ev.Attribute != d.Attribute {
		return
	}
	d.previous = d.current
	d.current = ev.Value.CoerceTo(d.Value)
	d.hasValue = true
}

// OnSubConditionChange implements Condition. Device conditions have no
// children, so this is a no-op.
func (d *Device) OnSubConditionChange(childID string, newState bool) {}

// CheckTimes implements Condition. Device conditions have no clock
// schedule.
func (d *Device) CheckTimes() []ClockTime { return nil }

// Evaluate implements Condition.
func (d *Device) Evaluate() bool {
	if !d.hasValue {
		return false
	}
	if d.Op == OpChanged {
		return !d.previous.Equal(d.current)
	}

	switch d.Op {
	case OpEqual:
		return d.current.Equal(d.Value)
	case OpNotEqual:
		return !d.current.Equal(d.Value)
	}

	cmp, ok := d.current.Compare(d.Value)
	if !ok {
		return false
	}
	switch d.Op {
	case OpLessThan:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	default:
		return false
	}
}
