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

import "github.com/hauto/ruled/device"

// True always evaluates to true. It is used as a no-op predicate when a
// Wait action has only a timeout and no condition to wait on.
type True struct {
	id string
}

// NewTrue builds a True condition.
func NewTrue() *True {
	return &True{id: nextID("true")}
}

// Identifier implements Condition.
func (t *True) Identifier() string { return t.id }

// Devices implements Condition.
func (t *True) Devices() map[int][]string { return nil }

// SubConditions implements Condition.
func (t *True) SubConditions() []Condition { return nil }

// Initialize implements Condition.
func (t *True) Initialize(attrs map[int]map[string]device.Value, subStates map[string]bool) bool {
	return true
}

// OnDeviceEvent implements Condition.
func (t *True) OnDeviceEvent(ev Event) {}

// OnSubConditionChange implements Condition.
func (t *True) OnSubConditionChange(childID string, newState bool) {}

// CheckTimes implements Condition.
func (t *True) CheckTimes() []ClockTime { return nil }

// Evaluate implements Condition.
func (t *True) Evaluate() bool { return true }
