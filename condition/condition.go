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

// Package condition implements the reactive predicate hierarchy: Device,
// Boolean, TimeOfDay, and True. Every variant satisfies the same small
// Condition interface: a narrow interface plus concrete structs, rather
// than a deep class hierarchy.
package condition

import (
	"fmt"
	"sync"

	"github.com/hauto/ruled/device"
)

// Event is a single device attribute change, decoupled from the hub
// package's wire Event so that this package has no dependency on hub.
type Event struct {
	DeviceID  int
	Attribute string
	Value     device.Value
}

// ClockTime is a local time-of-day, minute resolution.
type ClockTime struct {
	Hour   int
	Minute int
}

// Condition is the uniform interface the process manager drives every
// predicate variant through.
type Condition interface {
	// Identifier returns this instance's stable, unique identifier.
	Identifier() string

	// Devices returns, for each device this condition observes, the set
	// of attribute names it cares about. Non-Device conditions that have
	// no device of their own (Boolean, TimeOfDay, True) return nil; the
	// process manager aggregates the union across sub-conditions itself
	// using SubConditions, so a condition never needs to report its
	// children's devices.
	Devices() map[int][]string

	// SubConditions returns this condition's child conditions, in
	// declaration order. Only Boolean conditions have children.
	SubConditions() []Condition

	// Initialize seeds the condition's internal state from a snapshot of
	// every observed attribute's current value and, for Boolean, every
	// child's current truth value. It returns the condition's initial
	// truth value.
	Initialize(attrs map[int]map[string]device.Value, subStates map[string]bool) bool

	// Evaluate recomputes truth from currently stored state. It performs
	// no I/O and has no side effects beyond what OnDeviceEvent and
	// OnSubConditionChange already cached.
	Evaluate() bool

	// OnDeviceEvent updates any internal state this condition derives
	// from a device attribute change. Conditions that do not reference
	// devices directly (Boolean, TimeOfDay, True) ignore it.
	OnDeviceEvent(ev Event)

	// OnSubConditionChange updates the cached truth value of a named
	// child. Only Boolean conditions act on it.
	OnSubConditionChange(childID string, newState bool)

	// CheckTimes returns the local times-of-day at which the process
	// manager must re-run Evaluate regardless of device activity. Only
	// TimeOfDay conditions return a non-empty slice.
	CheckTimes() []ClockTime
}

// counters holds one monotonic count per condition kind, so that distinct
// installations of structurally identical predicates produce distinct
// identifiers ("device#1", "device#2", ...).
var (
	countersMu sync.Mutex
	counters   = map[string]uint64{}
)

// nextID returns "kind#N" for the given kind, N starting at 1 and
// incrementing per kind across the process lifetime.
func nextID(kind string) string {
	countersMu.Lock()
	defer countersMu.Unlock()
	counters[kind]++
	return fmt.Sprintf("%s#%d", kind, counters[kind])
}
