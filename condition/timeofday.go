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
	"time"

	"github.com/hauto/ruled/device"
)

// Now is overridable in tests so a fixed clock can drive Evaluate.
var Now = time.Now

// TimeOfDayOp is a TimeOfDay condition's comparator.
type TimeOfDayOp string

// The fixed comparator enum.
const (
	TimeIs     TimeOfDayOp = "is"
	TimeBefore TimeOfDayOp = "before"
	TimeAfter  TimeOfDayOp = "after"
)

// TimeOfDay is true according to the current local wall-clock time compared
// against a fixed hour:minute. It deliberately does not override Devices()
// — it has none — and instead participates in propagation purely through
// the clock ticks named by CheckTimes, which the process manager routes
// through the same dispatch entry point used for device events.
type TimeOfDay struct {
	id string

	Op     TimeOfDayOp
	Hour   int
	Minute int
}

// NewTimeOfDay builds a TimeOfDay condition.
func NewTimeOfDay(op TimeOfDayOp, hour, minute int) (*TimeOfDay, error) {
	switch op {
	case TimeIs, TimeBefore, TimeAfter:
	default:
		return nil, fmt.Errorf("condition: unknown time-of-day operator `%s`", op)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("condition: invalid time-of-day %02d:%02d", hour, minute)
	}
	return &TimeOfDay{id: nextID("timeofday"), Op: op, Hour: hour, Minute: minute}, nil
}

// Identifier implements Condition.
func (t *TimeOfDay) Identifier() string { return t.id }

// Devices implements Condition. TimeOfDay observes no devices.
func (t *TimeOfDay) Devices() map[int][]string { return nil }

// SubConditions implements Condition.
func (t *TimeOfDay) SubConditions() []Condition { return nil }

// Initialize implements Condition.
func (t *TimeOfDay) Initialize(attrs map[int]map[string]device.Value, subStates map[string]bool) bool {
	return t.Evaluate()
}

// OnDeviceEvent implements Condition. TimeOfDay has no device dependency.
func (t *TimeOfDay) OnDeviceEvent(ev Event) {}

// OnSubConditionChange implements Condition. TimeOfDay has no children.
func (t *TimeOfDay) OnSubConditionChange(childID string, newState bool) {}

// CheckTimes implements Condition. For `is`, two clocks are returned: the
// target minute, and the minute after, so the condition falls back to false
// once the target minute has elapsed rather than staying true all day.
func (t *TimeOfDay) CheckTimes() []ClockTime {
	if t.Op == TimeIs {
		next := t.Minute + 1
		nextHour := t.Hour
		if next == 60 {
			next = 0
			nextHour = (nextHour + 1) % 24
		}
		return []ClockTime{{Hour: t.Hour, Minute: t.Minute}, {Hour: nextHour, Minute: next}}
	}
	return []ClockTime{{Hour: t.Hour, Minute: t.Minute}}
}

// Evaluate implements Condition.
func (t *TimeOfDay) Evaluate() bool {
	now := Now()
	nowMinutes := now.Hour()*60 + now.Minute()
	targetMinutes := t.Hour*60 + t.Minute

	switch t.Op {
	case TimeIs:
		return nowMinutes == targetMinutes
	case TimeBefore:
		return nowMinutes < targetMinutes
	case TimeAfter:
		return nowMinutes >= targetMinutes
	default:
		return false
	}
}
