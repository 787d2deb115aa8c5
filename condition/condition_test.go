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
	"testing"
	"time"

	"github.com/hauto/ruled/device"
)

func TestDeviceRejectsDoubleEquals(t *testing.T) {
	if _, err := NewDevice(1, "switch", "==", device.NewString("on")); err == nil {
		t.Fatal("expected NewDevice to reject ==")
	}
}

func TestDeviceEquality(t *testing.T) {
	c, err := NewDevice(1, "switch", OpEqual, device.NewString("on"))
	if err != nil {
		t.Fatal(err)
	}
	c.Initialize(map[int]map[string]device.Value{1: {"switch": device.NewString("off")}}, nil)
	if c.Evaluate() {
		t.Fatal("expected false before matching event")
	}
	c.OnDeviceEvent(Event{DeviceID: 1, Attribute: "switch", Value: device.NewString("on")})
	if !c.Evaluate() {
		t.Fatal("expected true after matching event")
	}
}

func TestDeviceChanged(t *testing.T) {
	c, err := NewDevice(1, "motion", OpChanged, device.Null)
	if err != nil {
		t.Fatal(err)
	}
	c.Initialize(map[int]map[string]device.Value{1: {"motion": device.NewString("inactive")}}, nil)
	if c.Evaluate() {
		t.Fatal("no change yet, expected false")
	}
	c.OnDeviceEvent(Event{DeviceID: 1, Attribute: "motion", Value: device.NewString("active")})
	if !c.Evaluate() {
		t.Fatal("value changed, expected true")
	}
	c.OnDeviceEvent(Event{DeviceID: 1, Attribute: "motion", Value: device.NewString("active")})
	if c.Evaluate() {
		t.Fatal("value unchanged from previous event, expected false")
	}
}

func TestDeviceNumericComparison(t *testing.T) {
	c, err := NewDevice(2, "temperature", OpGreaterThan, device.NewFloat(20))
	if err != nil {
		t.Fatal(err)
	}
	c.Initialize(map[int]map[string]device.Value{2: {"temperature": device.NewFloat(18)}}, nil)
	if c.Evaluate() {
		t.Fatal("18 > 20 should be false")
	}
	c.OnDeviceEvent(Event{DeviceID: 2, Attribute: "temperature", Value: device.NewFloat(25)})
	if !c.Evaluate() {
		t.Fatal("25 > 20 should be true")
	}
}

func TestDeviceCastsIncomingValueToDeclaredKindAtIngest(t *testing.T) {
	c, err := NewDevice(1, "occupied", OpEqual, device.NewBool(true))
	if err != nil {
		t.Fatal(err)
	}
	c.Initialize(map[int]map[string]device.Value{1: {"occupied": device.NewString("0")}}, nil)
	if c.Evaluate() {
		t.Fatal("\"0\" should cast to false, expected no match against true")
	}

	// "1" only matches a bool condition if it is parsed as a bool at ingest
	// time; comparing it as a string against the declared value's string
	// form ("true") would never match.
	c.OnDeviceEvent(Event{DeviceID: 1, Attribute: "occupied", Value: device.NewString("1")})
	if !c.Evaluate() {
		t.Fatal("\"1\" should cast to true, expected a match against true")
	}
}

func TestBooleanAnd(t *testing.T) {
	a, _ := NewDevice(1, "switch", OpEqual, device.NewString("on"))
	b, _ := NewDevice(2, "switch", OpEqual, device.NewString("on"))
	and, err := NewBoolean(BoolAnd, a, b)
	if err != nil {
		t.Fatal(err)
	}
	and.Initialize(nil, map[string]bool{a.Identifier(): false, b.Identifier(): false})
	if and.Evaluate() {
		t.Fatal("expected false with both children false")
	}
	and.OnSubConditionChange(a.Identifier(), true)
	if and.Evaluate() {
		t.Fatal("expected false with only one child true")
	}
	and.OnSubConditionChange(b.Identifier(), true)
	if !and.Evaluate() {
		t.Fatal("expected true with both children true")
	}
}

func TestBooleanNotRequiresOneChild(t *testing.T) {
	a, _ := NewDevice(1, "switch", OpEqual, device.NewString("on"))
	b, _ := NewDevice(2, "switch", OpEqual, device.NewString("on"))
	if _, err := NewBoolean(BoolNot, a, b); err == nil {
		t.Fatal("expected error for not with two children")
	}
	not, err := NewBoolean(BoolNot, a)
	if err != nil {
		t.Fatal(err)
	}
	not.Initialize(nil, map[string]bool{a.Identifier(): false})
	if !not.Evaluate() {
		t.Fatal("expected true when child is false")
	}
}

func TestTimeOfDayIs(t *testing.T) {
	restore := Now
	defer func() { Now = restore }()

	Now = func() time.Time { return time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC) }
	c, err := NewTimeOfDay(TimeIs, 7, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Evaluate() {
		t.Fatal("expected true at exactly 07:30")
	}

	Now = func() time.Time { return time.Date(2026, 8, 1, 7, 31, 0, 0, time.UTC) }
	if c.Evaluate() {
		t.Fatal("expected false at 07:31")
	}

	times := c.CheckTimes()
	if len(times) != 2 || times[0] != (ClockTime{7, 30}) || times[1] != (ClockTime{7, 31}) {
		t.Fatalf("unexpected check times: %+v", times)
	}
}

func TestTimeOfDayBeforeAfter(t *testing.T) {
	restore := Now
	defer func() { Now = restore }()
	Now = func() time.Time { return time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC) }

	before, _ := NewTimeOfDay(TimeBefore, 7, 0)
	after, _ := NewTimeOfDay(TimeAfter, 7, 0)
	if !before.Evaluate() {
		t.Fatal("06:00 should be before 07:00")
	}
	if after.Evaluate() {
		t.Fatal("06:00 should not be after 07:00")
	}
}

func TestTimeOfDayAfterIsInclusiveOfTargetMinute(t *testing.T) {
	restore := Now
	defer func() { Now = restore }()
	Now = func() time.Time { return time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC) }

	after, _ := NewTimeOfDay(TimeAfter, 7, 0)
	if !after.Evaluate() {
		t.Fatal("07:00 should already be after 07:00 (inclusive of the target minute)")
	}
}

func TestTrueAlwaysTrue(t *testing.T) {
	tr := NewTrue()
	if !tr.Evaluate() {
		t.Fatal("True must always evaluate true")
	}
}

func TestIdentifiersAreDistinctPerInstallation(t *testing.T) {
	a, _ := NewDevice(1, "switch", OpEqual, device.NewString("on"))
	b, _ := NewDevice(1, "switch", OpEqual, device.NewString("on"))
	if a.Identifier() == b.Identifier() {
		t.Fatal("structurally identical conditions must still get distinct identifiers")
	}
}
