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

func TestFinalizeDerivesAttributesAndCommands(t *testing.T) {
	d := Device{ID: 1, Label: "Light", Capabilities: []Capability{Switch}}
	if err := d.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !d.HasAttribute("switch") {
		t.Fatal("expected the switch capability to expose a switch attribute")
	}
	if !d.HasCommand("on") || !d.HasCommand("off") {
		t.Fatal("expected the switch capability to expose on/off commands")
	}
	if d.HasAttribute("temperature") {
		t.Fatal("did not expect a temperature attribute on a switch-only device")
	}
}

func TestFinalizeRejectsUnknownCapability(t *testing.T) {
	d := Device{ID: 1, Label: "Mystery", Capabilities: []Capability{"NotARealCapability"}}
	if err := d.Finalize(); err == nil {
		t.Fatal("expected an error for an unrecognized capability")
	}
}

func TestFinalizeUnionsMultipleCapabilities(t *testing.T) {
	d := Device{ID: 2, Label: "Sensor", Capabilities: []Capability{MotionSensor, ContactSensor}}
	if err := d.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !d.HasAttribute("motion") || !d.HasAttribute("contact") {
		t.Fatal("expected both capabilities' attributes to be present")
	}
}
