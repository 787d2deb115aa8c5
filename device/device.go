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

import "fmt"

// Capability names a fixed catalog entry a device may expose. The catalog
// is closed: new capabilities are added by extending this const block and
// the schema map below, not by runtime registration.
type Capability string

// The fixed capability catalog.
const (
	Switch                      Capability = "Switch"
	SwitchLevel                 Capability = "SwitchLevel"
	MotionSensor                Capability = "MotionSensor"
	ContactSensor               Capability = "ContactSensor"
	TemperatureMeasurement      Capability = "TemperatureMeasurement"
	RelativeHumidityMeasurement Capability = "RelativeHumidityMeasurement"
	GarageDoorControl           Capability = "GarageDoorControl"
)

// Schema describes the attributes and commands a capability contributes.
type Schema struct {
	Attributes []string
	Commands   []string
}

var catalog = map[Capability]Schema{
	Switch: {
		Attributes: []string{"switch"},
		Commands:   []string{"on", "off"},
	},
	SwitchLevel: {
		Attributes: []string{"level"},
		Commands:   []string{"setLevel"},
	},
	MotionSensor: {
		Attributes: []string{"motion"},
	},
	ContactSensor: {
		Attributes: []string{"contact"},
	},
	TemperatureMeasurement: {
		Attributes: []string{"temperature"},
	},
	RelativeHumidityMeasurement: {
		Attributes: []string{"humidity"},
	},
	GarageDoorControl: {
		Attributes: []string{"door"},
		Commands:   []string{"open", "close"},
	},
}

// CapabilitySchema looks up the attribute/command schema for a capability. It
// errors on an unrecognized capability name, since the catalog is fixed.
func CapabilitySchema(c Capability) (Schema, error) {
	s, ok := catalog[c]
	if !ok {
		return Schema{}, fmt.Errorf("device: unknown capability `%s`", c)
	}
	return s, nil
}

// Device is immutable for the lifetime of a run. It is loaded once from the
// hub at startup (Adapter.LoadDevices) and never mutated afterwards; all
// dynamic state lives in the process manager's attribute cache, not here.
type Device struct {
	ID           int        `json:"id"`
	Label        string     `json:"label"`
	Room         string     `json:"room"`
	Capabilities []Capability `json:"capabilities"`

	attributes map[string]struct{}
	commands   map[string]struct{}
}

// Finalize derives the Attributes()/Commands() sets from Capabilities. It
// must be called once after a Device is decoded or constructed, before it is
// used by the hub adapter or the process manager.
func (d *Device) Finalize() error {
	d.attributes = map[string]struct{}{}
	d.commands = map[string]struct{}{}
	for _, c := range d.Capabilities {
		schema, err := CapabilitySchema(c)
		if err != nil {
			return fmt.Errorf("device %d (%s): %w", d.ID, d.Label, err)
		}
		for _, a := range schema.Attributes {
			d.attributes[a] = struct{}{}
		}
		for _, cmd := range schema.Commands {
			d.commands[cmd] = struct{}{}
		}
	}
	return nil
}

// HasAttribute returns true if this device exposes the named attribute.
func (d *Device) HasAttribute(attr string) bool {
	_, ok := d.attributes[attr]
	return ok
}

// HasCommand returns true if this device accepts the named command.
func (d *Device) HasCommand(cmd string) bool {
	_, ok := d.commands[cmd]
	return ok
}

// String implements fmt.Stringer for logging.
func (d *Device) String() string {
	return fmt.Sprintf("Device(%d, %s, room=%s)", d.ID, d.Label, d.Room)
}
