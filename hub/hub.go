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

// Package hub defines the contract this engine uses to talk to the external
// device hub, and ships two implementations: a rate-limited REST client and
// an in-memory fake for tests. Every package above this one talks to devices
// only through the Adapter interface.
package hub

import (
	"context"

	"github.com/hauto/ruled/device"
)

// Event is a single device attribute change as reported by the hub.
type Event struct {
	DeviceID  int          `json:"device_id"`
	Attribute string       `json:"attribute"`
	Value     device.Value `json:"value"`
}

// EventCallback is invoked once per Event delivered for a subscribed device.
type EventCallback func(Event)

// Adapter is the contract the process manager uses to interact with the hub.
// At most one callback is retained per device; a later Subscribe call for the
// same device id replaces the previous callback.
type Adapter interface {
	// LoadDevices fetches the full device catalog. Called once at startup.
	LoadDevices(ctx context.Context) ([]device.Device, error)

	// SendCommand issues a command to a single device.
	SendCommand(ctx context.Context, deviceID int, command string, arguments map[string]device.Value) error

	// GetAttribute reads the current value of a device attribute.
	GetAttribute(ctx context.Context, deviceID int, attribute string) (device.Value, error)

	// Subscribe registers cb to receive events for the named attributes of
	// deviceID. Replaces any previously registered callback for deviceID.
	Subscribe(deviceID int, attributes []string, cb EventCallback)

	// Unsubscribe drops the callback registered for deviceID, if any.
	Unsubscribe(deviceID int)
}
