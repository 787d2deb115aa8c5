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

// Package scene tracks declarative multi-device "scenes": named collections
// of device settings whose combined "is set" state is detected reactively,
// the same dependency-graph machinery the rule package drives, rather than
// recorded by SetScene itself.
package scene

import (
	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
)

// Setting is one device command a scene applies, plus the predicate that
// detects whether that setting currently holds.
type Setting struct {
	DeviceID  int                     `json:"device_id"`
	Command   string                  `json:"command"`
	Arguments map[string]device.Value `json:"arguments,omitempty"`
	Check     condition.Spec          `json:"check"`
}

// Scene is the declarative, persisted model of a scene.
type Scene struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Settings    []Setting `json:"settings"`
}
