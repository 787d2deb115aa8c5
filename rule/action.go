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

package rule

import (
	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
)

// The accepted ActionSpec.Kind values.
const (
	KindDeviceControl = "device_control"
	KindIfThenElse    = "if_then_else"
	KindScene         = "scene"
	KindUntil         = "until"
	KindWait          = "wait"
	KindExit          = "exit"
)

// ActionSpec is one step of a rule's (or an ad hoc request's) action chain.
// It is a discriminated union keyed on Kind; only the fields relevant to
// that kind are populated. A separate JSON-decodable struct per kind would
// be overkill for a step list this shallow, so a single tagged struct
// stands in for all of them.
type ActionSpec struct {
	Kind string `json:"kind"`

	// device_control
	DeviceID  int                     `json:"device_id,omitempty"`
	Command   string                  `json:"command,omitempty"`
	Arguments map[string]device.Value `json:"arguments,omitempty"`

	// if_then_else
	Predicate   *condition.Spec `json:"predicate,omitempty"`
	ThenActions []ActionSpec    `json:"then_actions,omitempty"`
	ElseActions []ActionSpec    `json:"else_actions,omitempty"`

	// scene
	SceneName string `json:"scene_name,omitempty"`

	// until / wait
	Condition      *condition.Spec `json:"condition,omitempty"`
	Timeout        *float64        `json:"timeout_seconds,omitempty"`
	UntilActions   []ActionSpec    `json:"until_actions,omitempty"`   // until: runs when Condition becomes true
	TimeoutActions []ActionSpec    `json:"timeout_actions,omitempty"` // until: runs if Timeout elapses first
	EndOnTimeout   bool            `json:"end_on_timeout,omitempty"`  // wait: Timeout required, Condition optional
}
