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

// Package rule holds the declarative Rule model, a compiler from persisted
// rules into live conditions, and a continuation-style interpreter for
// their action chains.
package rule

import "github.com/hauto/ruled/condition"

// Rule is a persisted trigger/action pair: when Trigger transitions false to
// true, Actions runs once, and the trigger is not re-armed until the whole
// chain (including any Until/Wait it suspends on) has finished.
type Rule struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Trigger     condition.Spec    `json:"trigger"`
	Actions     []ActionSpec      `json:"actions"`
}
