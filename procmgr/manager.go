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

package procmgr

// ConditionManager is the restricted handle passed to action and
// timeout-action callbacks. It exposes AddCondition and RemoveCondition so
// callbacks can install follow-up conditions, and CheckState so the rule
// interpreter's IfThenElse can read a just-installed predicate's value
// without being handed the whole Engine. Its methods call the engine's
// internal, non-serializing implementations directly: a callback invoked
// through ConditionManager is already running on the engine's single
// work-queue goroutine, so re-entering through the public, serializing
// AddCondition/RemoveCondition would deadlock.
type ConditionManager struct {
	engine *Engine
}

// AddCondition installs rec the same way Engine.AddCondition does.
func (cm *ConditionManager) AddCondition(rec *Record) (string, error) {
	return cm.engine.addConditionRoot(rec)
}

// RemoveCondition removes id the same way Engine.RemoveCondition does.
func (cm *ConditionManager) RemoveCondition(id string) error {
	return cm.engine.removeConditionRoot(id)
}

// CheckState returns id's last recorded truth value.
func (cm *ConditionManager) CheckState(id string) (bool, bool) {
	rec, ok := cm.engine.conditions[id]
	if !ok {
		return false, false
	}
	return rec.truth, true
}
