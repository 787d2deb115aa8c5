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

import "github.com/hauto/ruled/condition"

// dispatchDeviceEvent is one of the two entry points into propagateFrom; it
// updates the cached attribute value, notifies every condition that observes
// it directly, and seeds the breadth-first walk with those conditions.
func (obj *Engine) dispatchDeviceEvent(ev condition.Event) {
	key := devKey(ev.DeviceID, ev.Attribute)
	obj.attrValues[key] = ev.Value

	seed := map[string]struct{}{}
	for id := range obj.attrSubscribers[key] {
		rec, ok := obj.conditions[id]
		if !ok {
			continue
		}
		rec.Condition.OnDeviceEvent(ev)
		seed[id] = struct{}{}
	}
	obj.propagateFrom(seed)
}

// dispatchClockTick is the other entry point into propagateFrom: a
// TimeOfDay condition has no device of its own, so a clock tick seeds the
// walk directly with that condition's identifier instead of an attribute's
// subscriber set. This keeps a single shared propagation path for both
// device-driven and clock-driven conditions.
func (obj *Engine) dispatchClockTick(condID string) {
	if _, ok := obj.conditions[condID]; !ok {
		return
	}
	obj.propagateFrom(map[string]struct{}{condID: {}})
}

// propagateFrom breadth-first walks outward from seed through
// conditionParents, re-evaluating every visited condition and notifying its
// parents only when its truth value actually changed. Each edge is
// traversed every time a child changes — there is no visited-set
// deduplication of the walk itself — so that a parent with several children
// always observes the freshest state of each. A separate `touched` map
// records, once per condition, the truth value it held before this
// propagation began, which the action policy pass below needs to detect
// rising edges.
func (obj *Engine) propagateFrom(seed map[string]struct{}) {
	touched := map[string]bool{}
	order := make([]string, 0, len(seed))

	queue := make([]string, 0, len(seed))
	for id := range seed {
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		rec, ok := obj.conditions[id]
		if !ok {
			continue
		}
		if _, seen := touched[id]; !seen {
			touched[id] = rec.truth
			order = append(order, id)
		}

		newVal := rec.Condition.Evaluate()
		if newVal == rec.truth {
			continue
		}
		rec.truth = newVal

		for parentID := range obj.conditionParents[id] {
			if parentID == rootSentinel {
				continue
			}
			prec, ok := obj.conditions[parentID]
			if !ok {
				continue
			}
			prec.Condition.OnSubConditionChange(id, newVal)
			queue = append(queue, parentID)
		}
	}

	obj.applyActionPolicy(order, touched)
}

// applyActionPolicy implements the duration/timeout/trigger_always firing
// rules for every condition visited this propagation. When a duration is
// set, a rising edge only arms the debounce timer — the action itself fires
// later, at timer expiry, or not at all if a falling edge cancels it first.
// trigger_always bypasses debounce entirely: it fires immediately whenever
// the condition is true after re-evaluation, duration or not.
func (obj *Engine) applyActionPolicy(order []string, touched map[string]bool) {
	for _, id := range order {
		rec, ok := obj.conditions[id]
		if !ok || rec.meta == nil || rec.meta.Action == nil {
			continue
		}
		prev, curr := touched[id], rec.truth

		if rec.meta.Duration > 0 {
			switch {
			case !prev && curr:
				obj.timers.Start(durationTimerID(id), rec.meta.Duration, obj.onDurationFire)
			case prev && !curr:
				obj.timers.Cancel(durationTimerID(id))
			}
			if curr && rec.meta.TriggerAlways {
				obj.fireAction(id, rec)
			}
			continue
		}

		if (!prev && curr) || (curr && rec.meta.TriggerAlways) {
			obj.fireAction(id, rec)
		}
	}
}
